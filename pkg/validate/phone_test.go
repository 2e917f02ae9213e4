package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePhoneNumber_Kenyan(t *testing.T) {
	valid := []string{
		"0712345678",
		"0112345678",
		"+254712345678",
		"254712345678",
		"712345678",
		"0712 345 678",
	}
	for _, p := range valid {
		require.True(t, ValidatePhoneNumber(p, CountryKE), "phone %q", p)
	}

	invalid := []string{
		"",
		"0812345678",   // not a mobile prefix
		"071234567",    // too short
		"07123456789",  // too long
		"255712345678", // wrong country code
		"not-a-phone",
	}
	for _, p := range invalid {
		require.False(t, ValidatePhoneNumber(p, CountryKE), "phone %q", p)
	}
}

func TestValidatePhoneNumber_GenericFallback(t *testing.T) {
	require.True(t, ValidatePhoneNumber("+14155550123", CountryGeneric))
	require.True(t, ValidatePhoneNumber("4155550123", "US"))
	require.False(t, ValidatePhoneNumber("12345", CountryGeneric))
	require.False(t, ValidatePhoneNumber("1234567890123456", CountryGeneric))
}

func TestFormatPhoneNumber_Normalizes(t *testing.T) {
	require.Equal(t, "254712345678", FormatPhoneNumber("0712345678", CountryKE))
	require.Equal(t, "254712345678", FormatPhoneNumber("+254712345678", CountryKE))
	require.Equal(t, "254712345678", FormatPhoneNumber("712345678", CountryKE))
	require.Equal(t, "254112345678", FormatPhoneNumber("0112345678", CountryKE))
}

func TestFormatPhoneNumber_Idempotent(t *testing.T) {
	inputs := []string{"0712345678", "+254712345678", "254712345678", "712345678", "0112 345 678"}
	for _, p := range inputs {
		once := FormatPhoneNumber(p, CountryKE)
		require.Equal(t, once, FormatPhoneNumber(once, CountryKE), "phone %q", p)
	}
}
