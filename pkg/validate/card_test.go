package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidateCardNumber_Luhn(t *testing.T) {
	require.True(t, ValidateCardNumber("4532015112830366"))
	require.False(t, ValidateCardNumber("4532015112830367"))

	// separators are tolerated, anything else is not
	require.True(t, ValidateCardNumber("4532 0151 1283 0366"))
	require.False(t, ValidateCardNumber("4532a015112830366"))
	require.False(t, ValidateCardNumber(""))

	// length bounds
	require.False(t, ValidateCardNumber("453201511283"))      // 12 digits
	require.False(t, ValidateCardNumber("45320151128303660000")) // 20 digits
}

func TestValidateCardNumber_SingleDigitMutation(t *testing.T) {
	valid := "4532015112830366"
	for i := 0; i < len(valid); i++ {
		mutated := []byte(valid)
		mutated[i] = '0' + (mutated[i]-'0'+1)%10
		require.False(t, ValidateCardNumber(string(mutated)), "digit %d", i)
	}
}

func TestDetectCardType(t *testing.T) {
	cases := []struct {
		number string
		want   string
	}{
		{"4532015112830366", "visa"},
		{"5425233430109903", "mastercard"},
		{"2223000048400011", "mastercard"},
		{"378282246310005", "amex"},
		{"6011111111111117", "discover"},
		{"30569309025904", "diners"},
		{"3530111333300000", "jcb"},
		{"6200000000000005", "unionpay"},
		{"9999999999999999", "unknown"},
		{"", "unknown"},
		{"not-a-number", "unknown"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, DetectCardType(tc.number).Type, "number %q", tc.number)
	}
	require.Equal(t, "Unknown", DetectCardType("").Brand)
}

func TestValidateCVV(t *testing.T) {
	require.True(t, ValidateCVV("123", "visa"))
	require.False(t, ValidateCVV("123", "amex"))
	require.True(t, ValidateCVV("1234", "amex"))
	require.False(t, ValidateCVV("1234", "visa"))
	require.False(t, ValidateCVV("12a", "visa"))
	require.False(t, ValidateCVV("", "visa"))
}

func TestValidateExpiry_Boundary(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	require.True(t, validateExpiryAt("06", "25", now))
	require.False(t, validateExpiryAt("05", "25", now))
	require.True(t, validateExpiryAt("07", "25", now))
	require.True(t, validateExpiryAt("01", "26", now))
	require.True(t, validateExpiryAt("12", "2030", now))
	require.False(t, validateExpiryAt("12", "2024", now))

	require.False(t, validateExpiryAt("13", "26", now))
	require.False(t, validateExpiryAt("0", "26", now))
	require.False(t, validateExpiryAt("aa", "26", now))
	require.False(t, validateExpiryAt("06", "bb", now))
}

func TestFormatCardNumber(t *testing.T) {
	require.Equal(t, "4532 0151 1283 0366", FormatCardNumber("4532015112830366"))
	require.Equal(t, "3782 822463 10005", FormatCardNumber("378282246310005"))
	require.Equal(t, "4532 0151", FormatCardNumber("45320151"))
	require.Equal(t, "", FormatCardNumber("no digits"))

	// mastercard input longer than the scheme allows is truncated
	require.Equal(t, "5425 2334 3010 9903", FormatCardNumber("542523343010990312"))
}
