package validate

import (
	"regexp"
	"strings"
)

// Phone country profiles. The Kenyan profile covers Safaricom/Airtel mobile
// ranges (prefix 7 or 1 after the country code); the generic profile accepts
// any plausibly E.164-shaped number.
const (
	CountryKE      = "KE"
	CountryGeneric = "generic"
)

var (
	kenyanLocal = regexp.MustCompile(`^0[17]\d{8}$`)
	kenyanE164  = regexp.MustCompile(`^254[17]\d{8}$`)
	kenyanBare  = regexp.MustCompile(`^[17]\d{8}$`)
	genericE164 = regexp.MustCompile(`^\+?\d{10,15}$`)
)

func stripPhone(phone string) string {
	s := strings.TrimSpace(phone)
	s = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(s)
	return strings.TrimPrefix(s, "+")
}

// ValidatePhoneNumber reports whether phone is a valid mobile number for the
// given country profile. An unrecognized country falls back to the generic
// profile.
func ValidatePhoneNumber(phone, country string) bool {
	s := stripPhone(phone)
	if s == "" {
		return false
	}
	switch country {
	case CountryKE:
		return kenyanLocal.MatchString(s) || kenyanE164.MatchString(s) || kenyanBare.MatchString(s)
	default:
		return genericE164.MatchString(s)
	}
}

// FormatPhoneNumber normalizes a valid number to the form providers expect:
// bare digits with country code, no plus and no leading zero
// ("0712345678" -> "254712345678"). Idempotent; invalid input is returned
// stripped but otherwise untouched.
func FormatPhoneNumber(phone, country string) string {
	s := stripPhone(phone)
	if country != CountryKE {
		return s
	}
	switch {
	case kenyanE164.MatchString(s):
		return s
	case kenyanLocal.MatchString(s):
		return "254" + s[1:]
	case kenyanBare.MatchString(s):
		return "254" + s
	}
	return s
}
