package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CardType is the result of matching a card number against known scheme prefixes.
type CardType struct {
	Type  string `json:"type"`
	Brand string `json:"brand"`
}

type cardScheme struct {
	cardType string
	brand    string
	prefix   *regexp.Regexp
	maxLen   int
}

// Order matters: 2-series Mastercard must win over the generic UnionPay 62 prefix,
// and Diners/JCB before the bare-3 Amex miss falls through.
var cardSchemes = []cardScheme{
	{"visa", "Visa", regexp.MustCompile(`^4`), 19},
	{"mastercard", "Mastercard", regexp.MustCompile(`^(5[1-5]|2[2-7])`), 16},
	{"amex", "American Express", regexp.MustCompile(`^3[47]`), 15},
	{"discover", "Discover", regexp.MustCompile(`^(6011|65|64[4-9])`), 19},
	{"diners", "Diners Club", regexp.MustCompile(`^3(0[0-5]|[68])`), 14},
	{"jcb", "JCB", regexp.MustCompile(`^35(2[89]|[3-8])`), 19},
	{"unionpay", "UnionPay", regexp.MustCompile(`^62`), 19},
}

var nonDigits = regexp.MustCompile(`\D`)

func digitsOnly(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// DetectCardType matches the number's digit prefix against known schemes.
// Malformed input never panics; an unmatched prefix yields the unknown type.
func DetectCardType(number string) CardType {
	n := digitsOnly(number)
	if n != "" {
		for _, s := range cardSchemes {
			if s.prefix.MatchString(n) {
				return CardType{Type: s.cardType, Brand: s.brand}
			}
		}
	}
	return CardType{Type: "unknown", Brand: "Unknown"}
}

// ValidateCardNumber strips separators and applies length and Luhn checks.
func ValidateCardNumber(number string) bool {
	stripped := strings.ReplaceAll(number, " ", "")
	stripped = strings.ReplaceAll(stripped, "-", "")
	if stripped == "" || digitsOnly(stripped) != stripped {
		return false
	}
	if len(stripped) < 13 || len(stripped) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(stripped) - 1; i >= 0; i-- {
		d := int(stripped[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidateCVV requires exactly 4 digits for amex cards and 3 for everything else.
func ValidateCVV(cvv, cardType string) bool {
	want := 3
	if cardType == "amex" {
		want = 4
	}
	if len(cvv) != want {
		return false
	}
	return digitsOnly(cvv) == cvv
}

// ValidateExpiry reports whether month/year denote a month not yet past.
// Two-digit years are normalized by adding 2000; a card expiring in the
// current month is still valid.
func ValidateExpiry(month, year string) bool {
	return validateExpiryAt(month, year, time.Now())
}

func validateExpiryAt(month, year string, now time.Time) bool {
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return false
	}
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < 0 {
		return false
	}
	if y < 100 {
		y += 2000
	}
	if y > int(now.Year()) {
		return true
	}
	return y == now.Year() && m >= int(now.Month())
}

// FormatCardNumber groups digits for display: 4-6-5 for amex, blocks of four
// otherwise, truncated to the scheme's maximum printable length.
func FormatCardNumber(raw string) string {
	n := digitsOnly(raw)
	if n == "" {
		return ""
	}
	scheme := DetectCardType(n)
	maxLen := 16
	for _, s := range cardSchemes {
		if s.cardType == scheme.Type {
			maxLen = s.maxLen
			break
		}
	}
	if len(n) > maxLen {
		n = n[:maxLen]
	}

	var groups []string
	if scheme.Type == "amex" {
		for _, w := range []int{4, 6, 5} {
			if len(n) == 0 {
				break
			}
			if w > len(n) {
				w = len(n)
			}
			groups = append(groups, n[:w])
			n = n[w:]
		}
	} else {
		for len(n) > 0 {
			w := 4
			if w > len(n) {
				w = len(n)
			}
			groups = append(groups, n[:w])
			n = n[w:]
		}
	}
	return strings.Join(groups, " ")
}
