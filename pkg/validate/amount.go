package validate

import "github.com/shopspring/decimal"

// ValidAmount gates every money-movement request: amounts must be strictly
// positive before any provider dispatch is attempted.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive()
}
