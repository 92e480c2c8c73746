// internal/pkg/money/money.go
package money

import "github.com/shopspring/decimal"

// Currency is the only settlement currency.
const Currency = "SAR"

var (
	// VATRate is the Saudi VAT rate applied to booking invoices.
	VATRate = decimal.RequireFromString("0.15")

	// PriceTolerance is the largest accepted gap between a client submitted
	// total and the server computed one.
	PriceTolerance = decimal.RequireFromString("0.01")

	hundred = decimal.NewFromInt(100)
)

// Round rounds to 2 decimal places, half away from zero (half-up for the
// non-negative amounts this service deals in).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// VAT returns the rounded tax and the total for a subtotal.
func VAT(subtotal decimal.Decimal) (tax, total decimal.Decimal) {
	subtotal = Round(subtotal)
	tax = Round(subtotal.Mul(VATRate))
	return tax, subtotal.Add(tax)
}

// WithinTolerance reports whether a and b differ by at most PriceTolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(PriceTolerance)
}

// ToHalalas converts an SAR amount to the gateway's minor unit.
func ToHalalas(d decimal.Decimal) int64 {
	return Round(d).Mul(hundred).IntPart()
}

// FromHalalas converts a gateway minor-unit amount to SAR.
func FromHalalas(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}
