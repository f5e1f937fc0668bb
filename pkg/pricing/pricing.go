package pricing

import "github.com/shopspring/decimal"

// TaxRate is the flat marketplace tax applied to every order subtotal.
// There is no per-region or per-product variation today; a future tax
// policy would replace this constant.
var TaxRate = decimal.RequireFromString("0.10")

// LineItem is one priced cart line: the unit price and how many units.
type LineItem struct {
	UnitPriceCents int64
	Quantity       int
}

// Totals carries the money amounts of an order, in cents.
type Totals struct {
	SubtotalCents int64
	TaxCents      int64
	DiscountCents int64
	TotalCents    int64
}

// Quote prices a set of line items: subtotal is the exact sum of
// price x quantity, tax is 10% of the subtotal rounded half-up to whole
// cents, discount is zero (extension point for promotions), and
// total = subtotal + tax - discount. Pure function, no side effects.
func Quote(items []LineItem) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPriceCents * int64(item.Quantity)
	}

	tax := Dollars(subtotal).Mul(TaxRate).Round(2)
	var discount int64

	totals := Totals{
		SubtotalCents: subtotal,
		TaxCents:      tax.Shift(2).IntPart(),
		DiscountCents: discount,
	}
	totals.TotalCents = totals.SubtotalCents + totals.TaxCents - totals.DiscountCents
	return totals
}

// Dollars converts a cent amount into its decimal dollar representation.
func Dollars(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToFloat renders a cent amount as a float dollar value for API responses.
// The value is exact to two decimal places.
func ToFloat(cents int64) float64 {
	f, _ := Dollars(cents).Float64()
	return f
}

// ToCents converts a dollar amount from request input into whole cents,
// rounding half away from zero at the second decimal place.
func ToCents(dollars float64) int64 {
	return decimal.NewFromFloat(dollars).Round(2).Shift(2).IntPart()
}
