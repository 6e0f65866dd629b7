package services

// PricedLine is a line item with the unit price captured when the order
// was placed.
type PricedLine struct {
	Quantity  int
	UnitPrice float64
}

// LineTotal is quantity × unit price in float64. No currency rounding is
// applied.
func LineTotal(quantity int, unitPrice float64) float64 {
	return float64(quantity) * unitPrice
}

// Total sums the line totals in input order. An empty slice totals 0.
func Total(lines []PricedLine) float64 {
	var sum float64
	for _, l := range lines {
		sum += LineTotal(l.Quantity, l.UnitPrice)
	}
	return sum
}
