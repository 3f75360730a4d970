// Package pricing implements per-line price calculation and proforma total
// aggregation. All arithmetic is plain float64 with no internal rounding;
// rounding to currency precision happens only at presentation and storage
// boundaries so intermediate aggregation stays precise.
package pricing

// LineResult holds the computed price breakdown for a single line item
type LineResult struct {
	Earned    float64
	UnitPrice float64
	LineTotal float64
}

// Line carries the pricing inputs of one proforma item
type Line struct {
	UnitCost       float64
	PercentageGain float64
	Quantity       float64
}

// Totals holds the aggregates of a proforma alongside its per-line totals,
// so callers can persist item rows and header aggregates from a single pass
type Totals struct {
	LineTotals []float64
	Subtotal   float64
	IVAAmount  float64
	Total      float64
}

// PriceLine computes the earned margin, unit price and line total for one
// item. Negative inputs are a caller validation concern, not enforced here.
func PriceLine(unitCost, percentageGain, quantity float64) LineResult {
	earned := unitCost * (percentageGain / 100)
	unitPrice := unitCost + earned
	return LineResult{
		Earned:    earned,
		UnitPrice: unitPrice,
		LineTotal: unitPrice * quantity,
	}
}

// Aggregate prices every line and applies the tax percentage to the summed
// subtotal. Line totals are returned in input order.
func Aggregate(lines []Line, ivaPercentage float64) Totals {
	totals := Totals{
		LineTotals: make([]float64, len(lines)),
	}

	for i, line := range lines {
		result := PriceLine(line.UnitCost, line.PercentageGain, line.Quantity)
		totals.LineTotals[i] = result.LineTotal
		totals.Subtotal += result.LineTotal
	}

	totals.IVAAmount = totals.Subtotal * (ivaPercentage / 100)
	totals.Total = totals.Subtotal + totals.IVAAmount
	return totals
}
