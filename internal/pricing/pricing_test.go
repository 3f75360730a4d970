package pricing_test

import (
	"testing"

	"github.com/facturaec/proforma-api/internal/pricing"
	"github.com/stretchr/testify/assert"
)

func TestPriceLine(t *testing.T) {
	tests := []struct {
		name           string
		unitCost       float64
		percentageGain float64
		quantity       float64
		expected       pricing.LineResult
	}{
		{
			name:     "no gain",
			unitCost: 100, percentageGain: 0, quantity: 2,
			expected: pricing.LineResult{Earned: 0, UnitPrice: 100, LineTotal: 200},
		},
		{
			name:     "twenty percent gain single unit",
			unitCost: 100, percentageGain: 20, quantity: 1,
			expected: pricing.LineResult{Earned: 20, UnitPrice: 120, LineTotal: 120},
		},
		{
			name:     "fifty percent gain",
			unitCost: 10, percentageGain: 50, quantity: 5,
			expected: pricing.LineResult{Earned: 5, UnitPrice: 15, LineTotal: 75},
		},
		{
			name:     "fractional quantity",
			unitCost: 8, percentageGain: 25, quantity: 0.5,
			expected: pricing.LineResult{Earned: 2, UnitPrice: 10, LineTotal: 5},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := pricing.PriceLine(tc.unitCost, tc.percentageGain, tc.quantity)
			assert.InDelta(t, tc.expected.Earned, result.Earned, 1e-9)
			assert.InDelta(t, tc.expected.UnitPrice, result.UnitPrice, 1e-9)
			assert.InDelta(t, tc.expected.LineTotal, result.LineTotal, 1e-9)
		})
	}
}

func TestPriceLine_GainNeverDecreasesPrice(t *testing.T) {
	for _, gain := range []float64{0, 1, 12.5, 50, 100, 250} {
		result := pricing.PriceLine(37.5, gain, 3)
		assert.GreaterOrEqual(t, result.LineTotal, 37.5*3,
			"gain %.2f must not lower the line total", gain)
	}
}

func TestAggregate(t *testing.T) {
	lines := []pricing.Line{
		{UnitCost: 10, PercentageGain: 50, Quantity: 2}, // 30
		{UnitCost: 100, PercentageGain: 0, Quantity: 1}, // 100
		{UnitCost: 4, PercentageGain: 25, Quantity: 10}, // 50
	}

	totals := pricing.Aggregate(lines, 15)

	assert.Len(t, totals.LineTotals, 3)
	assert.InDelta(t, 30, totals.LineTotals[0], 1e-9)
	assert.InDelta(t, 100, totals.LineTotals[1], 1e-9)
	assert.InDelta(t, 50, totals.LineTotals[2], 1e-9)
	assert.InDelta(t, 180, totals.Subtotal, 1e-9)
	assert.InDelta(t, 27, totals.IVAAmount, 1e-9)
	assert.InDelta(t, 207, totals.Total, 1e-9)
}

func TestAggregate_TotalInvariant(t *testing.T) {
	lines := []pricing.Line{
		{UnitCost: 3.33, PercentageGain: 17, Quantity: 7},
		{UnitCost: 0.01, PercentageGain: 99.9, Quantity: 1000},
		{UnitCost: 1234.56, PercentageGain: 0, Quantity: 0.25},
	}

	for _, rate := range []float64{0, 12, 15, 21.5} {
		totals := pricing.Aggregate(lines, rate)
		assert.InDelta(t, totals.Subtotal+totals.Subtotal*rate/100, totals.Total, 1e-9)
		assert.InDelta(t, totals.Subtotal*rate/100, totals.IVAAmount, 1e-9)
	}
}

func TestAggregate_OrderIndependentWithinTolerance(t *testing.T) {
	forward := []pricing.Line{
		{UnitCost: 0.1, PercentageGain: 10, Quantity: 3},
		{UnitCost: 0.2, PercentageGain: 20, Quantity: 7},
		{UnitCost: 0.7, PercentageGain: 5, Quantity: 11},
	}
	reversed := []pricing.Line{forward[2], forward[1], forward[0]}

	a := pricing.Aggregate(forward, 15)
	b := pricing.Aggregate(reversed, 15)

	assert.InDelta(t, a.Subtotal, b.Subtotal, 1e-9)
	assert.InDelta(t, a.Total, b.Total, 1e-9)
}

func TestAggregate_Empty(t *testing.T) {
	totals := pricing.Aggregate(nil, 15)
	assert.Zero(t, totals.Subtotal)
	assert.Zero(t, totals.IVAAmount)
	assert.Zero(t, totals.Total)
	assert.Empty(t, totals.LineTotals)
}
