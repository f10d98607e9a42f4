package selector

import (
	"github.com/shopspring/decimal"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

// Score evaluates a lot against the running target and selection state
// using a weighted sum. Weights are heuristic tuning constants
// (not money), so the computation is carried out in float64 once the
// decimal inputs are reduced to plain numbers.
func Score(lot lotmodel.Lot, target decimal.Decimal, symbolCounts map[string]int) float64 {
	proximity := 1.0 / (1.0 + absFloat(target.Sub(lot.UnrealizedGain)))
	efficiency := absFloat(lot.UnrealizedGain) / 1000.0

	concentration := 1.0
	if symbolCounts[lot.Symbol] > 3 {
		concentration = 0.5
	}

	liquidity := lot.Proceeds().Div(decimal.NewFromInt(10_000)).InexactFloat64()
	if liquidity > 2.0 {
		liquidity = 2.0
	}
	if liquidity < 0 {
		liquidity = 0
	}

	washPenalty := 1.0
	if lot.UnrealizedGain.IsNegative() {
		washPenalty = 0.8
	}

	return 0.4*proximity + 0.3*efficiency + 0.1*concentration + 0.1*liquidity + 0.1*washPenalty
}

func absFloat(d decimal.Decimal) float64 {
	return d.Abs().InexactFloat64()
}

// efficiencyRatio is |gain|/(quantity*price), used by excess-trade pruning.
func efficiencyRatio(lot lotmodel.Lot) decimal.Decimal {
	proceeds := lot.Proceeds()
	if proceeds.IsZero() {
		return decimal.Zero
	}
	return lot.UnrealizedGain.Abs().Div(proceeds)
}
