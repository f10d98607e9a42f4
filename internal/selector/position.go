package selector

import (
	"github.com/shopspring/decimal"

	"github.com/harveston/harvestengine/internal/grouping"
	"github.com/harveston/harvestengine/internal/lotmodel"
)

// tryPositionAware consults per-position alternatives (single-lot, two-lot,
// full-position, interior subset) alongside the chosen baseline result and
// swaps in any alternative whose contribution to the running total lands
// closer to needed without breaking the trade cap. It only runs when the
// pool and target clear Config's position-aware floors.
func tryPositionAware(pool []lotmodel.Lot, needed decimal.Decimal, maxTrades int, cfg Config, baseline greedyResult) greedyResult {
	if len(pool) < cfg.PositionAwarePoolFloor {
		return baseline
	}
	if needed.Abs().LessThan(cfg.PositionAwareNeededFloor) {
		return baseline
	}

	byPosition := grouping.ByPosition(pool)
	chosenSymbols := map[string]bool{}
	for _, lot := range baseline.lots {
		chosenSymbols[lot.Symbol] = true
	}

	improved := baseline
	improvedDiff := needed.Sub(improved.accumulated).Abs()
	symbolCounts := map[string]int{}
	for _, lot := range improved.lots {
		symbolCounts[lot.Symbol]++
	}

	considered := 0
	for symbol, group := range byPosition {
		if considered >= cfg.AlternativesEnumCap {
			break
		}
		considered++
		if !chosenSymbols[symbol] {
			continue
		}
		alts := grouping.Alternatives(group, needed.Sub(baselineWithoutSymbol(baseline, symbol)))
		for _, alt := range alts {
			replaced := replaceSymbol(improved, symbol, alt.Lots)
			if len(replaced.lots) > maxTrades {
				continue
			}
			diff := needed.Sub(replaced.accumulated).Abs()
			if diff.LessThan(improvedDiff) {
				improved = replaced
				improvedDiff = diff
			}
		}
	}
	return improved
}

func baselineWithoutSymbol(res greedyResult, symbol string) decimal.Decimal {
	sum := decimal.Zero
	for _, lot := range res.lots {
		if lot.Symbol != symbol {
			sum = sum.Add(lot.UnrealizedGain)
		}
	}
	return sum
}

func replaceSymbol(res greedyResult, symbol string, replacement []lotmodel.Lot) greedyResult {
	out := greedyResult{strategy: res.strategy, accumulated: decimal.Zero}
	symbolCounts := map[string]int{}
	for _, lot := range res.lots {
		if lot.Symbol == symbol {
			continue
		}
		out.lots = append(out.lots, lot)
		out.accumulated = out.accumulated.Add(lot.UnrealizedGain)
		symbolCounts[lot.Symbol]++
	}
	for _, lot := range replacement {
		out.lots = append(out.lots, lot)
		out.accumulated = out.accumulated.Add(lot.UnrealizedGain)
		symbolCounts[lot.Symbol]++
	}
	for _, lot := range out.lots {
		out.totalScore += Score(lot, out.accumulated, symbolCounts)
	}
	return out
}
