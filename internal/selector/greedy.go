package selector

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

// candidate pairs a lot with its lazily-recomputed score.
type candidate struct {
	lot   lotmodel.Lot
	score float64
}

// greedyResult is one strategy's output, before cap-check.
type greedyResult struct {
	lots       []lotmodel.Lot
	accumulated decimal.Decimal
	totalScore  float64
	strategy    string
}

// runGreedy executes the three greedy strategies and returns the best
// by |accumulated-needed|, tie-broken by fewer lots then higher score.
// capLimit bounds |accumulated| throughout each strategy's build, not just
// on the finished candidate: a lot that would push the running sum past the
// cap is skipped in favor of the next candidate, rather than failing the
// whole strategy.
func runGreedy(pool []lotmodel.Lot, needed, capLimit decimal.Decimal, maxTrades int) greedyResult {
	results := []greedyResult{
		proximityFirst(pool, needed, capLimit, maxTrades),
		valueFirst(pool, needed, capLimit, maxTrades),
		directionalEfficiency(pool, needed, capLimit, maxTrades),
	}

	best := results[0]
	bestDiff := needed.Sub(best.accumulated).Abs()
	for _, r := range results[1:] {
		diff := needed.Sub(r.accumulated).Abs()
		if better(diff, len(r.lots), r.totalScore, bestDiff, len(best.lots), best.totalScore) {
			best = r
			bestDiff = diff
		}
	}
	return best
}

func better(diff decimal.Decimal, count int, score float64, bestDiff decimal.Decimal, bestCount int, bestScore float64) bool {
	if !diff.Equal(bestDiff) {
		return diff.LessThan(bestDiff)
	}
	if count != bestCount {
		return count < bestCount
	}
	return score > bestScore
}

func proximityFirst(pool []lotmodel.Lot, needed, capLimit decimal.Decimal, maxTrades int) greedyResult {
	symbolCounts := map[string]int{}
	scored := make([]candidate, len(pool))
	for i, lot := range pool {
		scored[i] = candidate{lot: lot, score: proximityOnly(lot, needed)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	res := greedyResult{strategy: "proximity_first", accumulated: decimal.Zero}
	threshold := needed.Abs().Mul(decimal.NewFromFloat(0.05))

	for _, c := range scored {
		if len(res.lots) >= maxTrades {
			break
		}
		remaining := needed.Sub(res.accumulated)
		if remaining.Abs().LessThanOrEqual(threshold) {
			break
		}
		newAccumulated := res.accumulated.Add(c.lot.UnrealizedGain)
		if newAccumulated.Abs().GreaterThan(capLimit) {
			continue
		}
		if needed.Sub(newAccumulated).Abs().LessThan(remaining.Abs()) {
			res.lots = append(res.lots, c.lot)
			res.accumulated = newAccumulated
			res.totalScore += Score(c.lot, needed, symbolCounts)
			symbolCounts[c.lot.Symbol]++
		}
	}
	return res
}

func valueFirst(pool []lotmodel.Lot, needed, capLimit decimal.Decimal, maxTrades int) greedyResult {
	remainingPool := append([]lotmodel.Lot(nil), pool...)
	symbolCounts := map[string]int{}
	res := greedyResult{strategy: "value_first", accumulated: decimal.Zero}

	for len(res.lots) < maxTrades && len(remainingPool) > 0 {
		remainingNeed := needed.Sub(res.accumulated)
		sort.SliceStable(remainingPool, func(i, j int) bool {
			return remainingNeed.Sub(remainingPool[i].UnrealizedGain).Abs().LessThan(remainingNeed.Sub(remainingPool[j].UnrealizedGain).Abs())
		})

		pickedIdx := -1
		for i, lot := range remainingPool {
			newAccumulated := res.accumulated.Add(lot.UnrealizedGain)
			if newAccumulated.Abs().GreaterThan(capLimit) {
				continue
			}
			if needed.Sub(newAccumulated).Abs().LessThan(remainingNeed.Abs()) {
				pickedIdx = i
				break
			}
		}
		if pickedIdx == -1 {
			break
		}

		picked := remainingPool[pickedIdx]
		res.lots = append(res.lots, picked)
		res.accumulated = res.accumulated.Add(picked.UnrealizedGain)
		res.totalScore += Score(picked, needed, symbolCounts)
		symbolCounts[picked.Symbol]++
		remainingPool = append(remainingPool[:pickedIdx], remainingPool[pickedIdx+1:]...)
	}
	return res
}

func directionalEfficiency(pool []lotmodel.Lot, needed, capLimit decimal.Decimal, maxTrades int) greedyResult {
	sign := needed.Sign()
	symbolCounts := map[string]int{}
	var onDirection, offDirection []lotmodel.Lot
	for _, lot := range pool {
		if lot.UnrealizedGain.Sign() == sign {
			onDirection = append(onDirection, lot)
		} else {
			offDirection = append(offDirection, lot)
		}
	}
	sort.SliceStable(onDirection, func(i, j int) bool {
		return Score(onDirection[i], needed, symbolCounts) > Score(onDirection[j], needed, symbolCounts)
	})
	sort.SliceStable(offDirection, func(i, j int) bool {
		return Score(offDirection[i], needed, symbolCounts) > Score(offDirection[j], needed, symbolCounts)
	})

	maxOffDirection := maxTrades / 2
	res := greedyResult{strategy: "directional_efficiency", accumulated: decimal.Zero}
	offUsed := 0

	tryAdd := func(lot lotmodel.Lot) bool {
		remaining := needed.Sub(res.accumulated)
		newAccumulated := res.accumulated.Add(lot.UnrealizedGain)
		if newAccumulated.Abs().GreaterThan(capLimit) {
			return false
		}
		if needed.Sub(newAccumulated).Abs().LessThan(remaining.Abs()) {
			res.lots = append(res.lots, lot)
			res.accumulated = newAccumulated
			res.totalScore += Score(lot, needed, symbolCounts)
			symbolCounts[lot.Symbol]++
			return true
		}
		return false
	}

	for _, lot := range onDirection {
		if len(res.lots) >= maxTrades {
			return res
		}
		tryAdd(lot)
	}
	for _, lot := range offDirection {
		if len(res.lots) >= maxTrades || offUsed >= maxOffDirection {
			break
		}
		if tryAdd(lot) {
			offUsed++
		}
	}
	return res
}

func proximityOnly(lot lotmodel.Lot, target decimal.Decimal) float64 {
	return 1.0 / (1.0 + absFloat(target.Sub(lot.UnrealizedGain)))
}
