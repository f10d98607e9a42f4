// Package grouping groups lots by symbol and enumerates per-symbol sell
// alternatives for the position-aware selection path.
package grouping

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

// Strategy names one of the four alternative shapes a position can offer.
type Strategy string

const (
	StrategySingleLot Strategy = "single_lot"
	StrategyTwoLot    Strategy = "two_lot"
	StrategyFull      Strategy = "full_position"
	StrategyInterior  Strategy = "interior_subset"
)

// Alternative is one candidate way to sell (part of) a position.
type Alternative struct {
	Lots      []lotmodel.Lot
	TotalGain decimal.Decimal
	Strategy  Strategy
}

// ByPosition groups lots by symbol, preserving first-seen order.
func ByPosition(lots []lotmodel.Lot) map[string][]lotmodel.Lot {
	groups := make(map[string][]lotmodel.Lot)
	for _, lot := range lots {
		groups[lot.Symbol] = append(groups[lot.Symbol], lot)
	}
	return groups
}

// Alternatives enumerates up to four alternatives for one symbol's lots
// relative to target.
func Alternatives(group []lotmodel.Lot, target decimal.Decimal) []Alternative {
	if len(group) == 0 {
		return nil
	}

	byProximity := append([]lotmodel.Lot(nil), group...)
	absTarget := target.Abs()
	sort.SliceStable(byProximity, func(i, j int) bool {
		di := target.Sub(byProximity[i].UnrealizedGain).Abs()
		dj := target.Sub(byProximity[j].UnrealizedGain).Abs()
		return di.LessThan(dj)
	})

	var alternatives []Alternative

	single := bestSingleLot(byProximity, target, absTarget)
	alternatives = append(alternatives, Alternative{
		Lots: []lotmodel.Lot{single}, TotalGain: single.UnrealizedGain, Strategy: StrategySingleLot,
	})

	if len(byProximity) >= 2 {
		pair := []lotmodel.Lot{byProximity[0], byProximity[1]}
		sum := pair[0].UnrealizedGain.Add(pair[1].UnrealizedGain)
		alternatives = append(alternatives, Alternative{Lots: pair, TotalGain: sum, Strategy: StrategyTwoLot})
	}

	fullSum := decimal.Zero
	for _, lot := range group {
		fullSum = fullSum.Add(lot.UnrealizedGain)
	}
	alternatives = append(alternatives, Alternative{Lots: append([]lotmodel.Lot(nil), group...), TotalGain: fullSum, Strategy: StrategyFull})

	best := bestDiff(alternatives, target)
	maxLen := len(byProximity)
	if maxLen > 4 {
		maxLen = 4
	}
	runningSum := decimal.Zero
	for i := 0; i < maxLen; i++ {
		runningSum = runningSum.Add(byProximity[i].UnrealizedGain)
		diff := target.Sub(runningSum).Abs()
		if diff.LessThan(best) {
			best = diff
			alternatives = append(alternatives, Alternative{
				Lots:      append([]lotmodel.Lot(nil), byProximity[:i+1]...),
				TotalGain: runningSum,
				Strategy:  StrategyInterior,
			})
		}
	}

	return alternatives
}

func bestSingleLot(sortedByProximity []lotmodel.Lot, target, absTarget decimal.Decimal) lotmodel.Lot {
	best := sortedByProximity[0]
	bestDiff := target.Sub(best.UnrealizedGain).Abs()
	tieBand := absTarget.Mul(decimal.NewFromFloat(0.10))

	for _, lot := range sortedByProximity[1:] {
		diff := target.Sub(lot.UnrealizedGain).Abs()
		if diff.Sub(bestDiff).Abs().LessThanOrEqual(tieBand) {
			if lot.UnrealizedGain.Abs().GreaterThan(best.UnrealizedGain.Abs()) {
				best = lot
				if diff.LessThan(bestDiff) {
					bestDiff = diff
				}
			}
		}
	}
	return best
}

func bestDiff(alternatives []Alternative, target decimal.Decimal) decimal.Decimal {
	best := target.Sub(alternatives[0].TotalGain).Abs()
	for _, a := range alternatives[1:] {
		d := target.Sub(a.TotalGain).Abs()
		if d.LessThan(best) {
			best = d
		}
	}
	return best
}
