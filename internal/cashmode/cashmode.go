// Package cashmode implements the cash-raising selector: accumulate
// whole lots toward a required cash amount while minimizing realized tax
// cost and honoring signed caps on short-term and long-term gain.
package cashmode

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

// Params bundles the cash-raising inputs.
type Params struct {
	CashNeeded      decimal.Decimal
	CurrentCash     decimal.Decimal
	MaxAllowableST  decimal.Decimal
	MaxAllowableLT  decimal.Decimal
}

// Result is the raw selection before Recommendation assembly.
type Result struct {
	Lots          []lotmodel.Lot
	ActualRaised  decimal.Decimal
	ShortTermGain decimal.Decimal
	LongTermGain  decimal.Decimal
}

// Select orders eligible lots by tax desirability and accumulates whole
// lots until the additional cash need is met, rejecting any lot whose
// inclusion would break the signed ST/LT gain caps.
func Select(lots []lotmodel.Lot, params Params) Result {
	additionalNeeded := params.CashNeeded.Sub(params.CurrentCash)
	res := Result{ActualRaised: decimal.Zero, ShortTermGain: decimal.Zero, LongTermGain: decimal.Zero}
	if additionalNeeded.LessThanOrEqual(decimal.Zero) {
		return res
	}

	ordered := rankByDesirability(lots)
	remaining := additionalNeeded

	for remaining.GreaterThan(decimal.Zero) {
		idx := -1
		for i, lot := range ordered {
			newST := res.ShortTermGain
			newLT := res.LongTermGain
			if lot.Term == lotmodel.TermShort {
				newST = newST.Add(lot.UnrealizedGain)
			} else {
				newLT = newLT.Add(lot.UnrealizedGain)
			}
			if violatesCap(newST, params.MaxAllowableST) || violatesCap(newLT, params.MaxAllowableLT) {
				continue
			}
			proceeds := lot.Proceeds()
			if proceeds.Abs().LessThanOrEqual(remaining.Mul(decimal.NewFromFloat(1.1))) {
				idx = i
				break
			}
			// Otherwise only acceptable if it is the minimum-proceeds lot
			// that still closes the remaining gap; deferred to the
			// closing-candidate scan below.
		}

		if idx == -1 {
			idx = closingCandidate(ordered, remaining, res, params)
		}
		if idx == -1 {
			break
		}

		chosen := ordered[idx]
		res.Lots = append(res.Lots, chosen)
		res.ActualRaised = res.ActualRaised.Add(chosen.Proceeds())
		if chosen.Term == lotmodel.TermShort {
			res.ShortTermGain = res.ShortTermGain.Add(chosen.UnrealizedGain)
		} else {
			res.LongTermGain = res.LongTermGain.Add(chosen.UnrealizedGain)
		}
		remaining = additionalNeeded.Sub(res.ActualRaised)
		ordered = append(ordered[:idx], ordered[idx+1:]...)
	}

	return res
}

// closingCandidate finds the lot with the smallest proceeds among those
// that both satisfy the caps and would close the remaining gap.
func closingCandidate(ordered []lotmodel.Lot, remaining decimal.Decimal, res Result, params Params) int {
	best := -1
	var bestProceeds decimal.Decimal
	for i, lot := range ordered {
		newST := res.ShortTermGain
		newLT := res.LongTermGain
		if lot.Term == lotmodel.TermShort {
			newST = newST.Add(lot.UnrealizedGain)
		} else {
			newLT = newLT.Add(lot.UnrealizedGain)
		}
		if violatesCap(newST, params.MaxAllowableST) || violatesCap(newLT, params.MaxAllowableLT) {
			continue
		}
		proceeds := lot.Proceeds()
		if proceeds.LessThan(remaining) {
			continue
		}
		if best == -1 || proceeds.LessThan(bestProceeds) {
			best = i
			bestProceeds = proceeds
		}
	}
	return best
}

func violatesCap(sum, cap decimal.Decimal) bool {
	if cap.GreaterThanOrEqual(decimal.Zero) {
		return sum.GreaterThan(cap)
	}
	return sum.LessThan(cap)
}

// rankByDesirability orders lots losses-first, then long-term small gains,
// then short-term small gains, ties broken by larger proceeds.
func rankByDesirability(lots []lotmodel.Lot) []lotmodel.Lot {
	ranked := append([]lotmodel.Lot(nil), lots...)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := rank(ranked[i]), rank(ranked[j])
		if ri != rj {
			return ri < rj
		}
		// Within a bucket, smaller gain magnitude is preferred before
		// falling back to the larger-proceeds tiebreak.
		if !ranked[i].UnrealizedGain.Abs().Equal(ranked[j].UnrealizedGain.Abs()) {
			return ranked[i].UnrealizedGain.Abs().LessThan(ranked[j].UnrealizedGain.Abs())
		}
		return ranked[i].Proceeds().GreaterThan(ranked[j].Proceeds())
	})
	return ranked
}

// rank buckets a lot: 0 = loss, 1 = long-term gain, 2 = short-term gain.
func rank(lot lotmodel.Lot) int {
	if lot.IsLoss() {
		return 0
	}
	if lot.Term == lotmodel.TermLong {
		return 1
	}
	return 2
}
