package selector

import (
	"github.com/shopspring/decimal"

	"github.com/harveston/harvestengine/internal/categorize"
	"github.com/harveston/harvestengine/internal/lotmodel"
)

// TermResult is the outcome of selecting lots for one term (short or long)
// toward one signed target.
type TermResult struct {
	Lots       []lotmodel.Lot
	Accumulated decimal.Decimal
	Strategy    string
	Unreachable bool
}

// SelectTerm picks lots from the term's gain/loss pool to approach needed.
// It runs the dynamic-programming strategy when affordable and the three
// greedy strategies, refines each improving candidate with a position-aware
// pass, and keeps the in-cap candidate closest to needed. When no candidate
// selects any lot within the overshoot cap, it returns an empty selection
// with Unreachable set.
func SelectTerm(pool []lotmodel.Lot, needed decimal.Decimal, maxTrades int, cfg Config) TermResult {
	if needed.IsZero() || maxTrades <= 0 {
		return TermResult{Accumulated: decimal.Zero, Strategy: "none"}
	}

	filtered := onDirectionPool(pool, needed)
	if len(filtered) == 0 {
		return TermResult{Accumulated: decimal.Zero, Strategy: "none", Unreachable: true}
	}

	overshoot := cfg.overshootFor(needed.Abs())
	capLimit := needed.Abs().Mul(decimal.NewFromInt(1).Add(overshoot))
	earlyStop := needed.Abs().Mul(cfg.EarlyTerminationFraction)

	var candidates []greedyResult

	if dpRes, ok := runDP(filtered, needed, capLimit, maxTrades, cfg); ok {
		candidates = append(candidates, dpRes)
	}
	candidates = append(candidates, runGreedy(filtered, needed, capLimit, maxTrades))

	var best *greedyResult
	var bestDiff decimal.Decimal
	for i := range candidates {
		c := candidates[i]
		accAbs := c.accumulated.Abs()
		if accAbs.GreaterThan(capLimit) {
			continue
		}
		diff := needed.Sub(c.accumulated).Abs()
		if best == nil || diff.LessThan(bestDiff) {
			refined := tryPositionAware(filtered, needed, maxTrades, cfg, c)
			if refined.accumulated.Abs().LessThanOrEqual(capLimit) {
				refinedDiff := needed.Sub(refined.accumulated).Abs()
				if refinedDiff.LessThan(diff) {
					c = refined
					diff = refinedDiff
				}
			}
			best = &c
			bestDiff = diff
		}
		if accAbs.GreaterThanOrEqual(earlyStop) {
			break
		}
	}

	if best == nil || len(best.lots) == 0 {
		return TermResult{Accumulated: decimal.Zero, Strategy: "none", Unreachable: true}
	}
	return TermResult{Lots: best.lots, Accumulated: best.accumulated, Strategy: best.strategy}
}

// onDirectionPool returns the lots whose sign matches the signed target:
// gains for a positive need, losses for a negative one.
func onDirectionPool(pool []lotmodel.Lot, needed decimal.Decimal) []lotmodel.Lot {
	sign := needed.Sign()
	var out []lotmodel.Lot
	for _, lot := range pool {
		if lot.UnrealizedGain.Sign() == sign {
			out = append(out, lot)
		}
	}
	return out
}

// Selection is the both-terms orchestration result.
type Selection struct {
	ShortTerm TermResult
	LongTerm  TermResult
	Warnings  []string
}

// Select runs the short-term and long-term selections independently, with
// category-empty adaptation: if a term's own-direction pool is empty but
// the remaining need is a gain target, it may be rerouted to the other
// term's gain pool (losses are never rerouted across terms).
func Select(cats categorize.Categories, targetST, targetLT decimal.Decimal, maxTradesPerCategory int, cfg Config) Selection {
	var warnings []string

	stPool := append(append([]lotmodel.Lot(nil), cats.STGain...), cats.STLoss...)
	ltPool := append(append([]lotmodel.Lot(nil), cats.LTGain...), cats.LTLoss...)

	stRes := SelectTerm(stPool, targetST, maxTradesPerCategory, cfg)
	if stRes.Unreachable && targetST.IsPositive() && len(cats.STGain) == 0 {
		stRes = SelectTerm(cats.LTGain, targetST, maxTradesPerCategory, cfg)
		if !stRes.Unreachable {
			warnings = append(warnings, "short_term target rerouted to long_term gains: no short_term gain pool available")
		}
	}

	ltRes := SelectTerm(ltPool, targetLT, maxTradesPerCategory, cfg)
	if ltRes.Unreachable && targetLT.IsPositive() && len(cats.LTGain) == 0 {
		ltRes = SelectTerm(cats.STGain, targetLT, maxTradesPerCategory, cfg)
		if !ltRes.Unreachable {
			warnings = append(warnings, "long_term target rerouted to short_term gains: no long_term gain pool available")
		}
	}

	if stRes.Unreachable && !targetST.IsZero() {
		warnings = append(warnings, "short_term target could not be reached within the overshoot cap")
	}
	if ltRes.Unreachable && !targetLT.IsZero() {
		warnings = append(warnings, "long_term target could not be reached within the overshoot cap")
	}

	sel := Selection{ShortTerm: stRes, LongTerm: ltRes, Warnings: warnings}
	pruneExcessiveTrades(&sel, maxTradesPerCategory)
	return sel
}

// pruneExcessiveTrades caps each term's trade count at maxTradesPerCategory,
// retaining the highest efficiencyRatio lots when a refinement pass pushed
// a result over the limit.
func pruneExcessiveTrades(sel *Selection, maxTradesPerCategory int) {
	sel.ShortTerm.Lots = capByEfficiency(sel.ShortTerm.Lots, maxTradesPerCategory)
	sel.LongTerm.Lots = capByEfficiency(sel.LongTerm.Lots, maxTradesPerCategory)
}

func capByEfficiency(lots []lotmodel.Lot, max int) []lotmodel.Lot {
	if len(lots) <= max {
		return lots
	}
	ranked := append([]lotmodel.Lot(nil), lots...)
	for i := 1; i < len(ranked); i++ {
		j := i
		for j > 0 && efficiencyRatio(ranked[j]).GreaterThan(efficiencyRatio(ranked[j-1])) {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
			j--
		}
	}
	return ranked[:max]
}
