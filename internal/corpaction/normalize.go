// Package corpaction re-expresses lot quantity/basis/price after splits,
// mergers, and spinoffs effective on or before the valuation date.
package corpaction

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

// Normalize applies each lot's corporate-action history, in chronological
// order, up to and including valuationDate, and returns a new slice of lots
// with quantity/price/symbol updated and UnrealizedGain recomputed. The
// input slice is never mutated.
func Normalize(lots []lotmodel.Lot, valuationDate time.Time) []lotmodel.Lot {
	out := make([]lotmodel.Lot, len(lots))
	for i, lot := range lots {
		out[i] = normalizeLot(lot, valuationDate)
	}
	return out
}

func normalizeLot(lot lotmodel.Lot, valuationDate time.Time) lotmodel.Lot {
	if len(lot.CorporateActions) == 0 {
		return lot
	}

	applicable := make([]lotmodel.CorporateAction, 0, len(lot.CorporateActions))
	for _, a := range lot.CorporateActions {
		if !a.EffectiveDate.After(valuationDate) {
			applicable = append(applicable, a)
		}
	}
	sort.SliceStable(applicable, func(i, j int) bool {
		return applicable[i].EffectiveDate.Before(applicable[j].EffectiveDate)
	})

	for _, action := range applicable {
		switch action.Kind {
		case lotmodel.ActionSplit:
			if action.Ratio != nil && action.Ratio.IsPositive() {
				lot.Quantity = lot.Quantity.Mul(*action.Ratio)
				lot.Price = lot.Price.Div(*action.Ratio)
			}
		case lotmodel.ActionMerger:
			if action.NewSymbol != nil && *action.NewSymbol != "" {
				lot.Symbol = *action.NewSymbol
			}
			if action.ExchangeRatio != nil && action.ExchangeRatio.IsPositive() {
				lot.Quantity = lot.Quantity.Mul(*action.ExchangeRatio)
			}
		case lotmodel.ActionSpinoff:
			lot.CorporateActionFlag = true
			if action.NewEntityBasisAllocation != nil {
				retained := decimal.NewFromInt(1).Sub(*action.NewEntityBasisAllocation)
				lot.CostBasis = lot.CostBasis.Mul(retained)
			}
		case lotmodel.ActionDividend:
			// No effect on basis here; dividend cash is out of scope.
		}
	}

	lot.UnrealizedGain = lot.Quantity.Mul(lot.Price).Sub(lot.CostBasis)
	return lot
}
