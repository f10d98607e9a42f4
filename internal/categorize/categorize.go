// Package categorize partitions eligible lots into gain/loss buckets by term
// and derives the call-scoped PortfolioContext and AdaptiveThresholds.
package categorize

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

// Categories is the four-way partition of eligible lots by term and sign.
type Categories struct {
	STGain []lotmodel.Lot
	STLoss []lotmodel.Lot
	LTGain []lotmodel.Lot
	LTLoss []lotmodel.Lot
}

// Partition splits the given lots into the four categories by term and
// gain/loss sign. It applies no eligibility checks of its own; the engine
// passes the lots that survive its account-type and wash-sale filters, and
// IncludedInSelling is not consulted at any stage.
func Partition(lots []lotmodel.Lot) Categories {
	var c Categories
	for _, lot := range lots {
		switch {
		case lot.Term == lotmodel.TermShort && !lot.UnrealizedGain.IsNegative():
			c.STGain = append(c.STGain, lot)
		case lot.Term == lotmodel.TermShort && lot.UnrealizedGain.IsNegative():
			c.STLoss = append(c.STLoss, lot)
		case lot.Term == lotmodel.TermLong && !lot.UnrealizedGain.IsNegative():
			c.LTGain = append(c.LTGain, lot)
		default:
			c.LTLoss = append(c.LTLoss, lot)
		}
	}
	return c
}

// Context computes the PortfolioContext from the eligible lot set.
func Context(lots []lotmodel.Lot, thresholds lotmodel.SizeClassThresholds) lotmodel.PortfolioContext {
	ctx := lotmodel.PortfolioContext{TotalValue: decimal.Zero}
	if len(lots) == 0 {
		ctx.SizeClass = lotmodel.SizeSmall
		return ctx
	}

	symbols := make(map[string]struct{}, len(lots))
	for _, lot := range lots {
		ctx.TotalValue = ctx.TotalValue.Add(lot.Proceeds())
		symbols[lot.Symbol] = struct{}{}
	}
	ctx.PositionCount = len(symbols)
	ctx.AverageLotValue = ctx.TotalValue.Div(decimal.NewFromInt(int64(len(lots))))

	switch {
	case ctx.TotalValue.LessThan(thresholds.SmallMax):
		ctx.SizeClass = lotmodel.SizeSmall
	case ctx.TotalValue.LessThan(thresholds.MediumMax):
		ctx.SizeClass = lotmodel.SizeMedium
	default:
		ctx.SizeClass = lotmodel.SizeLarge
	}

	large := ctx.AverageLotValue.Mul(decimal.NewFromInt(10))
	small := ctx.AverageLotValue.Mul(decimal.NewFromFloat(0.1))
	for _, lot := range lots {
		v := lot.Proceeds()
		if v.GreaterThan(large) {
			ctx.HasLargeLots = true
		}
		if v.LessThan(small) {
			ctx.HasSmallLots = true
		}
	}

	return ctx
}

// AdaptiveThresholds scales tolerance bands by portfolio size. n is the count of eligible
// lots feeding the calculation (used for the max-trades cap).
func AdaptiveThresholds(ctx lotmodel.PortfolioContext, n int) lotmodel.AdaptiveThresholds {
	switch ctx.SizeClass {
	case lotmodel.SizeMedium:
		return lotmodel.AdaptiveThresholds{
			MinTarget:            maxDec(decimal.NewFromInt(500), ctx.TotalValue.Mul(decimal.NewFromFloat(0.0005))),
			MinTradeAmount:       maxDec(decimal.NewFromInt(100), ctx.AverageLotValue.Mul(decimal.NewFromFloat(0.10))),
			MaxTradesPerCategory: minInt(8, int(math.Floor(0.4*float64(n)))),
		}
	case lotmodel.SizeLarge:
		return lotmodel.AdaptiveThresholds{
			MinTarget:            maxDec(decimal.NewFromInt(2000), ctx.TotalValue.Mul(decimal.NewFromFloat(0.0002))),
			MinTradeAmount:       maxDec(decimal.NewFromInt(500), ctx.AverageLotValue.Mul(decimal.NewFromFloat(0.15))),
			MaxTradesPerCategory: minInt(15, int(math.Floor(0.5*float64(n)))),
		}
	default: // small
		return lotmodel.AdaptiveThresholds{
			MinTarget:            maxDec(decimal.NewFromInt(50), ctx.TotalValue.Mul(decimal.NewFromFloat(0.001))),
			MinTradeAmount:       maxDec(decimal.NewFromInt(25), ctx.AverageLotValue.Mul(decimal.NewFromFloat(0.05))),
			MaxTradesPerCategory: minInt(5, int(math.Floor(0.3*float64(n)))),
		}
	}
}

func maxDec(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
