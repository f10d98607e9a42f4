package categorize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

func lot(term lotmodel.Term, gain float64) lotmodel.Lot {
	return lotmodel.Lot{
		Symbol:         "X",
		Quantity:       decimal.NewFromInt(1),
		Price:          decimal.NewFromFloat(100),
		CostBasis:      decimal.NewFromFloat(100 - gain),
		UnrealizedGain: decimal.NewFromFloat(gain),
		Term:           term,
	}
}

func TestPartition_SplitsFourWays(t *testing.T) {
	lots := []lotmodel.Lot{
		lot(lotmodel.TermShort, 100),
		lot(lotmodel.TermShort, -100),
		lot(lotmodel.TermLong, 100),
		lot(lotmodel.TermLong, -100),
	}
	c := Partition(lots)
	assert.Len(t, c.STGain, 1)
	assert.Len(t, c.STLoss, 1)
	assert.Len(t, c.LTGain, 1)
	assert.Len(t, c.LTLoss, 1)
}

func TestContext_SizeClassBoundaries(t *testing.T) {
	small := []lotmodel.Lot{{Symbol: "A", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(1000)}}
	ctx := Context(small, lotmodel.DefaultSizeClassThresholds())
	assert.Equal(t, lotmodel.SizeSmall, ctx.SizeClass)

	large := []lotmodel.Lot{{Symbol: "A", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(2_000_000)}}
	ctx = Context(large, lotmodel.DefaultSizeClassThresholds())
	assert.Equal(t, lotmodel.SizeLarge, ctx.SizeClass)
}

func TestAdaptiveThresholds_SmallPortfolioDefaults(t *testing.T) {
	ctx := lotmodel.PortfolioContext{
		TotalValue:      decimal.NewFromInt(10_000),
		AverageLotValue: decimal.NewFromInt(1_000),
		SizeClass:       lotmodel.SizeSmall,
	}
	at := AdaptiveThresholds(ctx, 10)
	assert.True(t, at.MinTarget.Equal(decimal.NewFromInt(50)))
	assert.True(t, at.MinTradeAmount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 3, at.MaxTradesPerCategory)
}
