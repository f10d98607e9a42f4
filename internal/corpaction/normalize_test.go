package corpaction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

func TestNormalize_SplitAdjustsQuantityAndPrice(t *testing.T) {
	ratio := decimal.NewFromInt(2)
	lot := lotmodel.Lot{
		Symbol:    "AAPL",
		Quantity:  decimal.NewFromInt(100),
		Price:     decimal.NewFromFloat(200.0),
		CostBasis: decimal.NewFromFloat(10000.0),
		CorporateActions: []lotmodel.CorporateAction{
			{Kind: lotmodel.ActionSplit, EffectiveDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Ratio: &ratio},
		},
	}

	out := Normalize([]lotmodel.Lot{lot}, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, out, 1)

	assert.True(t, out[0].Quantity.Equal(decimal.NewFromInt(200)))
	assert.True(t, out[0].Price.Equal(decimal.NewFromFloat(100.0)))
	assert.True(t, out[0].CostBasis.Equal(decimal.NewFromFloat(10000.0)))

	wantGain := out[0].Quantity.Mul(out[0].Price).Sub(out[0].CostBasis)
	assert.True(t, out[0].UnrealizedGain.Equal(wantGain))
}

func TestNormalize_SplitReproducesSameGainAcrossReruns(t *testing.T) {
	// Testable property #11: applying a 2:1 split and re-running normalize
	// on the already-split lot (no further pending actions) leaves the
	// gain unchanged to 0.01.
	ratio := decimal.NewFromInt(2)
	lot := lotmodel.Lot{
		Quantity:  decimal.NewFromInt(100),
		Price:     decimal.NewFromFloat(50.0),
		CostBasis: decimal.NewFromFloat(4000.0),
		CorporateActions: []lotmodel.CorporateAction{
			{Kind: lotmodel.ActionSplit, EffectiveDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Ratio: &ratio},
		},
	}
	valuation := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	first := Normalize([]lotmodel.Lot{lot}, valuation)
	again := Normalize(first, valuation) // no unapplied actions remain

	assert.True(t, first[0].UnrealizedGain.Sub(again[0].UnrealizedGain).Abs().LessThanOrEqual(decimal.NewFromFloat(0.01)))
}

func TestNormalize_MergerReplacesSymbolAndAppliesExchangeRatio(t *testing.T) {
	newSymbol := "NEWCO"
	exchangeRatio := decimal.NewFromFloat(0.5)
	lot := lotmodel.Lot{
		Symbol:    "OLDCO",
		Quantity:  decimal.NewFromInt(100),
		Price:     decimal.NewFromFloat(10.0),
		CostBasis: decimal.NewFromFloat(1000.0),
		CorporateActions: []lotmodel.CorporateAction{
			{Kind: lotmodel.ActionMerger, EffectiveDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), NewSymbol: &newSymbol, ExchangeRatio: &exchangeRatio},
		},
	}

	out := Normalize([]lotmodel.Lot{lot}, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "NEWCO", out[0].Symbol)
	assert.True(t, out[0].Quantity.Equal(decimal.NewFromInt(50)))
}

func TestNormalize_SpinoffFlagsLotAndAllocatesBasis(t *testing.T) {
	newSymbol := "SPINCO"
	allocation := decimal.NewFromFloat(0.2)
	lot := lotmodel.Lot{
		Quantity:  decimal.NewFromInt(10),
		Price:     decimal.NewFromFloat(100.0),
		CostBasis: decimal.NewFromFloat(500.0),
		CorporateActions: []lotmodel.CorporateAction{
			{Kind: lotmodel.ActionSpinoff, EffectiveDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), NewSymbol: &newSymbol, NewEntityBasisAllocation: &allocation},
		},
	}

	out := Normalize([]lotmodel.Lot{lot}, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, out[0].CorporateActionFlag)
	assert.True(t, out[0].CostBasis.Equal(decimal.NewFromFloat(400.0)))
}

func TestNormalize_IgnoresActionsAfterValuationDate(t *testing.T) {
	ratio := decimal.NewFromInt(3)
	lot := lotmodel.Lot{
		Quantity:  decimal.NewFromInt(10),
		Price:     decimal.NewFromFloat(100.0),
		CostBasis: decimal.NewFromFloat(500.0),
		CorporateActions: []lotmodel.CorporateAction{
			{Kind: lotmodel.ActionSplit, EffectiveDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Ratio: &ratio},
		},
	}

	out := Normalize([]lotmodel.Lot{lot}, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, out[0].Quantity.Equal(decimal.NewFromInt(10)))
}
