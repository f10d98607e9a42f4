package washsale

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

var valuationDate = time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)

func lossLot(symbol string, acquired time.Time, flagged bool) lotmodel.Lot {
	return lotmodel.Lot{
		Symbol:         symbol,
		Quantity:       decimal.NewFromInt(100),
		Price:          decimal.NewFromFloat(10.0),
		CostBasis:      decimal.NewFromFloat(2000.0),
		UnrealizedGain: decimal.NewFromFloat(-1000.0),
		AcquiredDate:   acquired,
		WashSaleFlag:   flagged,
	}
}

func TestFilter_ExcludesFlaggedLossLot(t *testing.T) {
	lot := lossLot("VTIAX", valuationDate.AddDate(-2, 0, 0), true)
	cfg := lotmodel.DefaultWashSaleConfig()

	res := Filter([]lotmodel.Lot{lot}, nil, cfg, valuationDate, nil)
	assert.Empty(t, res.Passed)
}

func TestFilter_ExcludesOnRecentSamePurchase(t *testing.T) {
	lot := lossLot("VTIAX", valuationDate.AddDate(-2, 0, 0), false)
	history := []lotmodel.PurchaseRecord{
		{Symbol: "VTIAX", Date: valuationDate.AddDate(0, 0, -10), Quantity: decimal.NewFromInt(10)},
	}
	cfg := lotmodel.DefaultWashSaleConfig()

	res := Filter([]lotmodel.Lot{lot}, history, cfg, valuationDate, nil)
	assert.Empty(t, res.Passed)
}

func TestFilter_NonStrictModeKeepsLotButWarns(t *testing.T) {
	lot := lossLot("VTIAX", valuationDate.AddDate(-2, 0, 0), false)
	history := []lotmodel.PurchaseRecord{
		{Symbol: "VXUS", Date: valuationDate.AddDate(0, 0, -5), Quantity: decimal.NewFromInt(10)},
	}
	cfg := lotmodel.DefaultWashSaleConfig()
	cfg.StrictMode = false

	res := Filter([]lotmodel.Lot{lot}, history, cfg, valuationDate, nil)
	assert.Len(t, res.Passed, 1)
	assert.NotEmpty(t, res.Warnings)
}

func TestFilter_SimilarSecurityStrictModeExcludes(t *testing.T) {
	lot := lossLot("VTI", valuationDate.AddDate(-2, 0, 0), false)
	history := []lotmodel.PurchaseRecord{
		{Symbol: "ITOT", Date: valuationDate.AddDate(0, 0, -5), Quantity: decimal.NewFromInt(10)},
	}
	cfg := lotmodel.DefaultWashSaleConfig()

	res := Filter([]lotmodel.Lot{lot}, history, cfg, valuationDate, NewBuiltinTable())
	assert.Empty(t, res.Passed)
	assert.NotEmpty(t, res.Violations)
	assert.Equal(t, RiskCritical, res.Violations[0].RiskLevel)
}

func TestFilter_GainLotsAlwaysPass(t *testing.T) {
	gain := lossLot("AAPL", valuationDate.AddDate(-2, 0, 0), true)
	gain.UnrealizedGain = decimal.NewFromFloat(500.0)

	res := Filter([]lotmodel.Lot{gain}, nil, lotmodel.DefaultWashSaleConfig(), valuationDate, nil)
	assert.Len(t, res.Passed, 1)
}
