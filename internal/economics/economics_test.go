package economics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

func TestTransactionCost_MatchesFormula(t *testing.T) {
	lot := lotmodel.Lot{Quantity: decimal.NewFromInt(100), Price: decimal.NewFromFloat(50.0)}
	fees := DefaultFeeSchedule()

	got := TransactionCost(lot, fees)
	proceeds := decimal.NewFromFloat(5000.0)
	want := fees.SECFeeRate.Mul(proceeds).Add(fees.TAFFeeRate.Mul(lot.Quantity)).Add(fees.SpreadRate.Mul(proceeds))
	assert.True(t, got.Equal(want))
}

func TestTaxImpact_GainIncludesNIIT(t *testing.T) {
	cfg := lotmodel.TaxConfig{ShortTermRate: decimal.NewFromFloat(0.35), NetInvestmentIncomeRate: decimal.NewFromFloat(0.038)}
	impact := TaxImpact(decimal.NewFromInt(1000), lotmodel.TermShort, cfg)
	assert.True(t, impact.Equal(decimal.NewFromFloat(388.0)))
}

func TestTaxImpact_LossExcludesNIIT(t *testing.T) {
	cfg := lotmodel.TaxConfig{LongTermRate: decimal.NewFromFloat(0.20), NetInvestmentIncomeRate: decimal.NewFromFloat(0.038)}
	impact := TaxImpact(decimal.NewFromInt(-1000), lotmodel.TermLong, cfg)
	assert.True(t, impact.Equal(decimal.NewFromFloat(-200.0)))
}

func TestNetBenefit_LossIsPositiveBenefit(t *testing.T) {
	nb := NetBenefit(decimal.NewFromFloat(-200.0), decimal.NewFromFloat(5.0))
	assert.True(t, nb.Equal(decimal.NewFromFloat(195.0)))
}

func TestNetBenefit_GainIsNegativeCost(t *testing.T) {
	nb := NetBenefit(decimal.NewFromFloat(350.0), decimal.NewFromFloat(5.0))
	assert.True(t, nb.Equal(decimal.NewFromFloat(-355.0)))
}
