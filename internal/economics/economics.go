// Package economics computes per-lot transaction cost, tax impact, and net
// benefit.
package economics

import (
	"github.com/shopspring/decimal"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

// FeeSchedule is the transaction-cost model.
type FeeSchedule struct {
	BaseFee    decimal.Decimal
	SECFeeRate decimal.Decimal
	TAFFeeRate decimal.Decimal
	SpreadRate decimal.Decimal
}

func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		BaseFee:    decimal.Zero,
		SECFeeRate: decimal.NewFromFloat(2.21e-5),
		TAFFeeRate: decimal.NewFromFloat(1.66e-5),
		SpreadRate: decimal.NewFromFloat(1.0e-3),
	}
}

// TransactionCost computes base_fee + sec_fee_rate*proceeds +
// taf_fee_rate*quantity + spread_rate*proceeds.
func TransactionCost(lot lotmodel.Lot, fees FeeSchedule) decimal.Decimal {
	proceeds := lot.Proceeds()
	cost := fees.BaseFee
	cost = cost.Add(fees.SECFeeRate.Mul(proceeds))
	cost = cost.Add(fees.TAFFeeRate.Mul(lot.Quantity))
	cost = cost.Add(fees.SpreadRate.Mul(proceeds))
	return cost
}

// TaxImpact computes gain*(applicable_rate+state_rate+(gain>0 ? niit : 0)).
func TaxImpact(gain decimal.Decimal, term lotmodel.Term, cfg lotmodel.TaxConfig) decimal.Decimal {
	rate := cfg.ShortTermRate
	if term == lotmodel.TermLong {
		rate = cfg.LongTermRate
	}
	rate = rate.Add(cfg.StateRate)
	if gain.IsPositive() {
		rate = rate.Add(cfg.NetInvestmentIncomeRate)
	}
	return gain.Mul(rate)
}

// NetBenefit is the per-lot economic benefit of selling: the tax impact
// treated as a saving when negative (loss) and a cost when positive (gain),
// net of transaction cost.
func NetBenefit(taxImpact, transactionCost decimal.Decimal) decimal.Decimal {
	return taxImpact.Neg().Sub(transactionCost)
}

// TotalNetBenefit sums per-lot net benefits for a selection.
func TotalNetBenefit(taxImpacts, transactionCosts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for i := range taxImpacts {
		total = total.Add(NetBenefit(taxImpacts[i], transactionCosts[i]))
	}
	return total
}
