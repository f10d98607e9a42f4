package lotmodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxConfig is the flat-rate tax model applied by the economics calculator
// and the verifier. Every rate is expected in [0,1].
type TaxConfig struct {
	ShortTermRate           decimal.Decimal
	LongTermRate            decimal.Decimal
	OrdinaryIncomeRate      decimal.Decimal
	NetInvestmentIncomeRate decimal.Decimal
	StateRate               decimal.Decimal
	Jurisdiction            string
}

// DefaultTaxConfig mirrors commonly used 2024 US federal/NIIT defaults; a
// caller is expected to override these from their own configuration.
func DefaultTaxConfig() TaxConfig {
	return TaxConfig{
		ShortTermRate:           decimal.NewFromFloat(0.37),
		LongTermRate:            decimal.NewFromFloat(0.20),
		OrdinaryIncomeRate:      decimal.NewFromFloat(0.37),
		NetInvestmentIncomeRate: decimal.NewFromFloat(0.038),
		StateRate:               decimal.Zero,
		Jurisdiction:            "US-FEDERAL",
	}
}

// WashSaleConfig controls the window and strictness of the wash-sale filter.
type WashSaleConfig struct {
	BeforeDays   int
	AfterDays    int
	TotalWindow  int
	Jurisdiction string
	StrictMode   bool
}

// DefaultWashSaleConfig is the IRS ±30 day window with strict mode on, per
// the commonly used documented default.
func DefaultWashSaleConfig() WashSaleConfig {
	return WashSaleConfig{
		BeforeDays:   30,
		AfterDays:    30,
		TotalWindow:  61,
		Jurisdiction: "US-FEDERAL",
		StrictMode:   true,
	}
}

// PurchaseRecord is one entry of the caller-supplied purchase history
// consulted by the wash-sale filter.
type PurchaseRecord struct {
	Symbol   string
	Date     time.Time
	Quantity decimal.Decimal
}
