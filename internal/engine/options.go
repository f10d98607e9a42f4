// Package engine implements the orchestrator: it drives the full pipeline
// from validation through selection and assembles the single ResultRecord every
// call returns.
package engine

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/rs/zerolog"

	"github.com/harveston/harvestengine/internal/lotmodel"
	"github.com/harveston/harvestengine/internal/selector"
	"github.com/harveston/harvestengine/internal/washsale"
)

// Targets bundles the two signed year-end gain targets.
type Targets struct {
	ShortTerm decimal.Decimal
	LongTerm  decimal.Decimal
}

// Realized bundles year-to-date realized gains, used to compute the
// remaining need per term.
type Realized struct {
	ShortTerm decimal.Decimal
	LongTerm  decimal.Decimal
}

// Options bundles every tunable the orchestrator accepts.
type Options struct {
	ValuationDate time.Time

	TaxConfig      lotmodel.TaxConfig
	WashSaleConfig lotmodel.WashSaleConfig

	// AccountTypes is the set of account kinds eligible for harvesting;
	// defaults to {taxable} when empty.
	AccountTypes []lotmodel.AccountType

	UseCashRaising bool
	CashNeeded     decimal.Decimal
	CurrentCash    decimal.Decimal
	MaxAllowableST decimal.Decimal
	MaxAllowableLT decimal.Decimal

	MaxLots int // overall cap applied after term selection, default 50

	OptimizationLevel selector.OptimizationLevel

	EnableCorporateActions bool
	PurchaseHistory        []lotmodel.PurchaseRecord

	// PerformanceMode forces the greedy-only path; auto-true when the
	// eligible pool exceeds 1,000 lots.
	PerformanceMode bool

	MaxOvershootPercent decimal.Decimal // default 5 (percent, not fraction)

	MinTradeAmount    decimal.Decimal
	MinTargetThreshold decimal.Decimal

	RandomSeed *uint64

	WashSaleTable washsale.Table

	MaxPortfolioSize int // default 10,000

	Logger *zerolog.Logger

	// Cancel, when non-nil, is polled between pipeline stages; a closed
	// channel (or one with a value ready to receive) aborts the call
	// cooperatively.
	Cancel <-chan struct{}
}

// DefaultOptions returns reasonable defaults for a call at valuationDate.
func DefaultOptions(valuationDate time.Time) Options {
	return Options{
		ValuationDate:       valuationDate,
		TaxConfig:           lotmodel.DefaultTaxConfig(),
		WashSaleConfig:      lotmodel.DefaultWashSaleConfig(),
		AccountTypes:        []lotmodel.AccountType{lotmodel.AccountTaxable},
		MaxLots:             50,
		OptimizationLevel:   selector.OptimizationBalanced,
		MaxOvershootPercent: decimal.NewFromInt(5),
		MaxPortfolioSize:    10_000,
	}
}

func (o Options) cancelled() bool {
	if o.Cancel == nil {
		return false
	}
	select {
	case <-o.Cancel:
		return true
	default:
		return false
	}
}

func (o Options) accountTypeSet() map[lotmodel.AccountType]bool {
	types := o.AccountTypes
	if len(types) == 0 {
		types = []lotmodel.AccountType{lotmodel.AccountTaxable}
	}
	set := make(map[lotmodel.AccountType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}
