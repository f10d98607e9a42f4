package lotmodel

import "github.com/shopspring/decimal"

// SizeClass buckets a portfolio by total value for AdaptiveThresholds.
type SizeClass string

const (
	SizeSmall  SizeClass = "small"
	SizeMedium SizeClass = "medium"
	SizeLarge  SizeClass = "large"
)

// SizeClassThresholds are the total-value breakpoints between size classes.
type SizeClassThresholds struct {
	SmallMax  decimal.Decimal // portfolios below this are "small"
	MediumMax decimal.Decimal // portfolios below this (and >= SmallMax) are "medium"
}

func DefaultSizeClassThresholds() SizeClassThresholds {
	return SizeClassThresholds{
		SmallMax:  decimal.NewFromInt(100_000),
		MediumMax: decimal.NewFromInt(1_000_000),
	}
}

// PortfolioContext is the call-scoped aggregate computed during categorization.
type PortfolioContext struct {
	TotalValue        decimal.Decimal
	SizeClass         SizeClass
	PositionCount     int
	AverageLotValue   decimal.Decimal
	HasLargeLots      bool
	HasSmallLots      bool
}

// AdaptiveThresholds are the per-call thresholds derived from
// PortfolioContext.
type AdaptiveThresholds struct {
	MinTarget             decimal.Decimal
	MinTradeAmount        decimal.Decimal
	MaxTradesPerCategory  int
}
