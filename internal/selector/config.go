// Package selector implements the target-mode selector: independent
// short-term and long-term selections that approach a signed remaining
// need under an overshoot ceiling and a trade-count cap.
package selector

import "github.com/shopspring/decimal"

// OptimizationLevel steers which strategy family is preferred.
type OptimizationLevel string

const (
	OptimizationFast      OptimizationLevel = "fast"
	OptimizationBalanced  OptimizationLevel = "balanced"
	OptimizationThorough  OptimizationLevel = "thorough"
)

// Config bundles the tunable bounds the selector requires to be explicit
// configuration rather than inlined magic constants.
type Config struct {
	MaxOvershoot decimal.Decimal // default 0.05

	// Progressive tighter overshoot caps for large targets.
	LargeTargetThreshold      decimal.Decimal // 50_000
	LargeTargetOvershoot      decimal.Decimal // 0.01
	VeryLargeTargetThreshold  decimal.Decimal // 100_000
	VeryLargeTargetOvershoot  decimal.Decimal // 0.005

	EarlyTerminationFraction decimal.Decimal // 0.90 of |needed|

	DPPoolSizeLimit  int             // 50
	DPNeededFloor    decimal.Decimal // 10_000
	DPMemoCap        int             // 50_000

	PositionAwarePoolFloor   int             // 5
	PositionAwareNeededFloor decimal.Decimal // 1_000
	AlternativesEnumCap      int             // 12
	TripleImprovementFrac    decimal.Decimal // 0.25

	DirectionalOffDirectionFraction decimal.Decimal // 0.5; not read: directionalEfficiency uses a fixed max_trades/2
}

func DefaultConfig() Config {
	return Config{
		MaxOvershoot:                     decimal.NewFromFloat(0.05),
		LargeTargetThreshold:             decimal.NewFromInt(50_000),
		LargeTargetOvershoot:             decimal.NewFromFloat(0.01),
		VeryLargeTargetThreshold:         decimal.NewFromInt(100_000),
		VeryLargeTargetOvershoot:         decimal.NewFromFloat(0.005),
		EarlyTerminationFraction:         decimal.NewFromFloat(0.90),
		DPPoolSizeLimit:                  50,
		DPNeededFloor:                    decimal.NewFromInt(10_000),
		DPMemoCap:                        50_000,
		PositionAwarePoolFloor:           5,
		PositionAwareNeededFloor:         decimal.NewFromInt(1_000),
		AlternativesEnumCap:              12,
		TripleImprovementFrac:            decimal.NewFromFloat(0.25),
		DirectionalOffDirectionFraction:  decimal.NewFromFloat(0.5),
	}
}

// overshootFor returns the applicable overshoot fraction for |needed|,
// tightening progressively for large targets.
func (c Config) overshootFor(absNeeded decimal.Decimal) decimal.Decimal {
	if absNeeded.GreaterThanOrEqual(c.VeryLargeTargetThreshold) {
		return c.VeryLargeTargetOvershoot
	}
	if absNeeded.GreaterThanOrEqual(c.LargeTargetThreshold) {
		return c.LargeTargetOvershoot
	}
	return c.MaxOvershoot
}
