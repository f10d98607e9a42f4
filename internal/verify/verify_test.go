package verify

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

func eligibleLot(symbol string, gain float64) lotmodel.Lot {
	return lotmodel.Lot{
		Symbol:         symbol,
		Quantity:       decimal.NewFromInt(10),
		Price:          decimal.NewFromInt(100),
		UnrealizedGain: decimal.NewFromFloat(gain),
		Term:           lotmodel.TermShort,
		AcquiredDate:   time.Now().AddDate(0, -3, 0),
	}
}

func TestRun_ExcellentWhenWithinFivePercent(t *testing.T) {
	v := Run(Params{
		TargetST:   decimal.NewFromInt(1000),
		AchievedST: decimal.NewFromInt(990),
		TargetLT:   decimal.NewFromInt(1000),
		AchievedLT: decimal.NewFromInt(995),
	})
	assert.Equal(t, lotmodel.QualityExcellent, v.Quality)
}

func TestRun_SuboptimalWhenFarOff(t *testing.T) {
	v := Run(Params{
		TargetST:   decimal.NewFromInt(1000),
		AchievedST: decimal.NewFromInt(500),
		TargetLT:   decimal.NewFromInt(1000),
		AchievedLT: decimal.NewFromInt(1000),
	})
	assert.Equal(t, lotmodel.QualitySuboptimal, v.Quality)
}

func TestRun_ConfidenceReflectsAlternativeTestCount(t *testing.T) {
	eligible := []lotmodel.Lot{
		eligibleLot("A", 100), eligibleLot("B", 200), eligibleLot("C", 300),
		eligibleLot("D", 400), eligibleLot("E", 500),
	}
	v := Run(Params{
		TargetST:     decimal.NewFromInt(1000),
		AchievedST:   decimal.NewFromInt(900),
		Selection:    eligible[:2],
		Eligible:     eligible,
		AlternativeN: 5,
	})
	assert.Equal(t, 5, v.AlternativeTests)
	assert.True(t, v.Confidence.GreaterThanOrEqual(decimal.Zero))
	assert.True(t, v.Confidence.LessThanOrEqual(decimal.NewFromInt(1)))
}

func TestRun_EfficiencyIsSelectionOverEligible(t *testing.T) {
	eligible := []lotmodel.Lot{eligibleLot("A", 1), eligibleLot("B", 2), eligibleLot("C", 3), eligibleLot("D", 4)}
	v := Run(Params{
		Selection: eligible[:2],
		Eligible:  eligible,
	})
	assert.True(t, v.Efficiency.Equal(decimal.NewFromFloat(0.5)))
}

func TestRun_SameSeedIsReproducible(t *testing.T) {
	eligible := []lotmodel.Lot{
		eligibleLot("A", 100), eligibleLot("B", 200), eligibleLot("C", 300),
		eligibleLot("D", 400), eligibleLot("E", 500), eligibleLot("F", 600),
	}
	params := Params{
		TargetST:     decimal.NewFromInt(1000),
		AchievedST:   decimal.NewFromInt(900),
		Selection:    eligible[:2],
		Eligible:     eligible,
		AlternativeN: 20,
		Seed:         42,
	}

	first := Run(params)
	second := Run(params)

	assert.Equal(t, first.BetterFound, second.BetterFound)
	assert.True(t, first.Confidence.Equal(second.Confidence))
}
