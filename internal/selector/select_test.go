package selector

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harveston/harvestengine/internal/categorize"
	"github.com/harveston/harvestengine/internal/lotmodel"
)

func lossLot(symbol string, gain float64) lotmodel.Lot {
	return lotmodel.Lot{
		Symbol:         symbol,
		Quantity:       decimal.NewFromInt(10),
		Price:          decimal.NewFromInt(100),
		CostBasis:      decimal.NewFromInt(1000).Sub(decimal.NewFromFloat(gain)),
		UnrealizedGain: decimal.NewFromFloat(gain),
		Term:           lotmodel.TermShort,
		AcquiredDate:   time.Now().AddDate(0, -6, 0),
	}
}

func TestSelectTerm_SignFidelity(t *testing.T) {
	pool := []lotmodel.Lot{
		lossLot("AAA", -500),
		lossLot("BBB", -800),
		lossLot("CCC", 400), // off-direction, should be excluded for a negative need
	}
	res := SelectTerm(pool, decimal.NewFromInt(-1000), 10, DefaultConfig())
	require.False(t, res.Unreachable)
	assert.True(t, res.Accumulated.IsNegative())
	for _, lot := range res.Lots {
		assert.True(t, lot.UnrealizedGain.IsNegative())
	}
}

func TestSelectTerm_RespectsOvershootCap(t *testing.T) {
	pool := []lotmodel.Lot{
		lossLot("AAA", -100),
		lossLot("BBB", -100),
		lossLot("CCC", -100),
		lossLot("DDD", -5000),
	}
	needed := decimal.NewFromInt(-300)
	cfg := DefaultConfig()
	res := SelectTerm(pool, needed, 10, cfg)
	if !res.Unreachable {
		overshoot := cfg.overshootFor(needed.Abs())
		capLimit := needed.Abs().Mul(decimal.NewFromInt(1).Add(overshoot))
		assert.True(t, res.Accumulated.Abs().LessThanOrEqual(capLimit))
	}
}

func TestSelectTerm_EmptyPoolIsUnreachable(t *testing.T) {
	res := SelectTerm(nil, decimal.NewFromInt(-500), 10, DefaultConfig())
	assert.True(t, res.Unreachable)
}

func TestSelectTerm_ZeroNeededReturnsEmptySelection(t *testing.T) {
	pool := []lotmodel.Lot{lossLot("AAA", -500)}
	res := SelectTerm(pool, decimal.Zero, 10, DefaultConfig())
	assert.False(t, res.Unreachable)
	assert.Empty(t, res.Lots)
}

func TestSelect_IndependentShortAndLongTermSelections(t *testing.T) {
	cats := categorize.Categories{
		STLoss: []lotmodel.Lot{lossLot("AAA", -500), lossLot("BBB", -600)},
		LTLoss: []lotmodel.Lot{lossLot("CCC", -700), lossLot("DDD", -800)},
	}
	sel := Select(cats, decimal.NewFromInt(-500), decimal.NewFromInt(-700), 10, DefaultConfig())

	for _, lot := range sel.ShortTerm.Lots {
		assert.Contains(t, []string{"AAA", "BBB"}, lot.Symbol)
	}
	for _, lot := range sel.LongTerm.Lots {
		assert.Contains(t, []string{"CCC", "DDD"}, lot.Symbol)
	}
}

func TestSelect_NoDoubleCountingAcrossTerms(t *testing.T) {
	cats := categorize.Categories{
		STLoss: []lotmodel.Lot{lossLot("AAA", -500)},
		LTLoss: []lotmodel.Lot{lossLot("BBB", -500)},
	}
	sel := Select(cats, decimal.NewFromInt(-500), decimal.NewFromInt(-500), 10, DefaultConfig())

	seen := map[string]int{}
	for _, lot := range sel.ShortTerm.Lots {
		seen[lot.Symbol]++
	}
	for _, lot := range sel.LongTerm.Lots {
		seen[lot.Symbol]++
	}
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
}

// TestSelectTerm_BacksOffToInCapSubsetInsteadOfRejectingWholeCandidate covers
// pool {300,300,551} against needed=500 (cap=525 at the default 5%
// overshoot): every greedy strategy's first pick is the 551 lot, since it
// reduces |remaining| the most, but 551 exceeds the cap. The fix must skip
// that lot in favor of a 300 lot (diff=200, well within cap) rather than
// discarding the whole candidate and returning Unreachable.
func TestSelectTerm_BacksOffToInCapSubsetInsteadOfRejectingWholeCandidate(t *testing.T) {
	pool := []lotmodel.Lot{
		lossLot("A", 300),
		lossLot("B", 300),
		lossLot("C", 551),
	}
	needed := decimal.NewFromInt(500)
	cfg := DefaultConfig()

	res := SelectTerm(pool, needed, 10, cfg)

	require.False(t, res.Unreachable, "an in-cap subset exists and must be found")
	capLimit := needed.Abs().Mul(decimal.NewFromInt(1).Add(cfg.overshootFor(needed.Abs())))
	assert.True(t, res.Accumulated.Abs().LessThanOrEqual(capLimit))
	assert.False(t, res.Accumulated.Equal(decimal.NewFromInt(551)), "551 alone overshoots the cap and must not be selected")
}

func TestSelect_CapsTradeCountPerCategory(t *testing.T) {
	var lots []lotmodel.Lot
	for i := 0; i < 20; i++ {
		lots = append(lots, lossLot("SYM", -float64(10+i)))
	}
	cats := categorize.Categories{STLoss: lots}
	sel := Select(cats, decimal.NewFromInt(-150), decimal.Zero, 3, DefaultConfig())
	assert.LessOrEqual(t, len(sel.ShortTerm.Lots), 3)
}
