package grouping

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

func mkLot(symbol string, gain float64) lotmodel.Lot {
	return lotmodel.Lot{Symbol: symbol, UnrealizedGain: decimal.NewFromFloat(gain)}
}

func TestByPosition_GroupsBySymbol(t *testing.T) {
	lots := []lotmodel.Lot{mkLot("AAPL", 1), mkLot("MSFT", 2), mkLot("AAPL", 3)}
	groups := ByPosition(lots)
	assert.Len(t, groups["AAPL"], 2)
	assert.Len(t, groups["MSFT"], 1)
}

func TestAlternatives_SingleAndFullPosition(t *testing.T) {
	group := []lotmodel.Lot{mkLot("AAPL", 100), mkLot("AAPL", 400), mkLot("AAPL", 900)}
	target := decimal.NewFromInt(500)

	alts := Alternatives(group, target)
	require.NotEmpty(t, alts)

	var sawSingle, sawFull bool
	for _, a := range alts {
		switch a.Strategy {
		case StrategySingleLot:
			sawSingle = true
			assert.True(t, a.TotalGain.Equal(decimal.NewFromInt(400)))
		case StrategyFull:
			sawFull = true
			assert.True(t, a.TotalGain.Equal(decimal.NewFromInt(1400)))
		}
	}
	assert.True(t, sawSingle)
	assert.True(t, sawFull)
}

func TestAlternatives_SingleEmptyGroupReturnsNil(t *testing.T) {
	assert.Nil(t, Alternatives(nil, decimal.NewFromInt(100)))
}
