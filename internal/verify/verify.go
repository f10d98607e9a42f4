// Package verify implements the verification pass: precision and
// quality reporting, plus a randomized search for a better-scoring
// alternative selection with one more lot than the chosen selection.
package verify

import (
	"math/rand"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

// DefaultAlternativeTests is N in the randomized alternative search.
const DefaultAlternativeTests = 5

// Params bundles the verification inputs.
type Params struct {
	TargetST       decimal.Decimal
	TargetLT       decimal.Decimal
	AchievedST     decimal.Decimal
	AchievedLT     decimal.Decimal
	Selection      []lotmodel.Lot
	Eligible       []lotmodel.Lot
	AlternativeN   int
	Seed           uint64
}

// Run computes the precision report, quality rating, and randomized
// better-alternative count.
func Run(p Params) lotmodel.Verification {
	if p.AlternativeN <= 0 {
		p.AlternativeN = DefaultAlternativeTests
	}

	precision := precisionOf(p.TargetST, p.TargetLT, p.AchievedST, p.AchievedLT)
	quality := rate(precision)

	betterFound := 0
	if len(p.Eligible) > 0 {
		betterFound = countBetterAlternatives(p)
	}

	confidence := decimal.NewFromInt(int64(p.AlternativeN - betterFound)).Div(decimal.NewFromInt(int64(p.AlternativeN)))

	efficiency := decimal.Zero
	if len(p.Eligible) > 0 {
		efficiency = decimal.NewFromInt(int64(len(p.Selection))).Div(decimal.NewFromInt(int64(len(p.Eligible))))
	}

	return lotmodel.Verification{
		Precision:        precision,
		Quality:          quality,
		AlternativeTests: p.AlternativeN,
		BetterFound:      betterFound,
		Confidence:       confidence,
		IsLikelyOptimal:  betterFound == 0,
		Efficiency:       efficiency,
	}
}

func precisionOf(targetST, targetLT, achievedST, achievedLT decimal.Decimal) lotmodel.PrecisionReport {
	stDiff := targetST.Sub(achievedST).Abs()
	ltDiff := targetLT.Sub(achievedLT).Abs()
	return lotmodel.PrecisionReport{
		STDiff: stDiff,
		LTDiff: ltDiff,
		STPct:  pctOf(stDiff, targetST),
		LTPct:  pctOf(ltDiff, targetLT),
	}
}

func pctOf(diff, target decimal.Decimal) decimal.Decimal {
	if target.IsZero() {
		if diff.IsZero() {
			return decimal.Zero
		}
		return decimal.NewFromInt(100)
	}
	return diff.Div(target.Abs()).Mul(decimal.NewFromInt(100))
}

func rate(p lotmodel.PrecisionReport) lotmodel.QualityRating {
	worst := p.STPct
	if p.LTPct.GreaterThan(worst) {
		worst = p.LTPct
	}
	switch {
	case worst.LessThanOrEqual(decimal.NewFromInt(5)):
		return lotmodel.QualityExcellent
	case worst.LessThanOrEqual(decimal.NewFromInt(15)):
		return lotmodel.QualityGood
	case worst.LessThanOrEqual(decimal.NewFromInt(25)):
		return lotmodel.QualityAcceptable
	default:
		return lotmodel.QualitySuboptimal
	}
}

// countBetterAlternatives draws AlternativeN random subsets of size
// |selection|+1 from the eligible pool (uniform sampling via
// gonum's distuv.Uniform over the index space) and counts how many reduce
// |ST_diff|+|LT_diff| relative to the chosen selection.
func countBetterAlternatives(p Params) int {
	size := len(p.Selection) + 1
	if size > len(p.Eligible) {
		return 0
	}

	uniform := distuv.Uniform{Min: 0, Max: float64(len(p.Eligible))}
	if p.Seed != 0 {
		uniform.Src = rand.NewSource(int64(p.Seed))
	}

	baselineDiff := p.TargetST.Sub(p.AchievedST).Abs().Add(p.TargetLT.Sub(p.AchievedLT).Abs())

	better := 0
	for i := 0; i < p.AlternativeN; i++ {
		subset := sampleDistinct(uniform, len(p.Eligible), size)
		st, lt := decimal.Zero, decimal.Zero
		for _, idx := range subset {
			lot := p.Eligible[idx]
			if lot.Term == lotmodel.TermShort {
				st = st.Add(lot.UnrealizedGain)
			} else {
				lt = lt.Add(lot.UnrealizedGain)
			}
		}
		diff := p.TargetST.Sub(st).Abs().Add(p.TargetLT.Sub(lt).Abs())
		if diff.LessThan(baselineDiff) {
			better++
		}
	}
	return better
}

// sampleDistinct draws count distinct indices in [0,n) using repeated
// uniform draws with rejection, small enough scale to be cheap in practice.
func sampleDistinct(uniform distuv.Uniform, n, count int) []int {
	seen := map[int]bool{}
	var out []int
	attempts := 0
	maxAttempts := count * 50
	for len(out) < count && attempts < maxAttempts {
		attempts++
		idx := int(uniform.Rand())
		if idx < 0 || idx >= n || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	return out
}
