// Package washsale excludes loss lots that would trigger a wash sale given
// a purchase history and a configurable window.
package washsale

import (
	"fmt"
	"time"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

// ViolationType names why a lot was flagged.
type ViolationType string

const (
	ViolationFlagged         ViolationType = "flagged"
	ViolationSamePurchase    ViolationType = "same_symbol_purchase"
	ViolationHoldingProxy    ViolationType = "holding_period_proxy"
	ViolationSimilarSecurity ViolationType = "similar_security"
)

// Violation records one lot's wash-sale exposure.
type Violation struct {
	Symbol       string
	Type         ViolationType
	Similarity   int
	RiskLevel    RiskLevel
	Excluded     bool
	Detail       string
}

// Result is the outcome of filtering one portfolio.
type Result struct {
	Passed     []lotmodel.Lot
	Violations []Violation
	Warnings   []string
}

// Filter applies the wash-sale rules. Only loss lots are candidates for
// exclusion; every gain lot passes through unconditionally.
func Filter(
	lots []lotmodel.Lot,
	history []lotmodel.PurchaseRecord,
	cfg lotmodel.WashSaleConfig,
	valuationDate time.Time,
	table Table,
) Result {
	if table == nil {
		table = NewBuiltinTable()
	}

	res := Result{Passed: make([]lotmodel.Lot, 0, len(lots))}

	for _, lot := range lots {
		if !lot.IsLoss() {
			res.Passed = append(res.Passed, lot)
			continue
		}

		excluded := false
		var detail ViolationType

		if lot.WashSaleFlag {
			excluded = true
			detail = ViolationFlagged
		}

		if !excluded {
			if purchaseDate, found := samePurchaseInWindow(lot.Symbol, history, valuationDate, cfg.BeforeDays); found {
				if cfg.StrictMode {
					excluded = true
					detail = ViolationSamePurchase
				}
				res.Violations = append(res.Violations, Violation{
					Symbol: lot.Symbol, Type: ViolationSamePurchase, Excluded: cfg.StrictMode,
					Detail: fmt.Sprintf("purchase on %s within %d days of valuation", purchaseDate.Format("2006-01-02"), cfg.BeforeDays),
				})
			}
		}

		if !excluded && cfg.StrictMode && lot.HoldingPeriodDays(valuationDate) < cfg.AfterDays {
			// Legacy holding-period proxy, superseded by the purchase-history
			// check above but still consulted under strict mode.
			excluded = true
			detail = ViolationHoldingProxy
		}

		if sim, sec, ok := similarSecurityInWindow(lot.Symbol, history, valuationDate, cfg.BeforeDays, table); ok {
			risk := BucketRisk(sim)
			v := Violation{
				Symbol: lot.Symbol, Type: ViolationSimilarSecurity,
				Similarity: sim, RiskLevel: risk,
				Detail: fmt.Sprintf("similar to purchased %s (score %d)", sec, sim),
			}
			if cfg.StrictMode {
				excluded = true
				detail = ViolationSimilarSecurity
				v.Excluded = true
			} else {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: possible wash sale via similar security %s (similarity %d, risk %s)", lot.Symbol, sec, sim, risk))
			}
			res.Violations = append(res.Violations, v)
		}

		if excluded {
			res.Violations = append(res.Violations, Violation{Symbol: lot.Symbol, Type: detail, Excluded: true})
			continue
		}

		res.Passed = append(res.Passed, lot)
	}

	return res
}

func samePurchaseInWindow(symbol string, history []lotmodel.PurchaseRecord, valuationDate time.Time, beforeDays int) (time.Time, bool) {
	windowStart := valuationDate.AddDate(0, 0, -beforeDays)
	for _, p := range history {
		if p.Symbol != symbol {
			continue
		}
		if !p.Date.Before(windowStart) && !p.Date.After(valuationDate) {
			return p.Date, true
		}
	}
	return time.Time{}, false
}

func similarSecurityInWindow(symbol string, history []lotmodel.PurchaseRecord, valuationDate time.Time, beforeDays int, table Table) (int, string, bool) {
	lossProfile, ok := table.Profile(symbol)
	if !ok {
		return 0, "", false
	}
	windowStart := valuationDate.AddDate(0, 0, -beforeDays)

	best := 0
	bestSymbol := ""
	for _, p := range history {
		if p.Symbol == symbol {
			continue
		}
		if p.Date.Before(windowStart) || p.Date.After(valuationDate) {
			continue
		}
		profile, ok := table.Profile(p.Symbol)
		if !ok {
			continue
		}
		score := Score(lossProfile, profile)
		if score >= SimilarSecurityThreshold && score > best {
			best = score
			bestSymbol = p.Symbol
		}
	}
	if best == 0 {
		return 0, "", false
	}
	return best, bestSymbol, true
}
