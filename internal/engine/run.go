package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harveston/harvestengine/internal/cashmode"
	"github.com/harveston/harvestengine/internal/categorize"
	"github.com/harveston/harvestengine/internal/corpaction"
	"github.com/harveston/harvestengine/internal/economics"
	"github.com/harveston/harvestengine/internal/lotmodel"
	"github.com/harveston/harvestengine/internal/selector"
	"github.com/harveston/harvestengine/internal/verify"
	"github.com/harveston/harvestengine/internal/washsale"
)

const engineVersion = "1.0.0"

// Run drives the full pipeline over one portfolio and returns the single
// ResultRecord the call produces. It never panics on expected failure
// modes; every EngineError is returned inside the record, not as a Go
// error, so callers have one shape to branch on.
func Run(lots []lotmodel.Lot, targets Targets, realized Realized, opts Options) lotmodel.ResultRecord {
	start := time.Now()
	calcID := uuid.New()

	fail := func(err *lotmodel.EngineError, stage string) lotmodel.ResultRecord {
		return lotmodel.ResultRecord{
			Success: false,
			Error:   err,
			Calculation: lotmodel.Calculation{
				ID:        calcID,
				Timestamp: start,
				Version:   engineVersion,
			},
			Metadata: lotmodel.Metadata{
				Version:          engineVersion,
				ProcessingTimeMS: time.Since(start).Milliseconds(),
				AlgorithmUsed:    stage,
				TaxConfig:        opts.TaxConfig,
				WashSaleConfig:   opts.WashSaleConfig,
			},
		}
	}

	if opts.cancelled() {
		return fail(lotmodel.NewCancelled("pre-validation"), "cancelled")
	}

	maxPortfolioSize := opts.MaxPortfolioSize
	if maxPortfolioSize == 0 {
		maxPortfolioSize = 10_000
	}
	validated, validationWarnings, err := lotmodel.Validate(lots, lotmodel.ValidationOptions{
		ValuationDate:    opts.ValuationDate,
		MaxPortfolioSize: maxPortfolioSize,
	})
	if err != nil {
		if ee, ok := err.(*lotmodel.EngineError); ok {
			return fail(ee, "validate")
		}
		return fail(lotmodel.NewUnexpected("validate", err), "validate")
	}

	if opts.cancelled() {
		return fail(lotmodel.NewCancelled("account_filter"), "cancelled")
	}

	accountTypes := opts.accountTypeSet()
	filteredCounts := map[string]int{"account_type": 0}
	eligible := make([]lotmodel.Lot, 0, len(validated))
	for _, lot := range validated {
		accountType := lot.AccountType
		if accountType == "" {
			accountType = lotmodel.AccountTaxable
		}
		if !accountTypes[accountType] {
			filteredCounts["account_type"]++
			continue
		}
		eligible = append(eligible, lot)
	}

	if opts.EnableCorporateActions {
		eligible = corpaction.Normalize(eligible, opts.ValuationDate)
	}

	if opts.cancelled() {
		return fail(lotmodel.NewCancelled("wash_sale_filter"), "cancelled")
	}

	washResult := washsale.Filter(eligible, opts.PurchaseHistory, opts.WashSaleConfig, opts.ValuationDate, opts.WashSaleTable)
	warnings := append([]string{}, validationWarnings...)
	warnings = append(warnings, washResult.Warnings...)

	if len(washResult.Passed) == 0 {
		accountNames := make([]string, 0, len(accountTypes))
		for t := range accountTypes {
			accountNames = append(accountNames, string(t))
		}
		return fail(lotmodel.NewNoLotsFound(lotmodel.NoLotsDetails{
			OriginalSize:   len(lots),
			AccountTypes:   accountNames,
			FilteredCounts: filteredCounts,
			Cause:          "no lots remain after account-type and wash-sale filtering",
		}), "categorize")
	}

	if opts.cancelled() {
		return fail(lotmodel.NewCancelled("categorize"), "cancelled")
	}

	cats := categorize.Partition(washResult.Passed)
	thresholds := categorize.Context(washResult.Passed, lotmodel.DefaultSizeClassThresholds())
	adaptive := categorize.AdaptiveThresholds(thresholds, len(washResult.Passed))

	maxTradesPerCategory := adaptive.MaxTradesPerCategory
	if maxTradesPerCategory <= 0 {
		maxTradesPerCategory = 1
	}

	opts.PerformanceMode = effectivePerformanceMode(opts.PerformanceMode, len(washResult.Passed))
	selCfg := selectorConfigFrom(opts)

	if opts.UseCashRaising {
		return runCashMode(calcID, start, washResult.Passed, opts, warnings)
	}

	return runTargetMode(calcID, start, cats, washResult.Passed, targets, realized, selCfg, maxTradesPerCategory, opts, warnings)
}

// effectivePerformanceMode forces the greedy-only path once the eligible
// pool exceeds 1,000 lots, regardless of the caller-supplied flag.
func effectivePerformanceMode(requested bool, eligibleCount int) bool {
	return requested || eligibleCount > 1000
}

func selectorConfigFrom(opts Options) selector.Config {
	cfg := selector.DefaultConfig()
	if opts.MaxOvershootPercent.IsPositive() {
		cfg.MaxOvershoot = opts.MaxOvershootPercent.Div(decimal.NewFromInt(100))
	}
	if opts.OptimizationLevel == selector.OptimizationThorough {
		cfg.DPPoolSizeLimit = cfg.DPPoolSizeLimit * 2
		cfg.DPNeededFloor = decimal.Zero
	}
	if opts.OptimizationLevel == selector.OptimizationFast || opts.PerformanceMode {
		cfg.DPPoolSizeLimit = 0
	}
	return cfg
}

func runTargetMode(
	calcID uuid.UUID,
	start time.Time,
	cats categorize.Categories,
	eligible []lotmodel.Lot,
	targets Targets,
	realized Realized,
	cfg selector.Config,
	maxTradesPerCategory int,
	opts Options,
	warnings []string,
) lotmodel.ResultRecord {
	neededST := targets.ShortTerm.Sub(realized.ShortTerm)
	neededLT := targets.LongTerm.Sub(realized.LongTerm)

	minTarget := opts.MinTargetThreshold
	if minTarget.IsZero() {
		minTarget = decimal.NewFromInt(1)
	}
	if neededST.Abs().LessThan(minTarget) {
		neededST = decimal.Zero
	}
	if neededLT.Abs().LessThan(minTarget) {
		neededLT = decimal.Zero
	}

	sel := selector.Select(cats, neededST, neededLT, maxTradesPerCategory, cfg)
	warnings = append(warnings, sel.Warnings...)

	maxLots := opts.MaxLots
	if maxLots <= 0 {
		maxLots = 50
	}

	allLots := append(append([]lotmodel.Lot{}, sel.ShortTerm.Lots...), sel.LongTerm.Lots...)
	if len(allLots) > maxLots {
		allLots = allLots[:maxLots]
	}

	fees := economics.DefaultFeeSchedule()
	recommendations := make([]lotmodel.Recommendation, 0, len(allLots))
	totalProceeds := decimal.Zero
	totalTaxImpact := decimal.Zero
	totalTransactionCost := decimal.Zero
	actualST := decimal.Zero
	actualLT := decimal.Zero

	for _, lot := range allLots {
		taxImpact := economics.TaxImpact(lot.UnrealizedGain, lot.Term, opts.TaxConfig)
		transactionCost := economics.TransactionCost(lot, fees)
		netBenefit := economics.NetBenefit(taxImpact, transactionCost)
		proceeds := lot.Proceeds()

		recommendations = append(recommendations, lotmodel.Recommendation{
			Symbol:          lot.Symbol,
			QuantityToSell:  lot.Quantity,
			ActualGain:      lot.UnrealizedGain,
			Proceeds:        proceeds,
			Term:            lot.Term,
			Reason:          "tax_loss_harvest_target",
			TaxImpact:       taxImpact,
			TransactionCost: transactionCost,
			NetBenefit:      netBenefit,
			AccountType:     lot.AccountType,
		})

		totalProceeds = totalProceeds.Add(proceeds)
		totalTaxImpact = totalTaxImpact.Add(taxImpact)
		totalTransactionCost = totalTransactionCost.Add(transactionCost)
		if lot.Term == lotmodel.TermShort {
			actualST = actualST.Add(lot.UnrealizedGain)
		} else {
			actualLT = actualLT.Add(lot.UnrealizedGain)
		}
	}

	summary := &lotmodel.TargetSummary{
		TargetST:              targets.ShortTerm,
		TargetLT:              targets.LongTerm,
		ActualST:              actualST,
		ActualLT:              actualLT,
		TotalRecommendations:  len(recommendations),
		TotalProceeds:         totalProceeds,
		TotalTaxImpact:        totalTaxImpact,
		TotalTransactionCosts: totalTransactionCost,
		NetBenefit:            economics.TotalNetBenefit(taxImpactsOf(recommendations), transactionCostsOf(recommendations)),
		YTDRealizedST:         realized.ShortTerm,
		YTDRealizedLT:         realized.LongTerm,
		TotalAnnualST:         realized.ShortTerm.Add(actualST),
		TotalAnnualLT:         realized.LongTerm.Add(actualLT),
		CashMaximizationMode:  false,
	}

	var seed uint64
	if opts.RandomSeed != nil {
		seed = *opts.RandomSeed
	}
	verification := verify.Run(verify.Params{
		TargetST:     neededST,
		TargetLT:     neededLT,
		AchievedST:   actualST,
		AchievedLT:   actualLT,
		Selection:    allLots,
		Eligible:     eligible,
		AlternativeN: verify.DefaultAlternativeTests,
		Seed:         seed,
	})

	return lotmodel.ResultRecord{
		Recommendations: recommendations,
		TargetSummary:   summary,
		Warnings:        warnings,
		Verification:    &verification,
		Success:         true,
		Metadata: lotmodel.Metadata{
			Version:          engineVersion,
			ProcessingTimeMS: time.Since(start).Milliseconds(),
			AlgorithmUsed:    "target_mode",
			TaxConfig:        opts.TaxConfig,
			WashSaleConfig:   opts.WashSaleConfig,
			PortfolioContext: categorize.Context(eligible, lotmodel.DefaultSizeClassThresholds()),
		},
		Calculation: lotmodel.Calculation{
			ID: calcID,
			Inputs: lotmodel.CalculationInputs{
				TargetST:      targets.ShortTerm,
				TargetLT:      targets.LongTerm,
				RealizedST:    realized.ShortTerm,
				RealizedLT:    realized.LongTerm,
				PortfolioSize: len(eligible),
			},
			Needed:    lotmodel.NeededAmounts{NeededST: neededST, NeededLT: neededLT},
			Timestamp: start,
			Version:   engineVersion,
		},
	}
}

func runCashMode(calcID uuid.UUID, start time.Time, eligible []lotmodel.Lot, opts Options, warnings []string) lotmodel.ResultRecord {
	result := cashmode.Select(eligible, cashmode.Params{
		CashNeeded:     opts.CashNeeded,
		CurrentCash:    opts.CurrentCash,
		MaxAllowableST: opts.MaxAllowableST,
		MaxAllowableLT: opts.MaxAllowableLT,
	})

	fees := economics.DefaultFeeSchedule()
	recommendations := make([]lotmodel.Recommendation, 0, len(result.Lots))
	for _, lot := range result.Lots {
		taxImpact := economics.TaxImpact(lot.UnrealizedGain, lot.Term, opts.TaxConfig)
		transactionCost := economics.TransactionCost(lot, fees)
		recommendations = append(recommendations, lotmodel.Recommendation{
			Symbol:          lot.Symbol,
			QuantityToSell:  lot.Quantity,
			ActualGain:      lot.UnrealizedGain,
			Proceeds:        lot.Proceeds(),
			Term:            lot.Term,
			Reason:          "cash_raising",
			TaxImpact:       taxImpact,
			TransactionCost: transactionCost,
			NetBenefit:      economics.NetBenefit(taxImpact, transactionCost),
			AccountType:     lot.AccountType,
		})
	}

	additionalNeeded := opts.CashNeeded.Sub(opts.CurrentCash)
	if result.ActualRaised.LessThan(additionalNeeded) {
		warnings = append(warnings, "requested cash could not be fully raised within the configured gain caps")
	}

	totalTaxableGain := result.ShortTermGain.Add(result.LongTermGain)
	cashSummary := &lotmodel.CashSummary{
		CashNeeded:           opts.CashNeeded,
		CurrentCash:          opts.CurrentCash,
		AdditionalNeeded:     additionalNeeded,
		ActualRaised:         result.ActualRaised,
		ShortTermGain:        result.ShortTermGain,
		LongTermGain:         result.LongTermGain,
		TotalTaxableGain:     totalTaxableGain,
		TotalRecommendations: len(recommendations),
	}

	return lotmodel.ResultRecord{
		Recommendations: recommendations,
		CashSummary:      cashSummary,
		Warnings:         warnings,
		Success:          true,
		Metadata: lotmodel.Metadata{
			Version:          engineVersion,
			ProcessingTimeMS: time.Since(start).Milliseconds(),
			AlgorithmUsed:    "cash_mode",
			TaxConfig:        opts.TaxConfig,
			WashSaleConfig:   opts.WashSaleConfig,
			PortfolioContext: categorize.Context(eligible, lotmodel.DefaultSizeClassThresholds()),
		},
		Calculation: lotmodel.Calculation{
			ID: calcID,
			Inputs: lotmodel.CalculationInputs{
				PortfolioSize: len(eligible),
				CashRaising:   true,
				CashNeeded:    opts.CashNeeded,
			},
			Timestamp: start,
			Version:   engineVersion,
		},
	}
}

func taxImpactsOf(recs []lotmodel.Recommendation) []decimal.Decimal {
	out := make([]decimal.Decimal, len(recs))
	for i, r := range recs {
		out[i] = r.TaxImpact
	}
	return out
}

func transactionCostsOf(recs []lotmodel.Recommendation) []decimal.Decimal {
	out := make([]decimal.Decimal, len(recs))
	for i, r := range recs {
		out[i] = r.TransactionCost
	}
	return out
}
