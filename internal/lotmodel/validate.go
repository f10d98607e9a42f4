package lotmodel

import (
	"strconv"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// ValidationOptions controls the structural validation checks.
type ValidationOptions struct {
	ValuationDate     time.Time
	MaxPortfolioSize  int
	// GainConsistencyHard promotes the unrealized_gain consistency check
	// from a warning to a hard InvalidPortfolioData failure. Off by
	// default — left as a configuration flag rather
	// than a behavior change, so existing fixtures keep passing.
	GainConsistencyHard bool
}

func DefaultValidationOptions(valuationDate time.Time) ValidationOptions {
	return ValidationOptions{
		ValuationDate:    valuationDate,
		MaxPortfolioSize: 10_000,
	}
}

const gainConsistencyTolerance = "0.01"

// Validate enforces the structural invariants over the raw lot list, normalizes
// Term strings, derives Term from AcquiredDate when absent, and returns the
// normalized lots plus any consistency warnings. It never mutates the input
// slice.
func Validate(lots []Lot, opts ValidationOptions) ([]Lot, []string, error) {
	if len(lots) > opts.MaxPortfolioSize {
		return nil, nil, NewPortfolioTooLarge(len(lots), opts.MaxPortfolioSize)
	}

	tolerance, _ := decimal.NewFromString(gainConsistencyTolerance)

	var fieldErrors []FieldError
	var warnings []string
	out := make([]Lot, len(lots))

	for i, lot := range lots {
		if len(lot.Symbol) < 1 || len(lot.Symbol) > 20 || !isPrintableASCII(lot.Symbol) {
			fieldErrors = append(fieldErrors, FieldError{Index: i, Field: "symbol", Reason: "must be 1..20 printable characters"})
		}
		if !lot.Quantity.IsPositive() {
			fieldErrors = append(fieldErrors, FieldError{Index: i, Field: "quantity", Reason: "must be strictly positive"})
		}
		if !lot.Price.IsPositive() {
			fieldErrors = append(fieldErrors, FieldError{Index: i, Field: "price", Reason: "must be strictly positive"})
		}
		if lot.CostBasis.IsNegative() {
			fieldErrors = append(fieldErrors, FieldError{Index: i, Field: "cost_basis", Reason: "must be non-negative"})
		}
		if lot.AcquiredDate.IsZero() {
			fieldErrors = append(fieldErrors, FieldError{Index: i, Field: "acquired_date", Reason: "required"})
		}
		if lot.AccountType != "" && !lot.AccountType.valid() {
			fieldErrors = append(fieldErrors, FieldError{Index: i, Field: "account_type", Reason: "unrecognized account type"})
		}

		if lot.Term == "" && !lot.AcquiredDate.IsZero() {
			lot.Term = DeriveTerm(lot.AcquiredDate, opts.ValuationDate)
		} else if norm, ok := NormalizeTerm(string(lot.Term)); ok {
			lot.Term = norm
		} else if lot.Term != "" {
			fieldErrors = append(fieldErrors, FieldError{Index: i, Field: "term", Reason: "unrecognized term"})
		}

		if lot.Quantity.IsPositive() && lot.Price.IsPositive() {
			recomputed := lot.RecomputedGain()
			diff := lot.UnrealizedGain.Sub(recomputed).Abs()
			if diff.GreaterThan(tolerance) {
				if opts.GainConsistencyHard {
					fieldErrors = append(fieldErrors, FieldError{
						Index: i, Field: "unrealized_gain",
						Reason: "does not match quantity*price-cost_basis within 0.01",
					})
				} else {
					warnings = append(warnings, symbolWarning(lot.Symbol, i, "unrealized_gain does not match quantity*price-cost_basis within 0.01"))
				}
			}
		}

		out[i] = lot
	}

	if len(fieldErrors) > 0 {
		return nil, nil, NewInvalidPortfolioData(fieldErrors)
	}

	return out, warnings, nil
}

func isPrintableASCII(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

func symbolWarning(symbol string, index int, msg string) string {
	if symbol == "" {
		symbol = "<unknown>"
	}
	return symbol + " (lot " + strconv.Itoa(index) + "): " + msg
}
