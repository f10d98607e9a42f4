// Package lotmodel defines the immutable lot record, its invariants, and the
// structured error taxonomy the rest of the engine reports through.
package lotmodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// Term is the holding-period classification of a lot.
type Term string

const (
	TermShort Term = "Short"
	TermLong  Term = "Long"
)

// NormalizeTerm accepts both the canonical values and the brokerage-export
// spellings ("Short-Term"/"Long-Term") and returns the canonical Term.
func NormalizeTerm(raw string) (Term, bool) {
	switch raw {
	case "Short", "Short-Term", "ShortTerm", "short", "short-term":
		return TermShort, true
	case "Long", "Long-Term", "LongTerm", "long", "long-term":
		return TermLong, true
	default:
		return "", false
	}
}

// AccountType is the tax wrapper a lot is held in. Only Taxable accounts
// participate in harvesting.
type AccountType string

const (
	AccountTaxable        AccountType = "taxable"
	AccountTraditionalIRA AccountType = "traditional_ira"
	AccountRothIRA        AccountType = "roth_ira"
	AccountHSA            AccountType = "hsa"
	Account401k           AccountType = "401k"
)

func (a AccountType) valid() bool {
	switch a {
	case AccountTaxable, AccountTraditionalIRA, AccountRothIRA, AccountHSA, Account401k:
		return true
	default:
		return false
	}
}

// CorporateActionKind enumerates the corporate-action types normalized before selection.
type CorporateActionKind string

const (
	ActionSplit    CorporateActionKind = "split"
	ActionMerger   CorporateActionKind = "merger"
	ActionSpinoff  CorporateActionKind = "spinoff"
	ActionDividend CorporateActionKind = "dividend"
)

// CorporateAction is one entry in a lot's ordered corporate-action history.
type CorporateAction struct {
	Kind          CorporateActionKind
	EffectiveDate time.Time

	// Ratio is the split ratio (split). Nil when not applicable.
	Ratio *decimal.Decimal

	// NewSymbol is the post-action ticker (merger, spinoff).
	NewSymbol *string

	// ExchangeRatio is shares-of-new-per-share-of-old (merger).
	ExchangeRatio *decimal.Decimal

	// NewEntityBasisAllocation is the fraction of cost basis carried to the
	// spun-off entity, when the brokerage export provides one (spinoff).
	NewEntityBasisAllocation *decimal.Decimal
}

// Lot is a single tax-basis accounting unit. It is treated as immutable
// after validation; corporate-action normalization produces a new Lot value rather than mutating
// one in place.
type Lot struct {
	Symbol             string
	Name               string
	Quantity           decimal.Decimal
	Price              decimal.Decimal
	CostBasis          decimal.Decimal
	UnrealizedGain      decimal.Decimal
	Term               Term
	AcquiredDate       time.Time
	IncludedInSelling  bool
	AccountType        AccountType
	WashSaleFlag       bool
	CorporateActions   []CorporateAction

	// CorporateActionFlag is set when a spinoff touched this lot.
	CorporateActionFlag bool
}

// Proceeds is quantity*price, the whole-lot sale value.
func (l Lot) Proceeds() decimal.Decimal {
	return l.Quantity.Mul(l.Price)
}

// RecomputedGain returns quantity*price - cost_basis, independent of the
// lot's declared UnrealizedGain.
func (l Lot) RecomputedGain() decimal.Decimal {
	return l.Proceeds().Sub(l.CostBasis)
}

// IsLoss reports whether the lot's declared unrealized gain is negative.
func (l Lot) IsLoss() bool {
	return l.UnrealizedGain.IsNegative()
}

// HoldingPeriodDays returns the whole days held as of asOf.
func (l Lot) HoldingPeriodDays(asOf time.Time) int {
	return int(asOf.Sub(l.AcquiredDate).Hours() / 24)
}

// DeriveTerm returns Long when the holding period as of asOf is at least 365
// days, Short otherwise — the fallback used when Term is not supplied.
func DeriveTerm(acquiredDate, asOf time.Time) Term {
	if asOf.Sub(acquiredDate).Hours()/24 >= 365 {
		return TermLong
	}
	return TermShort
}
