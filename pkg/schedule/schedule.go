// Package schedule generates and aggregates loan amortization schedules under
// the fixed-installment (French) and fixed-principal (German) methods.
package schedule

import (
	"fmt"

	"github.com/RobertoA1/OptiCred/pkg/constants"
)

// Method selects the amortization convention.
type Method string

const (
	// MethodFrench is fixed-installment amortization (constant total payment).
	MethodFrench Method = "french"

	// MethodGerman is fixed-principal amortization (constant principal share).
	MethodGerman Method = "german"
)

// LoanTerms holds the immutable inputs of an amortization run. AnnualRate is
// a decimal TEA (0.18 means 18%).
type LoanTerms struct {
	Principal  float64
	AnnualRate float64
	TermMonths int
}

// InvalidInputError indicates loan terms outside the engine's domain. Inputs
// are rejected before any computation, never clamped.
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Validate checks the terms against the engine's domain.
func (t LoanTerms) Validate() error {
	if t.Principal <= 0 {
		return &InvalidInputError{Field: "principal", Value: t.Principal, Reason: "must be positive"}
	}
	if t.AnnualRate <= -1 {
		return &InvalidInputError{Field: "annualRate", Value: t.AnnualRate, Reason: "must be greater than -100%"}
	}
	if t.TermMonths < 1 {
		return &InvalidInputError{Field: "termMonths", Value: float64(t.TermMonths), Reason: "must be at least 1"}
	}
	return nil
}

// Row is one month of an amortization schedule. Months are 1-based and
// contiguous. All monetary figures are rounded to 2 decimals.
type Row struct {
	Month          int     `json:"month"`
	OpeningBalance float64 `json:"openingBalance"`
	Interest       float64 `json:"interest"`
	Principal      float64 `json:"principal"`
	Installment    float64 `json:"installment"`
	ClosingBalance float64 `json:"closingBalance"`
}

// Schedule is an ordered sequence of rows. Immutable once produced.
type Schedule []Row

// Totals holds the summary aggregates of a schedule.
type Totals struct {
	Interest  float64 `json:"totalInterest"`
	Principal float64 `json:"totalPrincipal"`
	Paid      float64 `json:"totalPaid"`
}

// Totals sums the interest, principal, and installment columns. An empty
// schedule yields all-zero totals.
func (s Schedule) Totals() Totals {
	var t Totals
	for _, row := range s {
		t.Interest += row.Interest
		t.Principal += row.Principal
		t.Paid += row.Installment
	}
	return t
}

// InterestShare reports what percentage of the total paid is interest.
func (t Totals) InterestShare() float64 {
	if t.Paid <= 0 {
		return 0
	}
	return t.Interest / t.Paid * constants.PercentageMultiplier
}
