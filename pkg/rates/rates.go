// Package rates converts between annual, monthly, and nominal interest rate
// conventions. All rates are decimals (0.18 means 18%).
package rates

import (
	"fmt"
	"math"

	"github.com/RobertoA1/OptiCred/pkg/constants"
)

// DomainError indicates a rate outside the mathematical domain of a
// conversion, e.g. an effective rate at or below -100%.
type DomainError struct {
	Op    string
	Value float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("rates: %s undefined for %v", e.Op, e.Value)
}

// AnnualToMonthly converts an annual effective rate (TEA) to the equivalent
// monthly effective rate (TEM): (1+r)^(1/12) - 1. Defined for r > -1.
func AnnualToMonthly(annual float64) (float64, error) {
	if annual <= -1 {
		return 0, &DomainError{Op: "AnnualToMonthly", Value: annual}
	}
	return math.Pow(1+annual, 1.0/constants.MonthsPerYear) - 1, nil
}

// MonthlyToAnnual converts a monthly effective rate (TEM) back to the annual
// effective rate (TEA): (1+m)^12 - 1. Inverse of AnnualToMonthly.
func MonthlyToAnnual(monthly float64) (float64, error) {
	if monthly <= -1 {
		return 0, &DomainError{Op: "MonthlyToAnnual", Value: monthly}
	}
	return math.Pow(1+monthly, constants.MonthsPerYear) - 1, nil
}

// NominalToEffectiveAnnual converts a nominal annual rate compounded
// periodsPerYear times into the annual effective rate: (1+n/p)^p - 1.
func NominalToEffectiveAnnual(nominal float64, periodsPerYear int) (float64, error) {
	if periodsPerYear <= 0 {
		return 0, &DomainError{Op: "NominalToEffectiveAnnual", Value: float64(periodsPerYear)}
	}
	p := float64(periodsPerYear)
	if nominal/p <= -1 {
		return 0, &DomainError{Op: "NominalToEffectiveAnnual", Value: nominal}
	}
	return math.Pow(1+nominal/p, p) - 1, nil
}
