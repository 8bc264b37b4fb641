// Package effectivecost computes the annual effective cost rate (TCEA) of a
// loan: the annualized internal rate of return of the full cash-flow stream
// including fees and insurance.
package effectivecost

import (
	"math"

	"github.com/RobertoA1/OptiCred/pkg/constants"
	"github.com/RobertoA1/OptiCred/pkg/schedule"
	"go.uber.org/zap"
)

// AncillaryCosts are the non-interest charges of a loan. All rates are
// decimals; all fields default to zero.
type AncillaryCosts struct {
	// OriginationFeeRate is a one-time fraction of the principal withheld
	// at disbursement.
	OriginationFeeRate float64 `json:"originationFeeRate"`

	// MonthlyFixedFee is a flat fee charged every month.
	MonthlyFixedFee float64 `json:"monthlyFixedFee"`

	// MonthlyInsuranceRate is a fraction of the outstanding balance charged
	// every month (declining-balance insurance).
	MonthlyInsuranceRate float64 `json:"monthlyInsuranceRate"`

	// MonthlyIncidentals are flat incidental charges per month.
	MonthlyIncidentals float64 `json:"monthlyIncidentals"`
}

// Calculator computes effective annual cost rates.
type Calculator struct {
	logger *zap.Logger
	gen    *schedule.Generator
}

// NewCalculator creates a calculator instance.
func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger, gen: schedule.NewGenerator(logger)}
}

// BuildCashFlows assembles the borrower's cash-flow vector for a French
// schedule: index 0 is the net disbursement (negative from the lender's
// perspective), indices 1..N the monthly total outflow.
func BuildCashFlows(sched schedule.Schedule, principal float64, costs AncillaryCosts) []float64 {
	flows := make([]float64, 0, len(sched)+1)
	flows = append(flows, -(principal * (1 - costs.OriginationFeeRate)))
	for _, row := range sched {
		insurance := row.OpeningBalance * costs.MonthlyInsuranceRate
		flows = append(flows, row.Installment+costs.MonthlyFixedFee+insurance+costs.MonthlyIncidentals)
	}
	return flows
}

// EffectiveAnnualCost computes the TCEA as a percentage. It generates the
// fixed-installment schedule for the terms, folds the ancillary costs into a
// cash-flow vector, solves the monthly IRR, and annualizes it. A
// *ConvergenceError means the figure is unavailable, never a default.
func (c *Calculator) EffectiveAnnualCost(terms schedule.LoanTerms, costs AncillaryCosts) (float64, error) {
	sched, err := c.gen.Generate(terms, schedule.MethodFrench)
	if err != nil {
		return 0, err
	}

	flows := BuildCashFlows(sched, terms.Principal, costs)

	monthly, err := InternalRateOfReturn(flows)
	if err != nil {
		c.logger.Warn("effective cost unavailable",
			zap.String("op", "effectivecost.EffectiveAnnualCost"),
			zap.Error(err),
		)
		return 0, err
	}

	tcea := math.Pow(1+monthly, constants.MonthsPerYear) - 1
	return tcea * constants.PercentageMultiplier, nil
}

// ApproximateEffectiveAnnualCost is a coarser fallback for callers lacking
// month-by-month detail: aggregate fees and insurance are spread evenly
// across the term and the same IRR problem is solved on the flat vector.
func (c *Calculator) ApproximateEffectiveAnnualCost(principal, baseInstallment float64, termMonths int, totalFees, totalInsurance float64) (float64, error) {
	terms := schedule.LoanTerms{Principal: principal, AnnualRate: 0, TermMonths: termMonths}
	if err := terms.Validate(); err != nil {
		return 0, err
	}

	perMonth := (totalFees + totalInsurance) / float64(termMonths)
	flows := make([]float64, 0, termMonths+1)
	flows = append(flows, -principal)
	for i := 0; i < termMonths; i++ {
		flows = append(flows, baseInstallment+perMonth)
	}

	monthly, err := InternalRateOfReturn(flows)
	if err != nil {
		return 0, err
	}

	tcea := math.Pow(1+monthly, constants.MonthsPerYear) - 1
	return tcea * constants.PercentageMultiplier, nil
}
