// Package simulation models extraordinary principal payments against a
// fixed-installment schedule, one-time or recurring.
package simulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/RobertoA1/OptiCred/pkg/constants"
	"github.com/RobertoA1/OptiCred/pkg/mathutil"
	"github.com/RobertoA1/OptiCred/pkg/rates"
	"github.com/RobertoA1/OptiCred/pkg/schedule"
	"go.uber.org/zap"
)

// Policy selects what a one-time prepayment reduces.
type Policy string

const (
	// PolicyReduceInstallment keeps the remaining term and lowers the
	// installment.
	PolicyReduceInstallment Policy = "reduceInstallment"

	// PolicyReduceTerm keeps the installment and shortens the term.
	PolicyReduceTerm Policy = "reduceTerm"
)

// ErrMonthOutOfRange reports a prepayment month outside the schedule. This is
// a normal user-input condition; callers should render it as "not applicable"
// rather than a failure.
var ErrMonthOutOfRange = errors.New("prepayment month outside schedule range")

// NonConvergentAmortizationError indicates a fixed installment too small to
// ever amortize the balance (installment at or below the interest-only
// payment).
type NonConvergentAmortizationError struct {
	Installment float64
	Balance     float64
}

func (e *NonConvergentAmortizationError) Error() string {
	return fmt.Sprintf("installment %.2f cannot amortize balance %.2f within %d months",
		e.Installment, e.Balance, constants.MaxAmortizationMonths)
}

// Result summarizes a one-time prepayment simulation against its baseline.
// NewPaid adds back the out-of-pocket extra amount, which is not part of any
// installment.
type Result struct {
	Schedule         schedule.Schedule `json:"schedule"`
	OriginalInterest float64           `json:"originalInterest"`
	NewInterest      float64           `json:"newInterest"`
	InterestSaved    float64           `json:"interestSaved"`
	OriginalPaid     float64           `json:"originalPaid"`
	NewPaid          float64           `json:"newPaid"`
	MonthsSaved      int               `json:"monthsSaved"`
	NewTermMonths    int               `json:"newTermMonths"`
}

// Simulator runs prepayment simulations.
type Simulator struct {
	logger *zap.Logger
}

// NewSimulator creates a simulator instance.
func NewSimulator(logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{logger: logger}
}

// SimulateOneTime applies a single extra payment immediately after the
// regular installment of the trigger month. History up to that month is kept
// as-is; the remainder is re-amortized under the chosen policy and the tail
// renumbered contiguously.
func (s *Simulator) SimulateOneTime(orig schedule.Schedule, month int, extra, annualRate float64, policy Policy) (*Result, error) {
	if month < 1 || month >= len(orig) {
		return nil, ErrMonthOutOfRange
	}
	if extra <= 0 {
		return nil, &schedule.InvalidInputError{Field: "extraAmount", Value: extra, Reason: "must be positive"}
	}

	history := make(schedule.Schedule, month)
	copy(history, orig[:month])

	balanceAfter := math.Max(0, history[month-1].ClosingBalance-extra)
	history[month-1].ClosingBalance = mathutil.Round(balanceAfter)

	var newSched schedule.Schedule
	if mathutil.IsZero(balanceAfter) {
		// Loan fully retired at the trigger month.
		newSched = history
	} else {
		remaining := len(orig) - month
		originalInstallment := orig[0].Installment

		var tail schedule.Schedule
		var err error
		switch policy {
		case PolicyReduceTerm:
			tail, err = amortizeAtFixedInstallment(balanceAfter, annualRate, originalInstallment)
		case PolicyReduceInstallment:
			tail, err = reamortizeOverTerm(balanceAfter, annualRate, remaining)
		default:
			return nil, &schedule.InvalidInputError{Field: "policy", Reason: fmt.Sprintf("unknown policy %q", policy)}
		}
		if err != nil {
			return nil, err
		}

		for i := range tail {
			tail[i].Month = month + 1 + i
		}
		newSched = append(history, tail...)
	}

	origTotals := orig.Totals()
	newTotals := newSched.Totals()

	s.logger.Debug("one-time prepayment simulated",
		zap.String("op", "simulation.SimulateOneTime"),
		zap.Int("month", month),
		zap.String("policy", string(policy)),
		zap.Int("newTerm", len(newSched)),
	)

	return &Result{
		Schedule:         newSched,
		OriginalInterest: origTotals.Interest,
		NewInterest:      newTotals.Interest,
		InterestSaved:    origTotals.Interest - newTotals.Interest,
		OriginalPaid:     origTotals.Paid,
		NewPaid:          newTotals.Paid + extra,
		MonthsSaved:      len(orig) - len(newSched),
		NewTermMonths:    len(newSched),
	}, nil
}

// reamortizeOverTerm computes a fresh fixed installment for the balance over
// the given number of months and walks the segment forward.
func reamortizeOverTerm(balance, annualRate float64, months int) (schedule.Schedule, error) {
	tem, err := rates.AnnualToMonthly(annualRate)
	if err != nil {
		return nil, err
	}
	installment, err := schedule.FrenchInstallment(balance, annualRate, months)
	if err != nil {
		return nil, err
	}

	tail := make(schedule.Schedule, 0, months)
	for m := 0; m < months; m++ {
		interest := balance * tem
		principal := installment - interest
		closing := balance - principal

		tail = append(tail, schedule.Row{
			OpeningBalance: mathutil.Round(balance),
			Interest:       mathutil.Round(interest),
			Principal:      mathutil.Round(principal),
			Installment:    mathutil.Round(installment),
			ClosingBalance: mathutil.Round(math.Max(0, closing)),
		})
		balance = closing
	}
	return tail, nil
}

// amortizeAtFixedInstallment walks the balance forward at the given
// installment until it is retired. The iteration is capped; an installment at
// or below the interest-only payment can never retire the balance and fails.
func amortizeAtFixedInstallment(balance, annualRate, installment float64) (schedule.Schedule, error) {
	tem, err := rates.AnnualToMonthly(annualRate)
	if err != nil {
		return nil, err
	}

	tail := make(schedule.Schedule, 0)
	for m := 0; balance > constants.CurrencyTolerance && m < constants.MaxAmortizationMonths; m++ {
		interest := balance * tem
		principal := installment - interest
		if principal <= 0 {
			return nil, &NonConvergentAmortizationError{Installment: installment, Balance: balance}
		}

		cuota := installment
		if principal > balance {
			// Final month: clamp so the closing balance lands at exactly 0.
			principal = balance
			cuota = principal + interest
		}
		closing := balance - principal

		tail = append(tail, schedule.Row{
			OpeningBalance: mathutil.Round(balance),
			Interest:       mathutil.Round(interest),
			Principal:      mathutil.Round(principal),
			Installment:    mathutil.Round(cuota),
			ClosingBalance: mathutil.Round(math.Max(0, closing)),
		})
		balance = closing
	}

	if balance > constants.CurrencyTolerance {
		return nil, &NonConvergentAmortizationError{Installment: installment, Balance: balance}
	}
	return tail, nil
}
