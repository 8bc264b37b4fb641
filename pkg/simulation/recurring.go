package simulation

import (
	"math"

	"github.com/RobertoA1/OptiCred/pkg/constants"
	"github.com/RobertoA1/OptiCred/pkg/mathutil"
	"github.com/RobertoA1/OptiCred/pkg/rates"
	"github.com/RobertoA1/OptiCred/pkg/schedule"
	"go.uber.org/zap"
)

// RecurringRow is one month of a recurring-prepayment simulation. It keeps
// the contractually required installment separate from the extra paid.
type RecurringRow struct {
	Month           int     `json:"month"`
	OpeningBalance  float64 `json:"openingBalance"`
	Interest        float64 `json:"interest"`
	Principal       float64 `json:"principal"`
	BaseInstallment float64 `json:"baseInstallment"`
	ExtraPaid       float64 `json:"extraPaid"`
	TotalPaid       float64 `json:"totalPaid"`
	ClosingBalance  float64 `json:"closingBalance"`
}

// RecurringSchedule is the full month-by-month result of a recurring
// simulation.
type RecurringSchedule []RecurringRow

// Schedule converts to the plain schedule shape, with the total paid as the
// installment column.
func (r RecurringSchedule) Schedule() schedule.Schedule {
	sched := make(schedule.Schedule, 0, len(r))
	for _, row := range r {
		sched = append(sched, schedule.Row{
			Month:          row.Month,
			OpeningBalance: row.OpeningBalance,
			Interest:       row.Interest,
			Principal:      row.Principal,
			Installment:    row.TotalPaid,
			ClosingBalance: row.ClosingBalance,
		})
	}
	return sched
}

// TotalInterest sums the interest column.
func (r RecurringSchedule) TotalInterest() float64 {
	total := 0.0
	for _, row := range r {
		total += row.Interest
	}
	return total
}

// SimulateRecurring applies a fixed extra amount every month from startMonth
// onward. Recurring extras always shorten the term: the base installment
// stays contractual and the surplus goes straight to principal. There is no
// closed form; the balance is walked month by month until retired.
func (s *Simulator) SimulateRecurring(terms schedule.LoanTerms, extraPerMonth float64, startMonth int) (RecurringSchedule, error) {
	if extraPerMonth < 0 {
		return nil, &schedule.InvalidInputError{Field: "extraPerMonth", Value: extraPerMonth, Reason: "must not be negative"}
	}
	if startMonth < 1 {
		return nil, &schedule.InvalidInputError{Field: "startMonth", Value: float64(startMonth), Reason: "must be at least 1"}
	}
	return s.simulateExtras(terms, func(month int) float64 {
		if month >= startMonth {
			return extraPerMonth
		}
		return 0
	})
}

// SimulatePeriodic applies the extra amount every N months (months N, 2N, …).
func (s *Simulator) SimulatePeriodic(terms schedule.LoanTerms, extraAmount float64, everyNMonths int) (RecurringSchedule, error) {
	if everyNMonths < 1 {
		return nil, &schedule.InvalidInputError{Field: "everyNMonths", Value: float64(everyNMonths), Reason: "must be at least 1"}
	}
	return s.simulateExtras(terms, func(month int) float64 {
		if month%everyNMonths == 0 {
			return extraAmount
		}
		return 0
	})
}

func (s *Simulator) simulateExtras(terms schedule.LoanTerms, extraFor func(month int) float64) (RecurringSchedule, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	tem, err := rates.AnnualToMonthly(terms.AnnualRate)
	if err != nil {
		return nil, err
	}
	baseInstallment, err := schedule.FrenchInstallment(terms.Principal, terms.AnnualRate, terms.TermMonths)
	if err != nil {
		return nil, err
	}

	result := make(RecurringSchedule, 0, terms.TermMonths)
	balance := terms.Principal

	for month := 1; balance > constants.CurrencyTolerance && month <= constants.MaxAmortizationMonths; month++ {
		interest := balance * tem
		extra := extraFor(month)
		totalPaid := baseInstallment + extra
		principal := totalPaid - interest

		if principal > balance {
			// Final month: pay only what remains.
			principal = balance
			totalPaid = principal + interest
			extra = math.Max(0, totalPaid-baseInstallment)
		}
		closing := balance - principal

		result = append(result, RecurringRow{
			Month:           month,
			OpeningBalance:  mathutil.Round(balance),
			Interest:        mathutil.Round(interest),
			Principal:       mathutil.Round(principal),
			BaseInstallment: mathutil.Round(math.Min(baseInstallment, totalPaid)),
			ExtraPaid:       mathutil.Round(extra),
			TotalPaid:       mathutil.Round(totalPaid),
			ClosingBalance:  mathutil.Round(math.Max(0, closing)),
		})
		balance = closing
	}

	if balance > constants.CurrencyTolerance {
		return nil, &NonConvergentAmortizationError{Installment: baseInstallment, Balance: balance}
	}

	s.logger.Debug("recurring prepayment simulated",
		zap.String("op", "simulation.simulateExtras"),
		zap.Int("months", len(result)),
	)
	return result, nil
}
