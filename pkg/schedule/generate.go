package schedule

import (
	"fmt"
	"math"

	"github.com/RobertoA1/OptiCred/pkg/mathutil"
	"github.com/RobertoA1/OptiCred/pkg/rates"
	"go.uber.org/zap"
)

// FrenchInstallment computes the constant monthly installment of the French
// method via the standard annuity formula. Zero-rate loans divide the
// principal evenly across the term.
func FrenchInstallment(principal, annualRate float64, termMonths int) (float64, error) {
	tem, err := rates.AnnualToMonthly(annualRate)
	if err != nil {
		return 0, err
	}

	if tem == 0 {
		return principal / float64(termMonths), nil
	}

	power := math.Pow(1+tem, float64(termMonths))
	return principal * tem * power / (power - 1), nil
}

// Generator produces amortization schedules.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a generator instance.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger}
}

// Generate builds the complete month-by-month schedule for the given terms
// and method. The schedule has exactly TermMonths rows and the final closing
// balance is clamped at zero.
func (g *Generator) Generate(terms LoanTerms, method Method) (Schedule, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	switch method {
	case MethodFrench:
		return g.generateFrench(terms)
	case MethodGerman:
		return g.generateGerman(terms)
	default:
		return nil, &InvalidInputError{Field: "method", Reason: fmt.Sprintf("unknown method %q", method)}
	}
}

func (g *Generator) generateFrench(terms LoanTerms) (Schedule, error) {
	tem, err := rates.AnnualToMonthly(terms.AnnualRate)
	if err != nil {
		return nil, err
	}
	installment, err := FrenchInstallment(terms.Principal, terms.AnnualRate, terms.TermMonths)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("generating French schedule",
		zap.String("op", "schedule.Generate"),
		zap.Float64("installment", installment),
		zap.Int("term", terms.TermMonths),
	)

	sched := make(Schedule, 0, terms.TermMonths)
	balance := terms.Principal

	for month := 1; month <= terms.TermMonths; month++ {
		interest := balance * tem
		principal := installment - interest
		closing := balance - principal

		sched = append(sched, Row{
			Month:          month,
			OpeningBalance: mathutil.Round(balance),
			Interest:       mathutil.Round(interest),
			Principal:      mathutil.Round(principal),
			Installment:    mathutil.Round(installment),
			ClosingBalance: mathutil.Round(math.Max(0, closing)),
		})

		balance = closing
	}

	return sched, nil
}

func (g *Generator) generateGerman(terms LoanTerms) (Schedule, error) {
	tem, err := rates.AnnualToMonthly(terms.AnnualRate)
	if err != nil {
		return nil, err
	}
	fixedPrincipal := terms.Principal / float64(terms.TermMonths)

	g.logger.Debug("generating German schedule",
		zap.String("op", "schedule.Generate"),
		zap.Float64("fixedPrincipal", fixedPrincipal),
		zap.Int("term", terms.TermMonths),
	)

	sched := make(Schedule, 0, terms.TermMonths)
	balance := terms.Principal

	for month := 1; month <= terms.TermMonths; month++ {
		interest := balance * tem
		installment := fixedPrincipal + interest
		closing := balance - fixedPrincipal

		sched = append(sched, Row{
			Month:          month,
			OpeningBalance: mathutil.Round(balance),
			Interest:       mathutil.Round(interest),
			Principal:      mathutil.Round(fixedPrincipal),
			Installment:    mathutil.Round(installment),
			ClosingBalance: mathutil.Round(math.Max(0, closing)),
		})

		balance = closing
	}

	return sched, nil
}

// MethodComparison holds both schedules for the same terms plus their
// interest difference. A positive InterestDifference is the saving the German
// method yields over the French one.
type MethodComparison struct {
	French             Schedule `json:"french"`
	German             Schedule `json:"german"`
	FrenchTotals       Totals   `json:"frenchTotals"`
	GermanTotals       Totals   `json:"germanTotals"`
	InterestDifference float64  `json:"interestDifference"`
}

// CompareMethods runs both conventions against the same terms.
func (g *Generator) CompareMethods(terms LoanTerms) (*MethodComparison, error) {
	french, err := g.Generate(terms, MethodFrench)
	if err != nil {
		return nil, err
	}
	german, err := g.Generate(terms, MethodGerman)
	if err != nil {
		return nil, err
	}

	ft := french.Totals()
	gt := german.Totals()
	return &MethodComparison{
		French:             french,
		German:             german,
		FrenchTotals:       ft,
		GermanTotals:       gt,
		InterestDifference: ft.Interest - gt.Interest,
	}, nil
}
