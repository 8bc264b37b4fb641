// Package output provides utilities for formatting and displaying schedules
// and comparison results.
package output

import (
	"fmt"
	"io"

	"github.com/RobertoA1/OptiCred/pkg/comparison"
	"github.com/RobertoA1/OptiCred/pkg/schedule"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettySchedule writes a human-readable amortization table.
func PrettySchedule(w io.Writer, name string, sched schedule.Schedule) {
	p := message.NewPrinter(language.English)
	fmt.Fprintf(w, "--- Amortization schedule for %s ---\n", name)
	fmt.Fprintf(w, "Month | Opening      | Interest   | Principal  | Installment | Closing\n")
	fmt.Fprintf(w, "_____ | ____________ | __________ | __________ | ___________ | ____________\n")
	for _, row := range sched {
		_, _ = p.Fprintf(w, "%5d | %12.2f | %10.2f | %10.2f | %11.2f | %12.2f\n",
			row.Month, row.OpeningBalance, row.Interest, row.Principal, row.Installment, row.ClosingBalance)
	}

	totals := sched.Totals()
	_, _ = p.Fprintf(w, "Totals: interest %.2f, principal %.2f, paid %.2f (interest share %.1f%%)\n",
		totals.Interest, totals.Principal, totals.Paid, totals.InterestShare())
}

// CsvSchedule writes an amortization table in comma-separated value format.
func CsvSchedule(w io.Writer, sched schedule.Schedule) {
	fmt.Fprintf(w, `"month","openingBalance","interest","principal","installment","closingBalance"`)
	fmt.Fprintf(w, "\n")
	for _, row := range sched {
		fmt.Fprintf(w, `"%d","%.2f","%.2f","%.2f","%.2f","%.2f"`,
			row.Month, row.OpeningBalance, row.Interest, row.Principal, row.Installment, row.ClosingBalance)
		fmt.Fprintf(w, "\n")
	}
}

// PrettyStrategies writes a ranked strategy comparison.
func PrettyStrategies(w io.Writer, strategies []comparison.Strategy) {
	p := message.NewPrinter(language.English)
	fmt.Fprintf(w, "--- Prepayment strategies, best first ---\n")
	fmt.Fprintf(w, "Strategy      | Total interest | Term | Saved\n")
	fmt.Fprintf(w, "_____________ | ______________ | ____ | __________\n")
	for _, s := range strategies {
		_, _ = p.Fprintf(w, "%-13s | %14.2f | %4d | %10.2f\n",
			s.Name, s.TotalInterest, s.TermMonths, s.InterestSaved)
	}
}

// CsvStrategies writes a strategy comparison in comma-separated value format.
func CsvStrategies(w io.Writer, strategies []comparison.Strategy) {
	fmt.Fprintf(w, `"strategy","periodMonths","extraPerPeriod","totalInterest","termMonths","interestSaved"`)
	fmt.Fprintf(w, "\n")
	for _, s := range strategies {
		fmt.Fprintf(w, `"%s","%d","%.2f","%.2f","%d","%.2f"`,
			s.Name, s.PeriodMonths, s.ExtraPerPeriod, s.TotalInterest, s.TermMonths, s.InterestSaved)
		fmt.Fprintf(w, "\n")
	}
}
