package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/RobertoA1/OptiCred/pkg/comparison"
	"github.com/RobertoA1/OptiCred/pkg/schedule"
)

func sampleSchedule() schedule.Schedule {
	return schedule.Schedule{
		{Month: 1, OpeningBalance: 10000.00, Interest: 138.88, Principal: 771.58, Installment: 910.46, ClosingBalance: 9228.42},
		{Month: 2, OpeningBalance: 9228.42, Interest: 128.17, Principal: 782.29, Installment: 910.46, ClosingBalance: 8446.13},
	}
}

func TestPrettySchedule(t *testing.T) {
	var buf bytes.Buffer
	PrettySchedule(&buf, "Vehicle loan", sampleSchedule())
	got := buf.String()

	for _, want := range []string{"Vehicle loan", "Month", "Opening", "Installment", "Totals:", "910.46"} {
		if !strings.Contains(got, want) {
			t.Errorf("pretty output missing %q:\n%s", want, got)
		}
	}
}

func TestCsvSchedule(t *testing.T) {
	var buf bytes.Buffer
	CsvSchedule(&buf, sampleSchedule())
	got := buf.String()

	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv output has %d lines, expected header plus 2 rows:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[0], `"month"`) {
		t.Errorf("csv header missing month column: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"910.46"`) {
		t.Errorf("csv first row missing installment: %s", lines[1])
	}
}

func TestPrettyStrategies(t *testing.T) {
	strategies := []comparison.Strategy{
		{Name: comparison.StrategyMonthly, PeriodMonths: 1, ExtraPerPeriod: 200, TotalInterest: 12000.50, TermMonths: 30, InterestSaved: 2500.25},
		{Name: comparison.StrategyBaseline, TotalInterest: 14500.75, TermMonths: 36},
	}

	var buf bytes.Buffer
	PrettyStrategies(&buf, strategies)
	got := buf.String()

	for _, want := range []string{"Monthly", "No Prepayment", "Strategy"} {
		if !strings.Contains(got, want) {
			t.Errorf("pretty strategies output missing %q:\n%s", want, got)
		}
	}
}

func TestCsvStrategies(t *testing.T) {
	strategies := []comparison.Strategy{
		{Name: comparison.StrategyAnnual, PeriodMonths: 12, ExtraPerPeriod: 2400, TotalInterest: 13000.00, TermMonths: 33, InterestSaved: 1500.75},
	}

	var buf bytes.Buffer
	CsvStrategies(&buf, strategies)
	got := buf.String()

	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv output has %d lines, expected header plus 1 row:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[1], `"Annual"`) || !strings.Contains(lines[1], `"1500.75"`) {
		t.Errorf("csv row incomplete: %s", lines[1])
	}
}
