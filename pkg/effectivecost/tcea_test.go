package effectivecost

import (
	"math"
	"testing"

	"github.com/RobertoA1/OptiCred/pkg/schedule"
)

func TestBuildCashFlows(t *testing.T) {
	sched := schedule.Schedule{
		{Month: 1, OpeningBalance: 1000.00, Installment: 510.00},
		{Month: 2, OpeningBalance: 505.00, Installment: 510.00},
	}
	costs := AncillaryCosts{
		OriginationFeeRate:   0.01,
		MonthlyFixedFee:      5.00,
		MonthlyInsuranceRate: 0.001,
		MonthlyIncidentals:   2.00,
	}

	flows := BuildCashFlows(sched, 1000.00, costs)

	if len(flows) != 3 {
		t.Fatalf("cash flow vector has %d entries, expected 3", len(flows))
	}
	if math.Abs(flows[0]-(-990.00)) > 0.001 {
		t.Errorf("disbursement = %v, expected -990.00 net of origination fee", flows[0])
	}
	// Installment + fixed fee + opening balance insurance + incidentals.
	if math.Abs(flows[1]-(510.00+5.00+1.00+2.00)) > 0.001 {
		t.Errorf("first outflow = %v, expected 518.00", flows[1])
	}
	if math.Abs(flows[2]-(510.00+5.00+0.505+2.00)) > 0.001 {
		t.Errorf("second outflow = %v, expected 517.505", flows[2])
	}
}

func TestEffectiveAnnualCostWithoutCosts(t *testing.T) {
	calc := NewCalculator(nil)
	terms := schedule.LoanTerms{Principal: 10000, AnnualRate: 0.18, TermMonths: 12}

	tcea, err := calc.EffectiveAnnualCost(terms, AncillaryCosts{})
	if err != nil {
		t.Fatalf("EffectiveAnnualCost returned error: %v", err)
	}

	// With no ancillary charges the effective cost is the contractual rate.
	// Per-row rounding of the installment moves the figure by a few hundredths.
	if math.Abs(tcea-18.0) > 0.1 {
		t.Errorf("cost-free TCEA = %v%%, expected about 18%%", tcea)
	}
}

func TestEffectiveAnnualCostWithCosts(t *testing.T) {
	calc := NewCalculator(nil)
	terms := schedule.LoanTerms{Principal: 10000, AnnualRate: 0.20, TermMonths: 12}
	costs := AncillaryCosts{
		OriginationFeeRate:   0.01,
		MonthlyFixedFee:      5.00,
		MonthlyInsuranceRate: 0.0005,
		MonthlyIncidentals:   3.00,
	}

	tcea, err := calc.EffectiveAnnualCost(terms, costs)
	if err != nil {
		t.Fatalf("EffectiveAnnualCost returned error: %v", err)
	}

	if tcea <= 20.0 {
		t.Errorf("TCEA = %v%%, expected above the contractual 20%%", tcea)
	}
	if tcea > 30.0 {
		t.Errorf("TCEA = %v%%, unreasonably high for these charges", tcea)
	}
}

func TestEffectiveAnnualCostOrderedByCharges(t *testing.T) {
	calc := NewCalculator(nil)
	terms := schedule.LoanTerms{Principal: 20000, AnnualRate: 0.15, TermMonths: 24}

	light, err := calc.EffectiveAnnualCost(terms, AncillaryCosts{MonthlyFixedFee: 2.00})
	if err != nil {
		t.Fatalf("EffectiveAnnualCost returned error: %v", err)
	}
	heavy, err := calc.EffectiveAnnualCost(terms, AncillaryCosts{
		OriginationFeeRate: 0.02,
		MonthlyFixedFee:    10.00,
	})
	if err != nil {
		t.Fatalf("EffectiveAnnualCost returned error: %v", err)
	}

	if heavy <= light {
		t.Errorf("heavier charges gave TCEA %v%% not above lighter %v%%", heavy, light)
	}
}

func TestEffectiveAnnualCostInvalidTerms(t *testing.T) {
	calc := NewCalculator(nil)
	_, err := calc.EffectiveAnnualCost(schedule.LoanTerms{Principal: 0, AnnualRate: 0.18, TermMonths: 12}, AncillaryCosts{})
	if err == nil {
		t.Error("expected error for zero principal")
	}
}

func TestApproximateEffectiveAnnualCost(t *testing.T) {
	calc := NewCalculator(nil)

	// 12 installments of 910.46 on 10000 is about 18% effective annual.
	tcea, err := calc.ApproximateEffectiveAnnualCost(10000, 910.46, 12, 0, 0)
	if err != nil {
		t.Fatalf("ApproximateEffectiveAnnualCost returned error: %v", err)
	}
	if math.Abs(tcea-18.0) > 0.1 {
		t.Errorf("approximate TCEA = %v%%, expected about 18%%", tcea)
	}

	withFees, err := calc.ApproximateEffectiveAnnualCost(10000, 910.46, 12, 60, 36)
	if err != nil {
		t.Fatalf("ApproximateEffectiveAnnualCost returned error: %v", err)
	}
	if withFees <= tcea {
		t.Errorf("TCEA with fees = %v%%, expected above fee-free %v%%", withFees, tcea)
	}
}
