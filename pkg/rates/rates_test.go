package rates

import (
	"errors"
	"math"
	"testing"
)

func TestAnnualToMonthly(t *testing.T) {
	tests := []struct {
		name     string
		annual   float64
		expected float64
	}{
		{"18 percent TEA", 0.18, 0.0138884},
		{"12 percent TEA", 0.12, 0.0094888},
		{"Zero rate", 0.0, 0.0},
		{"Negative rate above domain edge", -0.05, -0.0042653},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := AnnualToMonthly(tt.annual)
			if err != nil {
				t.Fatalf("AnnualToMonthly(%v) returned error: %v", tt.annual, err)
			}
			if math.Abs(result-tt.expected) > 1e-6 {
				t.Errorf("AnnualToMonthly(%v) = %v, expected %v", tt.annual, result, tt.expected)
			}
		})
	}
}

func TestAnnualToMonthlyDomainError(t *testing.T) {
	for _, annual := range []float64{-1.0, -1.5} {
		_, err := AnnualToMonthly(annual)
		var domainErr *DomainError
		if !errors.As(err, &domainErr) {
			t.Errorf("AnnualToMonthly(%v) expected DomainError, got %v", annual, err)
		}
	}
}

func TestMonthlyToAnnualRoundTrip(t *testing.T) {
	for _, annual := range []float64{0.0, 0.05, 0.12, 0.18, 0.45, -0.10} {
		monthly, err := AnnualToMonthly(annual)
		if err != nil {
			t.Fatalf("AnnualToMonthly(%v) returned error: %v", annual, err)
		}
		back, err := MonthlyToAnnual(monthly)
		if err != nil {
			t.Fatalf("MonthlyToAnnual(%v) returned error: %v", monthly, err)
		}
		if math.Abs(back-annual) > 1e-9 {
			t.Errorf("round trip of %v came back as %v", annual, back)
		}
	}
}

func TestMonthlyToAnnualDomainError(t *testing.T) {
	_, err := MonthlyToAnnual(-1.0)
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Errorf("MonthlyToAnnual(-1) expected DomainError, got %v", err)
	}
}

func TestNominalToEffectiveAnnual(t *testing.T) {
	tests := []struct {
		name     string
		nominal  float64
		periods  int
		expected float64
	}{
		{"12 percent monthly compounding", 0.12, 12, 0.1268250},
		{"12 percent quarterly compounding", 0.12, 4, 0.1255088},
		{"Zero nominal", 0.0, 12, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NominalToEffectiveAnnual(tt.nominal, tt.periods)
			if err != nil {
				t.Fatalf("NominalToEffectiveAnnual(%v, %d) returned error: %v", tt.nominal, tt.periods, err)
			}
			if math.Abs(result-tt.expected) > 1e-6 {
				t.Errorf("NominalToEffectiveAnnual(%v, %d) = %v, expected %v",
					tt.nominal, tt.periods, result, tt.expected)
			}
		})
	}
}

func TestNominalToEffectiveAnnualDomainError(t *testing.T) {
	tests := []struct {
		name    string
		nominal float64
		periods int
	}{
		{"Zero periods", 0.12, 0},
		{"Negative periods", 0.12, -1},
		{"Periodic rate at domain edge", -12.0, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NominalToEffectiveAnnual(tt.nominal, tt.periods)
			var domainErr *DomainError
			if !errors.As(err, &domainErr) {
				t.Errorf("expected DomainError, got %v", err)
			}
		})
	}
}
