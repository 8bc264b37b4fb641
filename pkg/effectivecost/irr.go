package effectivecost

import (
	"fmt"
	"math"

	"github.com/RobertoA1/OptiCred/pkg/constants"
)

// ConvergenceError indicates the internal-rate-of-return solver failed to
// find a root. Callers must treat the cost figure as unavailable; there is no
// fallback value.
type ConvergenceError struct {
	Iterations   int
	LastEstimate float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("irr solver failed to converge after %d iterations (last estimate %v)", e.Iterations, e.LastEstimate)
}

// netPresentValue discounts the flow vector at the given periodic rate.
// Index 0 is undiscounted.
func netPresentValue(flows []float64, rate float64) float64 {
	npv := 0.0
	discount := 1.0
	for _, flow := range flows {
		npv += flow / discount
		discount *= 1 + rate
	}
	return npv
}

// npvDerivative is the analytic derivative of netPresentValue with respect to
// the rate.
func npvDerivative(flows []float64, rate float64) float64 {
	deriv := 0.0
	for i, flow := range flows {
		if i == 0 {
			continue
		}
		deriv -= float64(i) * flow / math.Pow(1+rate, float64(i+1))
	}
	return deriv
}

// InternalRateOfReturn solves for the periodic rate m > -1 at which the net
// present value of flows is zero. Newton-Raphson first, bisection fallback
// when Newton diverges or leaves the domain.
func InternalRateOfReturn(flows []float64) (float64, error) {
	if len(flows) < 2 {
		return 0, &ConvergenceError{}
	}

	rate := 0.01
	for i := 0; i < constants.IRRMaxIterations; i++ {
		npv := netPresentValue(flows, rate)
		if math.Abs(npv) < constants.IRRTolerance {
			return rate, nil
		}
		deriv := npvDerivative(flows, rate)
		if deriv == 0 || math.IsNaN(deriv) || math.IsInf(deriv, 0) {
			break
		}
		next := rate - npv/deriv
		if next <= -1 || math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		if math.Abs(next-rate) < constants.IRRTolerance {
			return next, nil
		}
		rate = next
	}

	return bisectIRR(flows)
}

// bisectIRR brackets a sign change of the NPV and bisects. The lower bound
// hugs the domain edge; the upper bound doubles outward until the sign flips.
func bisectIRR(flows []float64) (float64, error) {
	lo, hi := -0.9999, 1.0
	npvLo := netPresentValue(flows, lo)

	iterations := 0
	for netPresentValue(flows, hi)*npvLo > 0 {
		hi *= 2
		iterations++
		if hi > 1e6 {
			return 0, &ConvergenceError{Iterations: iterations, LastEstimate: hi}
		}
	}

	for i := 0; i < constants.IRRMaxBisections; i++ {
		mid := (lo + hi) / 2
		npvMid := netPresentValue(flows, mid)
		if math.Abs(npvMid) < constants.IRRTolerance || hi-lo < constants.IRRTolerance {
			return mid, nil
		}
		if npvMid*npvLo > 0 {
			lo = mid
			npvLo = npvMid
		} else {
			hi = mid
		}
	}

	return 0, &ConvergenceError{Iterations: constants.IRRMaxBisections, LastEstimate: (lo + hi) / 2}
}
