// Package validation provides input validation utilities. Hard domain errors
// live with the engine types; this package produces advisory warnings for
// values that are legal but suspicious.
package validation

import (
	"fmt"

	"github.com/RobertoA1/OptiCred/pkg/constants"
)

// ValidateLoanInputs returns warnings for loan inputs that are within the
// engine's domain but likely data-entry mistakes. It never blocks a
// computation; hard limits are enforced by schedule.LoanTerms.Validate.
func ValidateLoanInputs(principal, annualRate float64, termMonths int) []string {
	var warnings []string

	if principal > constants.WarnMaxPrincipal {
		warnings = append(warnings, fmt.Sprintf("principal %.2f exceeds %.0f and looks unusually high",
			principal, constants.WarnMaxPrincipal))
	}
	if annualRate > constants.WarnMaxAnnualRate {
		warnings = append(warnings, fmt.Sprintf("annual rate %.2f%% exceeds 100%% and looks unusually high",
			annualRate*constants.PercentageMultiplier))
	}
	if termMonths > constants.WarnMaxTermMonths {
		warnings = append(warnings, fmt.Sprintf("term of %d months exceeds %d and looks unusually long",
			termMonths, constants.WarnMaxTermMonths))
	}

	return warnings
}

// ValidateOutputFormat checks a CLI output format selection.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV:
		return nil
	default:
		return fmt.Errorf("invalid output format %q: must be %s or %s",
			format, constants.OutputFormatPretty, constants.OutputFormatCSV)
	}
}
