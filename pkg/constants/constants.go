// Package constants provides shared constants for the OptiCred engine.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MaxAmortizationMonths bounds every open-ended amortization loop. A
	// fixed installment that cannot retire a balance within this horizon is
	// treated as non-convergent.
	MaxAmortizationMonths = 360
)

// IRR solver constants
const (
	// IRRTolerance is the convergence tolerance for the monthly internal
	// rate of return, in rate units.
	IRRTolerance = 1e-9

	// IRRMaxIterations bounds the Newton-Raphson phase of the solver.
	IRRMaxIterations = 100

	// IRRMaxBisections bounds the bisection fallback.
	IRRMaxBisections = 200
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024
)

// Validation warning thresholds. Values beyond these are legal inputs for the
// engine but almost certainly a data-entry mistake upstream.
const (
	// WarnMaxPrincipal is the principal above which a warning is emitted
	WarnMaxPrincipal = 1_000_000.0

	// WarnMaxAnnualRate is the annual effective rate (decimal) above which a
	// warning is emitted
	WarnMaxAnnualRate = 1.0

	// WarnMaxTermMonths is the term above which a warning is emitted
	WarnMaxTermMonths = 360
)
