// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/RobertoA1/OptiCred/pkg/constants"
	"github.com/RobertoA1/OptiCred/pkg/effectivecost"
	"github.com/RobertoA1/OptiCred/pkg/schedule"
	"github.com/RobertoA1/OptiCred/pkg/simulation"
	"github.com/RobertoA1/OptiCred/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for OptiCred.
type Configuration struct {
	Logging LoggingConfig    `yaml:"logging,omitempty"`
	Output  OutputConfig     `yaml:"output,omitempty"`
	Rates   RatesConfig      `yaml:"rates,omitempty"`
	Loans   []LoanSimulation `yaml:"loans"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// RatesConfig points at the published rate table and its cache.
type RatesConfig struct {
	SourceFile      string `yaml:"sourceFile,omitempty"`      // path to the regulator's HTML document
	CacheAddr       string `yaml:"cacheAddr,omitempty"`       // Redis address; empty uses in-process cache
	CacheTTLMinutes int    `yaml:"cacheTTLMinutes,omitempty"` // 0 keeps entries until overwritten
}

// LoanSimulation describes one loan to analyze. Rates are expressed as
// percentages in the config file and converted to decimals at the engine
// boundary.
type LoanSimulation struct {
	Name         string            `yaml:"name"`
	Principal    float64           `yaml:"principal"`
	AnnualRate   float64           `yaml:"annualRate"` // effective annual, percent
	TermMonths   int               `yaml:"termMonths"`
	Method       string            `yaml:"method,omitempty"` // french (default) or german
	Costs        *CostsConfig      `yaml:"costs,omitempty"`
	Prepayment   *PrepaymentConfig `yaml:"prepayment,omitempty"`
	Recurring    *RecurringConfig  `yaml:"recurring,omitempty"`
	AnnualBudget float64           `yaml:"annualBudget,omitempty"` // compare strategies when positive
}

// CostsConfig holds the ancillary charges used for effective-cost analysis.
type CostsConfig struct {
	OriginationFeePercent   float64 `yaml:"originationFeePercent,omitempty"`
	MonthlyFixedFee         float64 `yaml:"monthlyFixedFee,omitempty"`
	MonthlyInsurancePercent float64 `yaml:"monthlyInsurancePercent,omitempty"`
	MonthlyIncidentals      float64 `yaml:"monthlyIncidentals,omitempty"`
}

// PrepaymentConfig describes a one-time extra payment.
type PrepaymentConfig struct {
	Month  int     `yaml:"month"`
	Amount float64 `yaml:"amount"`
	Policy string  `yaml:"policy,omitempty"` // reduceInstallment (default) or reduceTerm
}

// RecurringConfig describes a repeating extra payment.
type RecurringConfig struct {
	Amount       float64 `yaml:"amount"`
	StartMonth   int     `yaml:"startMonth,omitempty"`   // default 1
	EveryNMonths int     `yaml:"everyNMonths,omitempty"` // default 1 (monthly)
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from an
// in-memory source such as an HTTP request body.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// Terms converts a loan's config values to engine terms, translating the
// percent rate to a decimal.
func (loan *LoanSimulation) Terms() schedule.LoanTerms {
	return schedule.LoanTerms{
		Principal:  loan.Principal,
		AnnualRate: loan.AnnualRate / constants.PercentageMultiplier,
		TermMonths: loan.TermMonths,
	}
}

// ScheduleMethod resolves the configured amortization method, defaulting to
// the French system.
func (loan *LoanSimulation) ScheduleMethod() (schedule.Method, error) {
	switch strings.ToLower(strings.TrimSpace(loan.Method)) {
	case "", string(schedule.MethodFrench):
		return schedule.MethodFrench, nil
	case string(schedule.MethodGerman):
		return schedule.MethodGerman, nil
	default:
		return "", fmt.Errorf("loan %s: unknown amortization method %q", loan.Name, loan.Method)
	}
}

// AncillaryCosts converts the configured charges to engine cost terms. A nil
// costs block means a cost-free loan, where the effective cost equals the
// contractual rate.
func (loan *LoanSimulation) AncillaryCosts() effectivecost.AncillaryCosts {
	if loan.Costs == nil {
		return effectivecost.AncillaryCosts{}
	}
	return effectivecost.AncillaryCosts{
		OriginationFeeRate:   loan.Costs.OriginationFeePercent / constants.PercentageMultiplier,
		MonthlyFixedFee:      loan.Costs.MonthlyFixedFee,
		MonthlyInsuranceRate: loan.Costs.MonthlyInsurancePercent / constants.PercentageMultiplier,
		MonthlyIncidentals:   loan.Costs.MonthlyIncidentals,
	}
}

// PrepaymentPolicy resolves the configured policy, defaulting to keeping the
// term and lowering the installment.
func (p *PrepaymentConfig) PrepaymentPolicy() (simulation.Policy, error) {
	switch strings.TrimSpace(p.Policy) {
	case "", string(simulation.PolicyReduceInstallment):
		return simulation.PolicyReduceInstallment, nil
	case string(simulation.PolicyReduceTerm):
		return simulation.PolicyReduceTerm, nil
	default:
		return "", fmt.Errorf("unknown prepayment policy %q", p.Policy)
	}
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings.
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if len(conf.Loans) == 0 {
		warnings = append(warnings, "configuration declares no loans")
	}

	seen := make(map[string]bool)
	for i, loan := range conf.Loans {
		name := loan.Name
		if name == "" {
			warnings = append(warnings, fmt.Sprintf("loan %d has no name", i+1))
			name = fmt.Sprintf("loan %d", i+1)
		}
		if seen[name] {
			warnings = append(warnings, fmt.Sprintf("duplicate loan name %q", name))
		}
		seen[name] = true

		terms := loan.Terms()
		for _, warning := range validation.ValidateLoanInputs(terms.Principal, terms.AnnualRate, terms.TermMonths) {
			warnings = append(warnings, fmt.Sprintf("%s: %s", name, warning))
		}
	}

	return warnings
}
