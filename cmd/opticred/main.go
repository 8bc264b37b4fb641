package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/RobertoA1/OptiCred/internal/config"
	"github.com/RobertoA1/OptiCred/internal/ratecache"
	"github.com/RobertoA1/OptiCred/internal/ratetable"
	"github.com/RobertoA1/OptiCred/internal/server"
	"github.com/RobertoA1/OptiCred/pkg/comparison"
	"github.com/RobertoA1/OptiCred/pkg/constants"
	"github.com/RobertoA1/OptiCred/pkg/effectivecost"
	"github.com/RobertoA1/OptiCred/pkg/output"
	"github.com/RobertoA1/OptiCred/pkg/schedule"
	"github.com/RobertoA1/OptiCred/pkg/simulation"
	"github.com/RobertoA1/OptiCred/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via -ldflags.
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

// loadRateTable reads and extracts the configured rate table document, caching
// the result so subsequent runs skip extraction.
func loadRateTable(ratesConfig config.RatesConfig, logger *zap.Logger) (*ratetable.Table, error) {
	if ratesConfig.SourceFile == "" {
		return nil, nil
	}

	var cache ratecache.Cache
	if ratesConfig.CacheAddr != "" {
		ttl := time.Duration(ratesConfig.CacheTTLMinutes) * time.Minute
		cache = ratecache.NewRedisCache(ratesConfig.CacheAddr, ttl)
	} else {
		cache = ratecache.NewMemoryCache()
	}

	if table, ok, err := ratecache.LoadTable(cache); err != nil {
		logger.Warn("discarding unreadable cached rate table",
			zap.String("op", "main.loadRateTable"),
			zap.Error(err),
		)
	} else if ok {
		logger.Debug("rate table served from cache",
			zap.String("op", "main.loadRateTable"),
		)
		return table, nil
	}

	data, err := os.ReadFile(ratesConfig.SourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate table source %s: %w", ratesConfig.SourceFile, err)
	}

	table, err := ratetable.Extract(data, logger)
	if err != nil {
		return nil, err
	}

	if err := ratecache.StoreTable(cache, table); err != nil {
		logger.Warn("failed to cache rate table",
			zap.String("op", "main.loadRateTable"),
			zap.Error(err),
		)
	}
	return table, nil
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "run the HTTP API server instead of the CLI analysis")
	addr := flag.String("addr", "", "listen address override for the HTTP API server")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	table, err := loadRateTable(conf.Rates, logger)
	if err != nil {
		logger.Fatal("failed to load rate table",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if *serve {
		runServer(logger, *serverConfigLocation, *addr, table)
		return
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	runAnalysis(logger, conf, outputFormat)
}

// runAnalysis executes every configured loan analysis and prints the results.
func runAnalysis(logger *zap.Logger, conf *config.Configuration, outputFormat string) {
	gen := schedule.NewGenerator(logger)
	calc := effectivecost.NewCalculator(logger)
	sim := simulation.NewSimulator(logger)
	comp := comparison.NewComparator(logger)

	for _, loan := range conf.Loans {
		terms := loan.Terms()

		method, err := loan.ScheduleMethod()
		if err != nil {
			logger.Fatal("invalid loan configuration",
				zap.String("op", "main.runAnalysis"),
				zap.Error(err),
			)
		}

		sched, err := gen.Generate(terms, method)
		if err != nil {
			logger.Fatal("failed to generate amortization schedule",
				zap.String("op", "main.runAnalysis"),
				zap.String("loan", loan.Name),
				zap.Error(err),
			)
		}

		switch outputFormat {
		case constants.OutputFormatPretty:
			output.PrettySchedule(os.Stdout, loan.Name, sched)
		case constants.OutputFormatCSV:
			output.CsvSchedule(os.Stdout, sched)
		}

		if loan.Costs != nil {
			tcea, err := calc.EffectiveAnnualCost(terms, loan.AncillaryCosts())
			if err != nil {
				logger.Error("failed to compute effective annual cost",
					zap.String("op", "main.runAnalysis"),
					zap.String("loan", loan.Name),
					zap.Error(err),
				)
			} else {
				fmt.Printf("%s: effective annual cost %.2f%% (contractual %.2f%%)\n",
					loan.Name, tcea, loan.AnnualRate)
			}
		}

		if loan.Prepayment != nil {
			policy, err := loan.Prepayment.PrepaymentPolicy()
			if err != nil {
				logger.Fatal("invalid loan configuration",
					zap.String("op", "main.runAnalysis"),
					zap.Error(err),
				)
			}
			result, err := sim.SimulateOneTime(sched, loan.Prepayment.Month, loan.Prepayment.Amount, terms.AnnualRate, policy)
			if errors.Is(err, simulation.ErrMonthOutOfRange) {
				logger.Warn("prepayment month outside schedule, skipping simulation",
					zap.String("op", "main.runAnalysis"),
					zap.String("loan", loan.Name),
					zap.Int("month", loan.Prepayment.Month),
				)
			} else if err != nil {
				logger.Error("failed to simulate prepayment",
					zap.String("op", "main.runAnalysis"),
					zap.String("loan", loan.Name),
					zap.Error(err),
				)
			} else {
				fmt.Printf("%s: prepayment of %.2f at month %d saves %.2f in interest (%d months saved)\n",
					loan.Name, loan.Prepayment.Amount, loan.Prepayment.Month, result.InterestSaved, result.MonthsSaved)
				switch outputFormat {
				case constants.OutputFormatPretty:
					output.PrettySchedule(os.Stdout, loan.Name+" (with prepayment)", result.Schedule)
				case constants.OutputFormatCSV:
					output.CsvSchedule(os.Stdout, result.Schedule)
				}
			}
		}

		if loan.Recurring != nil {
			var recurring simulation.RecurringSchedule
			var err error
			if loan.Recurring.EveryNMonths > 1 {
				recurring, err = sim.SimulatePeriodic(terms, loan.Recurring.Amount, loan.Recurring.EveryNMonths)
			} else {
				startMonth := loan.Recurring.StartMonth
				if startMonth == 0 {
					startMonth = 1
				}
				recurring, err = sim.SimulateRecurring(terms, loan.Recurring.Amount, startMonth)
			}
			if err != nil {
				logger.Error("failed to simulate recurring prepayments",
					zap.String("op", "main.runAnalysis"),
					zap.String("loan", loan.Name),
					zap.Error(err),
				)
			} else {
				fmt.Printf("%s: recurring extras retire the loan in %d months with %.2f total interest\n",
					loan.Name, len(recurring), recurring.TotalInterest())
			}
		}

		if loan.AnnualBudget > 0 {
			strategies, err := comp.CompareStrategies(terms, loan.AnnualBudget)
			if err != nil {
				logger.Error("failed to compare prepayment strategies",
					zap.String("op", "main.runAnalysis"),
					zap.String("loan", loan.Name),
					zap.Error(err),
				)
			} else {
				switch outputFormat {
				case constants.OutputFormatPretty:
					output.PrettyStrategies(os.Stdout, strategies)
				case constants.OutputFormatCSV:
					output.CsvStrategies(os.Stdout, strategies)
				}
			}
		}
	}
}

// runServer starts the HTTP API.
func runServer(logger *zap.Logger, serverConfigPath, addrOverride string, table *ratetable.Table) {
	serverConfig, err := server.LoadConfig(serverConfigPath)
	if err != nil {
		logger.Fatal("failed to load server configuration",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}

	address := serverConfig.Address
	if addrOverride != "" {
		address = addrOverride
	}

	handler := server.NewHandler(logger, serverConfig.BodySizeBytes(), version, table)

	logger.Info("starting HTTP API server",
		zap.String("op", "main.runServer"),
		zap.String("address", address),
		zap.String("version", version),
	)
	if err := http.ListenAndServe(address, handler); err != nil {
		logger.Fatal("server terminated",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}
}
