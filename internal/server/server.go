// Package server exposes the amortization engine over a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/RobertoA1/OptiCred/internal/ratetable"
	"github.com/RobertoA1/OptiCred/pkg/comparison"
	"github.com/RobertoA1/OptiCred/pkg/constants"
	"github.com/RobertoA1/OptiCred/pkg/effectivecost"
	"github.com/RobertoA1/OptiCred/pkg/rates"
	"github.com/RobertoA1/OptiCred/pkg/schedule"
	"github.com/RobertoA1/OptiCred/pkg/simulation"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
	validate    *validator.Validate

	gen  *schedule.Generator
	calc *effectivecost.Calculator
	sim  *simulation.Simulator
	comp *comparison.Comparator

	table *ratetable.Table
}

// NewHandler constructs the HTTP handler that serves the amortization API. The
// rate table is optional; without one the rates endpoint reports the table as
// not loaded.
func NewHandler(logger *zap.Logger, maxBodySize int64, version string, table *ratetable.Table) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}
	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
		validate:    validator.New(),
		gen:         schedule.NewGenerator(logger),
		calc:        effectivecost.NewCalculator(logger),
		sim:         simulation.NewSimulator(logger),
		comp:        comparison.NewComparator(logger),
		table:       table,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/schedule", h.handleSchedule)
	mux.HandleFunc("/api/effective-cost", h.handleEffectiveCost)
	mux.HandleFunc("/api/simulate/prepayment", h.handlePrepayment)
	mux.HandleFunc("/api/simulate/recurring", h.handleRecurring)
	mux.HandleFunc("/api/compare", h.handleCompare)
	mux.HandleFunc("/api/rates", h.handleRates)
	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/health", h.handleHealth)

	return mux
}

// loanRequest is the shared loan description. The rate arrives as a percent
// and is converted to a decimal at the engine boundary.
type loanRequest struct {
	Principal         float64 `json:"principal" validate:"required,gt=0"`
	AnnualRatePercent float64 `json:"annualRatePercent" validate:"gte=0"`
	TermMonths        int     `json:"termMonths" validate:"required,gt=0"`
}

func (lr loanRequest) terms() schedule.LoanTerms {
	return schedule.LoanTerms{
		Principal:  lr.Principal,
		AnnualRate: lr.AnnualRatePercent / constants.PercentageMultiplier,
		TermMonths: lr.TermMonths,
	}
}

type scheduleRequest struct {
	loanRequest
	Method         string `json:"method,omitempty" validate:"omitempty,oneof=french german"`
	CompareMethods bool   `json:"compareMethods,omitempty"`
}

type scheduleResponse struct {
	Schedule schedule.Schedule `json:"schedule"`
	Totals   schedule.Totals   `json:"totals"`
}

type costsRequest struct {
	OriginationFeePercent   float64 `json:"originationFeePercent" validate:"gte=0"`
	MonthlyFixedFee         float64 `json:"monthlyFixedFee" validate:"gte=0"`
	MonthlyInsurancePercent float64 `json:"monthlyInsurancePercent" validate:"gte=0"`
	MonthlyIncidentals      float64 `json:"monthlyIncidentals" validate:"gte=0"`
}

func (cr costsRequest) costs() effectivecost.AncillaryCosts {
	return effectivecost.AncillaryCosts{
		OriginationFeeRate:   cr.OriginationFeePercent / constants.PercentageMultiplier,
		MonthlyFixedFee:      cr.MonthlyFixedFee,
		MonthlyInsuranceRate: cr.MonthlyInsurancePercent / constants.PercentageMultiplier,
		MonthlyIncidentals:   cr.MonthlyIncidentals,
	}
}

type effectiveCostRequest struct {
	loanRequest
	Costs costsRequest `json:"costs"`
}

type effectiveCostResponse struct {
	EffectiveAnnualCostPercent float64 `json:"effectiveAnnualCostPercent"`
	ContractualRatePercent     float64 `json:"contractualRatePercent"`
}

type prepaymentRequest struct {
	loanRequest
	Month  int     `json:"month" validate:"required,gt=0"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Policy string  `json:"policy,omitempty" validate:"omitempty,oneof=reduceInstallment reduceTerm"`
}

type prepaymentResponse struct {
	Applicable bool               `json:"applicable"`
	Reason     string             `json:"reason,omitempty"`
	Result     *simulation.Result `json:"result,omitempty"`
}

type recurringRequest struct {
	loanRequest
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	StartMonth   int     `json:"startMonth,omitempty" validate:"omitempty,gt=0"`
	EveryNMonths int     `json:"everyNMonths,omitempty" validate:"omitempty,gt=0"`
}

type recurringResponse struct {
	Schedule      simulation.RecurringSchedule `json:"schedule"`
	TotalInterest float64                      `json:"totalInterest"`
	TermMonths    int                          `json:"termMonths"`
}

type compareRequest struct {
	loanRequest
	AnnualBudget float64 `json:"annualBudget" validate:"required,gt=0"`
}

type compareResponse struct {
	Strategies []comparison.Strategy `json:"strategies"`
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	op := "server.handleSchedule"
	var req scheduleRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	if req.CompareMethods {
		result, err := h.gen.CompareMethods(req.terms())
		if err != nil {
			h.respondEngineError(w, err, op)
			return
		}
		h.writeJSON(w, http.StatusOK, result)
		return
	}

	method := schedule.MethodFrench
	if req.Method != "" {
		method = schedule.Method(req.Method)
	}
	sched, err := h.gen.Generate(req.terms(), method)
	if err != nil {
		h.respondEngineError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, scheduleResponse{Schedule: sched, Totals: sched.Totals()})
}

func (h *handler) handleEffectiveCost(w http.ResponseWriter, r *http.Request) {
	op := "server.handleEffectiveCost"
	var req effectiveCostRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	tcea, err := h.calc.EffectiveAnnualCost(req.terms(), req.Costs.costs())
	if err != nil {
		h.respondEngineError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, effectiveCostResponse{
		EffectiveAnnualCostPercent: tcea,
		ContractualRatePercent:     req.AnnualRatePercent,
	})
}

func (h *handler) handlePrepayment(w http.ResponseWriter, r *http.Request) {
	op := "server.handlePrepayment"
	var req prepaymentRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	terms := req.terms()
	baseline, err := h.gen.Generate(terms, schedule.MethodFrench)
	if err != nil {
		h.respondEngineError(w, err, op)
		return
	}

	policy := simulation.PolicyReduceInstallment
	if req.Policy != "" {
		policy = simulation.Policy(req.Policy)
	}

	result, err := h.sim.SimulateOneTime(baseline, req.Month, req.Amount, terms.AnnualRate, policy)
	if errors.Is(err, simulation.ErrMonthOutOfRange) {
		// A month outside the schedule is a normal input, not a failure.
		h.writeJSON(w, http.StatusOK, prepaymentResponse{
			Applicable: false,
			Reason:     fmt.Sprintf("month %d is outside the schedule of %d months", req.Month, len(baseline)),
		})
		return
	}
	if err != nil {
		h.respondEngineError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, prepaymentResponse{Applicable: true, Result: result})
}

func (h *handler) handleRecurring(w http.ResponseWriter, r *http.Request) {
	op := "server.handleRecurring"
	var req recurringRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	var sched simulation.RecurringSchedule
	var err error
	if req.EveryNMonths > 1 {
		sched, err = h.sim.SimulatePeriodic(req.terms(), req.Amount, req.EveryNMonths)
	} else {
		startMonth := req.StartMonth
		if startMonth == 0 {
			startMonth = 1
		}
		sched, err = h.sim.SimulateRecurring(req.terms(), req.Amount, startMonth)
	}
	if err != nil {
		h.respondEngineError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, recurringResponse{
		Schedule:      sched,
		TotalInterest: sched.TotalInterest(),
		TermMonths:    len(sched),
	})
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	op := "server.handleCompare"
	var req compareRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	strategies, err := h.comp.CompareStrategies(req.terms(), req.AnnualBudget)
	if err != nil {
		h.respondEngineError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, compareResponse{Strategies: strategies})
}

type rateLookupResponse struct {
	Category    string  `json:"category"`
	Product     string  `json:"product"`
	BestBank    string  `json:"bestBank"`
	BestRate    float64 `json:"bestRate"`
	WorstBank   string  `json:"worstBank"`
	WorstRate   float64 `json:"worstRate"`
	AverageRate float64 `json:"averageRate"`
}

func (h *handler) handleRates(w http.ResponseWriter, r *http.Request) {
	op := "server.handleRates"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if h.table == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "rate table not loaded", op)
		return
	}

	category := r.URL.Query().Get("category")
	product := r.URL.Query().Get("product")
	if category == "" && product == "" {
		h.writeJSON(w, http.StatusOK, h.table)
		return
	}
	if category == "" || product == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "category and product are required together", op)
		return
	}

	bestBank, bestRate, err := h.table.Best(ratetable.Category(category), product)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}
	worstBank, worstRate, err := h.table.Worst(ratetable.Category(category), product)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}
	average, err := h.table.Average(ratetable.Category(category), product)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, rateLookupResponse{
		Category:    category,
		Product:     product,
		BestBank:    bestBank,
		BestRate:    bestRate,
		WorstBank:   worstBank,
		WorstRate:   worstRate,
		AverageRate: average,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode parses and validates a JSON request body. It writes the error
// response itself and returns false when the request cannot proceed.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return false
	}

	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err), op)
		return false
	}

	h.logger.Debug("request accepted",
		zap.String("op", op),
		zap.String("requestId", requestID),
		zap.Duration("decodeTime", time.Since(start)),
	)
	return true
}

// respondEngineError maps engine error types to HTTP statuses. Bad inputs are
// 400s; computations that cannot converge are 422s.
func (h *handler) respondEngineError(w http.ResponseWriter, err error, op string) {
	var invalid *schedule.InvalidInputError
	var domain *rates.DomainError
	var convergence *effectivecost.ConvergenceError
	var nonConvergent *simulation.NonConvergentAmortizationError

	switch {
	case errors.As(err, &invalid), errors.As(err, &domain):
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
	case errors.As(err, &convergence):
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
	case errors.As(err, &nonConvergent):
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	if h.logger != nil {
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
