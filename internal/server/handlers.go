package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/richslow/vnmarket/internal/dashboard"
	"github.com/richslow/vnmarket/internal/model"
	"github.com/richslow/vnmarket/internal/normalize"
	"github.com/richslow/vnmarket/internal/peers"
)

// Statements is the normalized-statement surface the handlers consume.
type Statements interface {
	StatementSet(ctx context.Context, ticker string, period model.PeriodType) (*model.StatementSet, error)
	Series(ctx context.Context, ticker string, period model.PeriodType, kind model.StatementKind) ([]model.Statement, error)
}

// Benchmarks yields peer-group benchmark reports.
type Benchmarks interface {
	Report(ctx context.Context, ticker string) (*model.BenchmarkReport, error)
}

// Dashboards starts staged snapshot streams.
type Dashboards interface {
	Start(ctx context.Context, ticker string, period model.PeriodType) <-chan dashboard.Snapshot
}

// Handlers binds the services to HTTP.
type Handlers struct {
	statements Statements
	company    dashboard.CompanySource
	benchmarks Benchmarks
	dashboards Dashboards
	validate   *validator.Validate
}

// NewHandlers wires a handler set.
func NewHandlers(statements Statements, company dashboard.CompanySource, benchmarks Benchmarks, dashboards Dashboards) *Handlers {
	return &Handlers{
		statements: statements,
		company:    company,
		benchmarks: benchmarks,
		dashboards: dashboards,
		validate:   validator.New(),
	}
}

// tickerParams is the validated request surface shared by every endpoint.
type tickerParams struct {
	Ticker string `validate:"required,alphanum,uppercase,min=3,max=10"`
	Period string `validate:"omitempty,oneof=year quarter"`
}

// params validates the ticker path parameter and optional period query.
// Period defaults to annual.
func (h *Handlers) params(r *http.Request) (string, model.PeriodType, error) {
	p := tickerParams{
		Ticker: chi.URLParam(r, "ticker"),
		Period: r.URL.Query().Get("period"),
	}
	if err := h.validate.Struct(p); err != nil {
		return "", "", eris.Wrap(err, "invalid request")
	}
	period := model.PeriodType(p.Period)
	if p.Period == "" {
		period = model.PeriodYear
	}
	return p.Ticker, period, nil
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// writeError maps service errors onto stable error codes. Classification
// unavailability is the caller's data problem, not an internal fault; a dual
// provider outage maps to a gateway error.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal"
	switch {
	case errors.Is(err, peers.ErrClassificationUnavailable):
		status = http.StatusUnprocessableEntity
		code = "classification_unavailable"
	case errors.Is(err, normalize.ErrProviderOutage):
		status = http.StatusBadGateway
		code = "provider_outage"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: errorBody{Code: code, Message: err.Error()}})
}

func writeBadRequest(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: errorBody{Code: "invalid_request", Message: err.Error()}})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// StatementSet serves all four normalized statement series.
func (h *Handlers) StatementSet(w http.ResponseWriter, r *http.Request) {
	ticker, period, err := h.params(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	set, err := h.statements.StatementSet(r.Context(), ticker, period)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, set)
}

var seriesKinds = map[string]model.StatementKind{
	"income":   model.KindIncome,
	"balance":  model.KindBalance,
	"cashflow": model.KindCashFlow,
	"ratios":   model.KindRatio,
}

// Series serves one normalized statement series, ascending by period.
func (h *Handlers) Series(w http.ResponseWriter, r *http.Request) {
	ticker, period, err := h.params(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	kind, ok := seriesKinds[chi.URLParam(r, "kind")]
	if !ok {
		writeBadRequest(w, eris.Errorf("unknown statement kind %q", chi.URLParam(r, "kind")))
		return
	}
	series, err := h.statements.Series(r.Context(), ticker, period, kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, series)
}

// companyEndpoint handles the shared fetch-then-encode shape of the company
// sub-resources.
func (h *Handlers) companyEndpoint(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, ticker string) (any, error)) {
	ticker, _, err := h.params(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	v, err := fetch(r.Context(), ticker)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, v)
}

func (h *Handlers) Overview(w http.ResponseWriter, r *http.Request) {
	h.companyEndpoint(w, r, func(ctx context.Context, t string) (any, error) { return h.company.Overview(ctx, t) })
}

func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	h.companyEndpoint(w, r, func(ctx context.Context, t string) (any, error) { return h.company.Profile(ctx, t) })
}

func (h *Handlers) Shareholders(w http.ResponseWriter, r *http.Request) {
	h.companyEndpoint(w, r, func(ctx context.Context, t string) (any, error) { return h.company.Shareholders(ctx, t) })
}

func (h *Handlers) Officers(w http.ResponseWriter, r *http.Request) {
	h.companyEndpoint(w, r, func(ctx context.Context, t string) (any, error) { return h.company.Officers(ctx, t) })
}

func (h *Handlers) Subsidiaries(w http.ResponseWriter, r *http.Request) {
	h.companyEndpoint(w, r, func(ctx context.Context, t string) (any, error) { return h.company.Subsidiaries(ctx, t) })
}

func (h *Handlers) Dividends(w http.ResponseWriter, r *http.Request) {
	h.companyEndpoint(w, r, func(ctx context.Context, t string) (any, error) { return h.company.Dividends(ctx, t) })
}

func (h *Handlers) InsiderDeals(w http.ResponseWriter, r *http.Request) {
	h.companyEndpoint(w, r, func(ctx context.Context, t string) (any, error) { return h.company.InsiderDeals(ctx, t) })
}

func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	h.companyEndpoint(w, r, func(ctx context.Context, t string) (any, error) { return h.company.Events(ctx, t) })
}

func (h *Handlers) News(w http.ResponseWriter, r *http.Request) {
	h.companyEndpoint(w, r, func(ctx context.Context, t string) (any, error) { return h.company.News(ctx, t) })
}

func (h *Handlers) Prices(w http.ResponseWriter, r *http.Request) {
	h.companyEndpoint(w, r, func(ctx context.Context, t string) (any, error) { return h.company.Prices(ctx, t) })
}

// Benchmark serves the subject's industry benchmark report. Ratios with too
// few peer samples are absent from the map; clients render them as not
// available, never as zero.
func (h *Handlers) Benchmark(w http.ResponseWriter, r *http.Request) {
	ticker, _, err := h.params(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	report, err := h.benchmarks.Report(r.Context(), ticker)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}
