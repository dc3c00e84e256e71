package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "options-dashboard/internal/errors"
	"options-dashboard/internal/logging"
	"options-dashboard/internal/models"
	"options-dashboard/internal/payoff"
	"options-dashboard/internal/resilience"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type tab struct {
	Kind         payoff.Kind
	Label        string
	UsesAvgPrice bool
}

type pageData struct {
	Title             string
	Tabs              []tab
	Default           payoff.Kind
	SharesPerContract int
}

// handleIndex renders the dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Title:             "Options Payoff Dashboard",
		Default:           payoff.KindCall,
		SharesPerContract: s.engine.SharesPerContract,
	}
	for _, k := range payoff.Kinds() {
		data.Tabs = append(data.Tabs, tab{Kind: k, Label: k.Label(), UsesAvgPrice: k.UsesAvgPrice()})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		logger := logging.FromContext(r.Context())
		logger.Error().Err(err).Msg("Failed to render dashboard")
	}
}

type quoteResponse struct {
	Ticker          string     `json:"ticker"`
	Name            string     `json:"name"`
	Price           float64    `json:"price"`
	SuggestedStrike float64    `json:"suggested_strike"`
	AsOf            *time.Time `json:"as_of,omitempty"`
	Fallback        bool       `json:"fallback"`
}

// handleQuote looks up a ticker. Provider failures are not errors here: the
// response carries price 0 and the ticker as name.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	ticker := strings.TrimSpace(r.URL.Query().Get("ticker"))
	if ticker == "" {
		writeError(w, r, apperrors.NewValidationError("ticker", ticker, "is required"))
		return
	}

	res := s.quotes.Lookup(r.Context(), ticker)
	q := res.Quote
	resp := quoteResponse{
		Ticker:          q.Ticker,
		Name:            q.DisplayName(),
		Price:           q.LastPrice,
		SuggestedStrike: models.SuggestStrike(q.LastPrice),
		Fallback:        res.Fallback,
	}
	if !q.AsOf.IsZero() {
		resp.AsOf = &q.AsOf
	}
	writeJSON(w, http.StatusOK, resp)
}

type payoffResponse struct {
	Kind              payoff.Kind        `json:"kind"`
	Label             string             `json:"label"`
	Strike            float64            `json:"strike"`
	Premium           float64            `json:"premium"`
	AvgPrice          float64            `json:"avg_price"`
	Contracts         int                `json:"contracts"`
	SharesPerContract int                `json:"shares_per_contract"`
	Samples           []payoff.Sample    `json:"samples"`
	Summary           payoff.Summary     `json:"summary"`
	Chart             payoff.ChartBounds `json:"chart"`
}

// handlePayoff computes a payoff curve from query parameters.
func (s *Server) handlePayoff(w http.ResponseWriter, r *http.Request) {
	req, every, err := parsePayoffQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	start := time.Now()
	curve, err := s.engine.Curve(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logging.LogCurve(logging.FromContext(r.Context()), string(req.Kind), req.Params.Strike, len(curve.Samples), time.Since(start))

	samples := curve.Every(every)
	if samples == nil {
		samples = []payoff.Sample{}
	}

	writeJSON(w, http.StatusOK, payoffResponse{
		Kind:              req.Kind,
		Label:             req.Kind.Label(),
		Strike:            req.Params.Strike,
		Premium:           req.Params.Premium,
		AvgPrice:          req.Params.AvgPrice,
		Contracts:         req.Contracts,
		SharesPerContract: s.engine.SharesPerContract,
		Samples:           samples,
		Summary:           curve.Summary(),
		Chart:             curve.ChartBounds(),
	})
}

type healthResponse struct {
	Status  string            `json:"status"`
	Breaker *resilience.Stats `json:"quote_breaker,omitempty"`
}

// handleHealth reports "degraded" while quote lookups are short-circuited.
// The dashboard still serves payoff curves then, so the status code stays 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if stats, ok := s.quotes.Breaker(); ok {
		resp.Breaker = &stats
		if stats.State == resilience.StateOpen {
			resp.Status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// parsePayoffQuery reads payoff inputs. Missing numbers default to 0 and
// missing contracts to 1. The average price only applies to covered calls.
func parsePayoffQuery(r *http.Request) (payoff.Request, int, error) {
	q := r.URL.Query()

	kindParam := q.Get("kind")
	if kindParam == "" {
		kindParam = string(payoff.KindCall)
	}
	kind, err := payoff.ParseKind(kindParam)
	if err != nil {
		return payoff.Request{}, 0, err
	}

	req := payoff.Request{Kind: kind, Contracts: 1}
	floats := []struct {
		name string
		dst  *float64
	}{
		{"strike", &req.Params.Strike},
		{"premium", &req.Params.Premium},
		{"avg_price", &req.Params.AvgPrice},
	}
	for _, f := range floats {
		raw := strings.TrimSpace(q.Get(f.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return payoff.Request{}, 0, apperrors.NewValidationError(f.name, raw, "must be a number")
		}
		*f.dst = v
	}
	if !kind.UsesAvgPrice() {
		req.Params.AvgPrice = 0
	}

	if raw := strings.TrimSpace(q.Get("contracts")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return payoff.Request{}, 0, apperrors.NewValidationError("contracts", raw, "must be a whole number")
		}
		req.Contracts = n
	}

	every := 1
	if raw := strings.TrimSpace(q.Get("every")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return payoff.Request{}, 0, apperrors.NewValidationError("every", raw, "must be a positive whole number")
		}
		every = n
	}

	return req, every, nil
}

type errorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: err.Error(), RequestID: logging.RequestID(r.Context())}

	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		resp.Field = verr.Field
	case errors.Is(err, apperrors.ErrUnknownInstrument):
		status = http.StatusBadRequest
		resp.Field = "kind"
	}

	if status >= 500 {
		logger := logging.FromContext(r.Context())
		logger.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
