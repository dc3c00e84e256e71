package quote

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"options-dashboard/internal/logging"
	"options-dashboard/internal/models"
	"options-dashboard/internal/resilience"
	"options-dashboard/internal/store"
)

// Result is the outcome of a lookup. When Fallback is set, Quote carries the
// zero price and Err holds the provider failure.
type Result struct {
	Quote    models.Quote
	Fallback bool
	Err      error
}

// Service looks up quotes and records every lookup in the history store.
type Service struct {
	provider Provider
	store    store.QuoteStore
	logger   zerolog.Logger
}

// NewService creates a lookup service. A nil store records nothing.
func NewService(provider Provider, st store.QuoteStore, logger zerolog.Logger) *Service {
	if st == nil {
		st = store.Nop{}
	}
	return &Service{provider: provider, store: st, logger: logger}
}

// Fallback is the quote used when the provider fails: price 0, named by its ticker.
func Fallback(ticker string) models.Quote {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	return models.Quote{Ticker: ticker, Name: ticker}
}

// Lookup fetches the quote for ticker, falling back to price 0 on failure.
// It never returns an error on its own; failures are reported in Result.
func (s *Service) Lookup(ctx context.Context, ticker string) Result {
	res := Result{}
	q, err := s.provider.Quote(ctx, ticker)
	if err != nil {
		res = Result{Quote: s.fallback(ctx, ticker), Fallback: true, Err: err}
	} else {
		res.Quote = q
	}

	logging.LogQuote(s.logger, res.Quote.Ticker, res.Quote.LastPrice, res.Fallback, res.Err)

	if res.Quote.Ticker != "" {
		if _, err := s.store.SaveQuote(ctx, res.Quote, res.Fallback); err != nil {
			logger := logging.WithTicker(s.logger, res.Quote.Ticker)
			logger.Warn().Err(err).Msg("Failed to record quote lookup")
		}
	}
	return res
}

// fallback is the price-0 quote, named after the last successful lookup of
// the ticker when history has one.
func (s *Service) fallback(ctx context.Context, ticker string) models.Quote {
	q := Fallback(ticker)
	if q.Ticker == "" {
		return q
	}
	last, err := s.store.LastQuote(ctx, q.Ticker)
	if err == nil && last != nil && last.Quote.Name != "" {
		q.Name = last.Quote.Name
	}
	return q
}

// Breaker returns the provider's circuit breaker state, if it has one.
func (s *Service) Breaker() (resilience.Stats, bool) {
	g, ok := s.provider.(interface{ Stats() resilience.Stats })
	if !ok {
		return resilience.Stats{}, false
	}
	return g.Stats(), true
}
