package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"options-dashboard/internal/config"
	apperrors "options-dashboard/internal/errors"
	"options-dashboard/internal/models"
	"options-dashboard/internal/resilience"
)

// Guarded puts a circuit breaker in front of a provider. While the breaker is
// open, lookups fail immediately and the service falls back to price 0.
type Guarded struct {
	provider Provider
	breaker  *resilience.Breaker
	logger   zerolog.Logger
}

// Guard wraps provider in a breaker. Unknown symbols, bad input and caller
// cancellation do not count as provider failures.
func Guard(provider Provider, cfg config.BreakerConfig, logger zerolog.Logger) *Guarded {
	b := resilience.NewBreaker("tiingo", resilience.BreakerConfig{
		Threshold: cfg.Threshold,
		Cooldown:  cfg.Cooldown,
		Trips:     tripsBreaker,
	})
	return &Guarded{provider: provider, breaker: b, logger: logger}
}

func tripsBreaker(err error) bool {
	return !errors.Is(err, apperrors.ErrSymbolNotFound) &&
		!errors.Is(err, apperrors.ErrInputValidation) &&
		!errors.Is(err, context.Canceled)
}

// Quote implements Provider.
func (g *Guarded) Quote(ctx context.Context, ticker string) (models.Quote, error) {
	q, err := resilience.Execute(g.breaker, ctx, func(ctx context.Context) (models.Quote, error) {
		return g.provider.Quote(ctx, ticker)
	})
	if errors.Is(err, resilience.ErrOpen) {
		g.logger.Debug().Str("ticker", ticker).Msg("Quote breaker open, skipping provider")
		return models.Quote{}, apperrors.NewQuoteError(ticker, "price", 0,
			fmt.Errorf("%w: %w", apperrors.ErrQuoteUnavailable, err))
	}
	return q, err
}

// Stats reports the breaker state.
func (g *Guarded) Stats() resilience.Stats {
	return g.breaker.Stats()
}
