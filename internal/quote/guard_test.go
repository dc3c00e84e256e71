package quote

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-dashboard/internal/config"
	apperrors "options-dashboard/internal/errors"
	"options-dashboard/internal/models"
	"options-dashboard/internal/resilience"
)

type countingProvider struct {
	calls atomic.Int32
	err   error
}

func (p *countingProvider) Quote(ctx context.Context, ticker string) (models.Quote, error) {
	p.calls.Add(1)
	if p.err != nil {
		return models.Quote{}, p.err
	}
	return models.Quote{Ticker: ticker, LastPrice: 10}, nil
}

func TestGuardShortCircuitsAfterFailures(t *testing.T) {
	upstream := &countingProvider{err: apperrors.NewQuoteError("AAPL", "price", 503, apperrors.ErrQuoteUnavailable)}
	g := Guard(upstream, config.BreakerConfig{Threshold: 2, Cooldown: time.Minute}, zerolog.Nop())
	svc := NewService(g, nil, zerolog.Nop())

	for i := 0; i < 4; i++ {
		res := svc.Lookup(context.Background(), "AAPL")
		require.True(t, res.Fallback)
		assert.ErrorIs(t, res.Err, apperrors.ErrQuoteUnavailable)
	}
	assert.Equal(t, int32(2), upstream.calls.Load(), "open breaker skips the provider")

	res := svc.Lookup(context.Background(), "AAPL")
	assert.ErrorIs(t, res.Err, resilience.ErrOpen)

	stats, ok := svc.Breaker()
	require.True(t, ok)
	assert.Equal(t, resilience.StateOpen, stats.State)
	assert.Equal(t, int64(3), stats.Rejected)
}

func TestGuardIgnoresUnknownSymbols(t *testing.T) {
	upstream := &countingProvider{err: apperrors.NewQuoteError("ZZZZ", "price", 404, apperrors.ErrSymbolNotFound)}
	g := Guard(upstream, config.BreakerConfig{Threshold: 1, Cooldown: time.Minute}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := g.Quote(context.Background(), "ZZZZ")
		assert.ErrorIs(t, err, apperrors.ErrSymbolNotFound)
	}
	assert.Equal(t, int32(3), upstream.calls.Load())
	assert.Equal(t, resilience.StateClosed, g.Stats().State)
}

func TestServiceWithoutBreaker(t *testing.T) {
	_, ok := NewService(stubProvider{}, nil, zerolog.Nop()).Breaker()
	assert.False(t, ok)
}
