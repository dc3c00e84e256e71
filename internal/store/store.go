// Package store provides quote history persistence.
package store

import (
	"context"

	"options-dashboard/internal/models"
)

// QuoteStore defines the interface for quote lookup history.
type QuoteStore interface {
	// SaveQuote records a lookup and returns its ID.
	SaveQuote(ctx context.Context, q models.Quote, fallback bool) (int64, error)
	// RecentQuotes returns lookups newest first.
	RecentQuotes(ctx context.Context, filter QuoteFilter) ([]models.QuoteRecord, error)
	// LastQuote returns the newest non-fallback lookup for ticker.
	LastQuote(ctx context.Context, ticker string) (*models.QuoteRecord, error)

	Close() error
}

// QuoteFilter narrows a history query.
type QuoteFilter struct {
	Ticker          string
	Limit           int
	IncludeFallback bool
}

// DefaultHistoryLimit caps history queries without an explicit limit.
const DefaultHistoryLimit = 20

// Nop is a QuoteStore that records nothing. It is used when the store is
// disabled in configuration.
type Nop struct{}

func (Nop) SaveQuote(context.Context, models.Quote, bool) (int64, error) { return 0, nil }

func (Nop) RecentQuotes(context.Context, QuoteFilter) ([]models.QuoteRecord, error) {
	return nil, nil
}

func (Nop) LastQuote(context.Context, string) (*models.QuoteRecord, error) { return nil, nil }

func (Nop) Close() error { return nil }
