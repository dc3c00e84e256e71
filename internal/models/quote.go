// Package models provides domain models shared across the dashboard.
package models

import (
	"math"
	"time"
)

// Quote is the latest known price of a ticker together with its display name.
type Quote struct {
	Ticker    string    `json:"ticker"`
	Name      string    `json:"name"`
	LastPrice float64   `json:"price"`
	AsOf      time.Time `json:"as_of"`
}

// DisplayName returns the company name, or the ticker when no name is known.
func (q Quote) DisplayName() string {
	if q.Name != "" {
		return q.Name
	}
	return q.Ticker
}

// SuggestedStrike rounds the last price up to the next half dollar.
func (q Quote) SuggestedStrike() float64 {
	return SuggestStrike(q.LastPrice)
}

// SuggestStrike rounds price up to the next multiple of 0.5.
func SuggestStrike(price float64) float64 {
	return math.Ceil(price*2) / 2
}

// QuoteRecord is a stored quote lookup.
type QuoteRecord struct {
	ID        int64     `json:"id"`
	Quote     Quote     `json:"quote"`
	Fallback  bool      `json:"fallback"` // lookup failed and the zero price was used
	CreatedAt time.Time `json:"created_at"`
}
