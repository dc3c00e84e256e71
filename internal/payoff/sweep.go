// Package payoff computes expiration payoff curves for single-leg option
// positions over a sweep of underlying prices.
package payoff

import (
	"iter"
	"math"

	"github.com/shopspring/decimal"
)

// Sweep defaults.
const (
	DefaultStep    = 0.01
	DefaultPadding = 20.0
)

// SweepConfig controls the price grid of a sweep.
type SweepConfig struct {
	Step    float64 // distance between consecutive prices
	Padding float64 // how far past the strike the sweep runs
}

// DefaultSweepConfig returns the 0.01 step, strike+20 grid used by the dashboard.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Step:    DefaultStep,
		Padding: DefaultPadding,
	}
}

// Sweep is a finite, restartable sequence of underlying prices starting at
// zero and stopping before strike+padding. Prices are accumulated as exact
// decimals so thousands of steps do not drift.
type Sweep struct {
	stop  decimal.Decimal
	step  decimal.Decimal
	empty bool
}

// NewSweep creates a sweep for the given strike with the default grid.
func NewSweep(strike float64) Sweep {
	return NewSweepWithConfig(strike, DefaultSweepConfig())
}

// NewSweepWithConfig creates a sweep for the given strike and grid.
// A non-positive or non-finite step falls back to DefaultStep. A non-finite
// upper bound yields an empty sweep.
func NewSweepWithConfig(strike float64, cfg SweepConfig) Sweep {
	if cfg.Step <= 0 || math.IsNaN(cfg.Step) || math.IsInf(cfg.Step, 0) {
		cfg.Step = DefaultStep
	}

	upper := strike + cfg.Padding
	if math.IsNaN(upper) || math.IsInf(upper, 0) {
		return Sweep{empty: true}
	}

	stop := decimal.NewFromFloat(strike).Add(decimal.NewFromFloat(cfg.Padding))
	return Sweep{
		stop:  stop,
		step:  decimal.NewFromFloat(cfg.Step),
		empty: !stop.IsPositive(),
	}
}

// Prices returns the sweep as a lazy sequence. Each range over the returned
// sequence starts again from 0.0.
func (s Sweep) Prices() iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if s.empty {
			return
		}
		for p := decimal.Zero; p.LessThan(s.stop); p = p.Add(s.step) {
			if !yield(p.InexactFloat64()) {
				return
			}
		}
	}
}

var maxLen = decimal.NewFromInt(math.MaxInt)

// Len returns the number of prices the sweep yields, ceil(stop/step). It
// saturates at math.MaxInt for sweeps too long to count in an int.
func (s Sweep) Len() int {
	if s.empty {
		return 0
	}
	n := s.stop.Div(s.step).Ceil()
	if n.GreaterThan(maxLen) {
		return math.MaxInt
	}
	return int(n.IntPart())
}
