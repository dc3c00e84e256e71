package payoff

import (
	"math"

	apperrors "options-dashboard/internal/errors"
)

// DefaultMaxSamples bounds the size of a single curve.
const DefaultMaxSamples = 1_000_000

// Engine computes curves with a fixed grid and contract size. The web
// dashboard and the CLI build one from the same configuration.
type Engine struct {
	Sweep             SweepConfig
	SharesPerContract int
	MaxSamples        int
}

// NewEngine creates an engine with the default grid.
func NewEngine(sharesPerContract int) Engine {
	return Engine{
		Sweep:             DefaultSweepConfig(),
		SharesPerContract: sharesPerContract,
		MaxSamples:        DefaultMaxSamples,
	}
}

// Request is one curve computation as requested by a caller.
type Request struct {
	Kind      Kind
	Params    Params
	Contracts int
}

// Curve validates req and computes its curve.
func (e Engine) Curve(req Request) (Curve, error) {
	inputs := []struct {
		field string
		v     float64
	}{
		{"strike", req.Params.Strike},
		{"premium", req.Params.Premium},
		{"avg_price", req.Params.AvgPrice},
	}
	for _, in := range inputs {
		if math.IsNaN(in.v) || math.IsInf(in.v, 0) {
			return Curve{}, apperrors.NewValidationError(in.field, in.v, "must be a finite number")
		}
	}
	if req.Contracts < 0 {
		return Curve{}, apperrors.NewValidationError("contracts", req.Contracts, "must not be negative")
	}

	inst, err := NewInstrument(req.Kind, req.Params)
	if err != nil {
		return Curve{}, err
	}

	sweep := NewSweepWithConfig(inst.Strike(), e.Sweep)
	if limit := e.MaxSamples; limit > 0 && sweep.Len() > limit {
		return Curve{}, apperrors.NewValidationError("strike", req.Params.Strike, "sweep too large")
	}

	return ComputeWithSweep(inst, Position{Contracts: req.Contracts, SharesPerContract: e.SharesPerContract}, sweep), nil
}
