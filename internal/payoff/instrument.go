package payoff

import (
	"fmt"
	"strings"

	apperrors "options-dashboard/internal/errors"
)

// Kind identifies an instrument variant.
type Kind string

// Instrument kinds.
const (
	KindCall           Kind = "call"
	KindPut            Kind = "put"
	KindCoveredCall    Kind = "covered_call"
	KindCashCoveredPut Kind = "cash_covered_put"
)

// Kinds returns every instrument kind in display order.
func Kinds() []Kind {
	return []Kind{KindCall, KindCoveredCall, KindPut, KindCashCoveredPut}
}

// Label returns the display name of the kind.
func (k Kind) Label() string {
	switch k {
	case KindCall:
		return "Call"
	case KindPut:
		return "Put"
	case KindCoveredCall:
		return "Covered Call"
	case KindCashCoveredPut:
		return "Cash Covered Put"
	}
	return string(k)
}

// UsesAvgPrice reports whether the kind takes an average price paid input.
func (k Kind) UsesAvgPrice() bool {
	return k == KindCoveredCall
}

// ParseKind accepts a kind identifier or label in any case, with spaces or
// hyphens in place of underscores.
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, k := range Kinds() {
		if norm == string(k) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownInstrument, s)
}

// Instrument is a single option position whose profit at expiration depends
// only on the underlying price.
type Instrument interface {
	Kind() Kind
	Strike() float64
	// Profit returns the per-share profit at underlying price x.
	Profit(x float64) float64
	// ReturnBasis returns the normaliser of the return ratio. ok is false
	// when the instrument defines no return.
	ReturnBasis() (basis float64, ok bool)
}

// Params carries the raw inputs for any instrument. Kinds ignore the fields
// they do not use.
type Params struct {
	Strike   float64
	Premium  float64
	AvgPrice float64
}

// NewInstrument builds the variant for kind from params.
func NewInstrument(kind Kind, p Params) (Instrument, error) {
	switch kind {
	case KindCall:
		return Call{StrikePrice: p.Strike, Premium: p.Premium}, nil
	case KindPut:
		return Put{StrikePrice: p.Strike, Premium: p.Premium}, nil
	case KindCoveredCall:
		return CoveredCall{StrikePrice: p.Strike, Premium: p.Premium, AvgPrice: p.AvgPrice}, nil
	case KindCashCoveredPut:
		return CashCoveredPut{StrikePrice: p.Strike, Premium: p.Premium}, nil
	}
	return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownInstrument, string(kind))
}

// Call is a long call.
type Call struct {
	StrikePrice float64
	Premium     float64
}

func (c Call) Kind() Kind      { return KindCall }
func (c Call) Strike() float64 { return c.StrikePrice }

func (c Call) Profit(x float64) float64 {
	return max(x-c.StrikePrice, 0) - c.Premium
}

func (c Call) ReturnBasis() (float64, bool) { return c.Premium, true }

// Put is a long put.
type Put struct {
	StrikePrice float64
	Premium     float64
}

func (p Put) Kind() Kind      { return KindPut }
func (p Put) Strike() float64 { return p.StrikePrice }

func (p Put) Profit(x float64) float64 {
	return max(p.StrikePrice-x, 0) - p.Premium
}

func (p Put) ReturnBasis() (float64, bool) { return p.StrikePrice, true }

// CoveredCall is stock bought at AvgPrice with a call written against it.
// Upside is capped at the strike.
type CoveredCall struct {
	StrikePrice float64
	Premium     float64
	AvgPrice    float64
}

func (c CoveredCall) Kind() Kind      { return KindCoveredCall }
func (c CoveredCall) Strike() float64 { return c.StrikePrice }

func (c CoveredCall) Profit(x float64) float64 {
	return min(c.StrikePrice, x) - c.AvgPrice + c.Premium
}

func (c CoveredCall) ReturnBasis() (float64, bool) { return c.AvgPrice + c.StrikePrice, true }

// CashCoveredPut is a put written against cash held to buy the underlying.
// It has no return ratio.
type CashCoveredPut struct {
	StrikePrice float64
	Premium     float64
}

func (p CashCoveredPut) Kind() Kind      { return KindCashCoveredPut }
func (p CashCoveredPut) Strike() float64 { return p.StrikePrice }

func (p CashCoveredPut) Profit(x float64) float64 {
	return max(p.StrikePrice-x, 0) - p.Premium
}

func (p CashCoveredPut) ReturnBasis() (float64, bool) { return 0, false }
