package payoff

// Position sizes a curve. SharesPerContract defaults to 1 when unset, which
// makes TotalProfit = Profit * Contracts.
type Position struct {
	Contracts         int
	SharesPerContract int
}

// Multiplier returns the constant factor applied to Profit to get TotalProfit.
func (p Position) Multiplier() float64 {
	shares := p.SharesPerContract
	if shares <= 0 {
		shares = 1
	}
	return float64(p.Contracts) * float64(shares)
}

// Sample is one point of a payoff curve.
type Sample struct {
	StockPrice  float64  `json:"stock_price"`
	Profit      float64  `json:"profit"`
	TotalProfit float64  `json:"total_profit"`
	Return      *float64 `json:"return,omitempty"`
}

// Curve is the payoff of one instrument over a price sweep.
type Curve struct {
	Kind       Kind     `json:"kind"`
	Strike     float64  `json:"strike"`
	Multiplier float64  `json:"multiplier"`
	Samples    []Sample `json:"samples"`
}

// Compute sweeps inst over the default grid for its strike.
func Compute(inst Instrument, pos Position) Curve {
	return ComputeWithSweep(inst, pos, NewSweep(inst.Strike()))
}

// ComputeWithSweep evaluates inst at every price of sweep. Return is left nil
// when the instrument has no return basis or the basis is zero.
func ComputeWithSweep(inst Instrument, pos Position, sweep Sweep) Curve {
	factor := pos.Multiplier()
	basis, hasReturn := inst.ReturnBasis()
	if basis == 0 {
		hasReturn = false
	}

	samples := make([]Sample, 0, min(sweep.Len(), DefaultMaxSamples))
	for x := range sweep.Prices() {
		profit := inst.Profit(x)
		s := Sample{
			StockPrice:  x,
			Profit:      profit,
			TotalProfit: profit * factor,
		}
		if hasReturn {
			r := profit / basis
			s.Return = &r
		}
		samples = append(samples, s)
	}

	return Curve{
		Kind:       inst.Kind(),
		Strike:     inst.Strike(),
		Multiplier: factor,
		Samples:    samples,
	}
}

// At returns the sample whose price is closest to x. ok is false for an
// empty curve.
func (c Curve) At(x float64) (Sample, bool) {
	if len(c.Samples) == 0 {
		return Sample{}, false
	}
	lo, hi := 0, len(c.Samples)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if c.Samples[mid].StockPrice < x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo > 0 && x-c.Samples[lo-1].StockPrice < c.Samples[lo].StockPrice-x {
		lo--
	}
	return c.Samples[lo], true
}

// Every returns every nth sample plus the last one, for compact tables.
func (c Curve) Every(n int) []Sample {
	if n <= 1 || len(c.Samples) == 0 {
		return c.Samples
	}
	out := make([]Sample, 0, len(c.Samples)/n+1)
	for i := 0; i < len(c.Samples); i += n {
		out = append(out, c.Samples[i])
	}
	if last := len(c.Samples) - 1; last%n != 0 {
		out = append(out, c.Samples[last])
	}
	return out
}
