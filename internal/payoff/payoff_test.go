package payoff

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "options-dashboard/internal/errors"
)

func mustSample(t *testing.T, c Curve, x float64) Sample {
	t.Helper()
	s, ok := c.At(x)
	if !ok {
		t.Fatalf("empty curve")
	}
	if math.Abs(s.StockPrice-x) > 1e-9 {
		t.Fatalf("no sample at %v (closest %v)", x, s.StockPrice)
	}
	return s
}

func TestProperty_CallPayoff(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("call loses the premium at or below the strike", prop.ForAll(
		func(strike, premium, below float64) bool {
			x := strike - below
			return Call{StrikePrice: strike, Premium: premium}.Profit(x) == -premium
		},
		gen.Float64Range(0, 1000),
		gen.Float64Range(0, 50),
		gen.Float64Range(0, 1000),
	))

	properties.Property("call earns intrinsic minus premium above the strike", prop.ForAll(
		func(strike, premium, above float64) bool {
			x := strike + above
			if x <= strike {
				return true
			}
			return Call{StrikePrice: strike, Premium: premium}.Profit(x) == x-strike-premium
		},
		gen.Float64Range(0, 1000),
		gen.Float64Range(0, 50),
		gen.Float64Range(0.001, 1000),
	))

	properties.Property("call is continuous at the strike", prop.ForAll(
		func(strike, premium float64) bool {
			c := Call{StrikePrice: strike, Premium: premium}
			eps := 1e-9
			return math.Abs(c.Profit(strike+eps)-c.Profit(strike)) < 1e-6 &&
				math.Abs(c.Profit(strike-eps)-c.Profit(strike)) < 1e-6
		},
		gen.Float64Range(0, 1000),
		gen.Float64Range(0, 50),
	))

	properties.TestingRun(t)
}

func TestProperty_PutPayoff(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("put loses the premium at or above the strike", prop.ForAll(
		func(strike, premium, above float64) bool {
			x := strike + above
			return Put{StrikePrice: strike, Premium: premium}.Profit(x) == -premium
		},
		gen.Float64Range(0, 1000),
		gen.Float64Range(0, 50),
		gen.Float64Range(0, 1000),
	))

	properties.Property("put earns strike minus price minus premium below the strike", prop.ForAll(
		func(strike, premium, below float64) bool {
			x := strike - below
			if x >= strike {
				return true
			}
			return Put{StrikePrice: strike, Premium: premium}.Profit(x) == strike-x-premium
		},
		gen.Float64Range(0, 1000),
		gen.Float64Range(0, 50),
		gen.Float64Range(0.001, 1000),
	))

	properties.Property("cash covered put has the put profit and no return", prop.ForAll(
		func(strike, premium, x float64) bool {
			ccp := CashCoveredPut{StrikePrice: strike, Premium: premium}
			_, ok := ccp.ReturnBasis()
			return !ok && ccp.Profit(x) == (Put{StrikePrice: strike, Premium: premium}).Profit(x)
		},
		gen.Float64Range(0, 1000),
		gen.Float64Range(0, 50),
		gen.Float64Range(0, 1100),
	))

	properties.TestingRun(t)
}

func TestProperty_CoveredCallPayoff(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("covered call rises below the strike and is flat above it", prop.ForAll(
		func(strike, premium, avg float64) bool {
			c := Compute(CoveredCall{StrikePrice: strike, Premium: premium, AvgPrice: avg}, Position{Contracts: 1})
			for i, s := range c.Samples {
				if i > 0 && s.StockPrice < strike && s.Profit < c.Samples[i-1].Profit {
					t.Logf("decreasing below strike at %v", s.StockPrice)
					return false
				}
				if s.StockPrice >= strike && s.Profit != strike-avg+premium {
					t.Logf("not flat at %v: %v", s.StockPrice, s.Profit)
					return false
				}
			}
			return true
		},
		gen.Float64Range(0, 150),
		gen.Float64Range(0, 20),
		gen.Float64Range(0, 150),
	))

	properties.TestingRun(t)
}

func TestProperty_TotalProfitScaling(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("total profit is profit times contracts", prop.ForAll(
		func(kindIdx int, strike, premium, avg float64, contracts int) bool {
			kind := Kinds()[kindIdx]
			inst, err := NewInstrument(kind, Params{Strike: strike, Premium: premium, AvgPrice: avg})
			if err != nil {
				return false
			}
			c := Compute(inst, Position{Contracts: contracts})
			for _, s := range c.Samples {
				if s.TotalProfit != s.Profit*float64(contracts) {
					t.Logf("%s at %v: total %v, profit %v x %d", kind, s.StockPrice, s.TotalProfit, s.Profit, contracts)
					return false
				}
			}
			return true
		},
		gen.IntRange(0, len(Kinds())-1),
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 10),
		gen.Float64Range(0, 100),
		gen.IntRange(0, 50),
	))

	properties.Property("shares per contract scales every sample by one factor", prop.ForAll(
		func(strike, premium float64, contracts, shares int) bool {
			pos := Position{Contracts: contracts, SharesPerContract: shares}
			factor := float64(contracts) * float64(shares)
			for _, s := range Compute(Call{StrikePrice: strike, Premium: premium}, pos).Samples {
				if s.TotalProfit != s.Profit*factor {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 10),
		gen.IntRange(0, 20),
		gen.IntRange(1, 200),
	))

	properties.TestingRun(t)
}

func TestCallScenario(t *testing.T) {
	c := Compute(Call{StrikePrice: 100, Premium: 2}, Position{Contracts: 1})

	if got := mustSample(t, c, 100).Profit; got != -2 {
		t.Errorf("profit at 100 = %v, want -2", got)
	}
	s := mustSample(t, c, 110)
	if s.Profit != 8 {
		t.Errorf("profit at 110 = %v, want 8", s.Profit)
	}
	if s.TotalProfit != 8 {
		t.Errorf("total profit at 110 = %v, want 8", s.TotalProfit)
	}
	if s.Return == nil || *s.Return != 4 {
		t.Errorf("return at 110 = %v, want 4", s.Return)
	}
	if len(c.Samples) != 12000 {
		t.Errorf("samples = %d, want 12000", len(c.Samples))
	}
}

func TestPutScenario(t *testing.T) {
	c := Compute(Put{StrikePrice: 50, Premium: 1.5}, Position{Contracts: 2})

	s := mustSample(t, c, 40)
	if s.Profit != 8.5 {
		t.Errorf("profit at 40 = %v, want 8.5", s.Profit)
	}
	if s.TotalProfit != 17.0 {
		t.Errorf("total profit at 40 = %v, want 17", s.TotalProfit)
	}
	if s.Return == nil || *s.Return != 8.5/50 {
		t.Errorf("return at 40 = %v, want %v", s.Return, 8.5/50)
	}
}

func TestZeroStrikeScenario(t *testing.T) {
	c := Compute(Call{StrikePrice: 0, Premium: 3}, Position{Contracts: 1})

	if first := c.Samples[0]; first.StockPrice != 0 || first.Return == nil || *first.Return != -1.0 {
		t.Errorf("first sample = %+v, want return -1 at 0", first)
	}
	if last := c.Samples[len(c.Samples)-1].StockPrice; last >= 20 {
		t.Errorf("last price %v should be below 20", last)
	}
}

func TestReturnAbsent(t *testing.T) {
	tests := []struct {
		name string
		inst Instrument
	}{
		{"call with zero premium", Call{StrikePrice: 10, Premium: 0}},
		{"put with zero strike", Put{StrikePrice: 0, Premium: 1}},
		{"covered call with zero basis", CoveredCall{StrikePrice: 0, AvgPrice: 0, Premium: 1}},
		{"cash covered put", CashCoveredPut{StrikePrice: 10, Premium: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compute(tt.inst, Position{Contracts: 1})
			for _, s := range c.Samples {
				if s.Return != nil {
					t.Fatalf("return at %v = %v, want nil", s.StockPrice, *s.Return)
				}
			}
			// Absent returns must never break JSON encoding.
			if _, err := json.Marshal(c); err != nil {
				t.Fatalf("marshal: %v", err)
			}
		})
	}
}

func TestCoveredCallReturn(t *testing.T) {
	c := Compute(CoveredCall{StrikePrice: 100, Premium: 2, AvgPrice: 95}, Position{Contracts: 1})

	s := mustSample(t, c, 90)
	if s.Profit != -3 {
		t.Errorf("profit at 90 = %v, want -3", s.Profit)
	}
	if s.Return == nil || *s.Return != -3.0/195 {
		t.Errorf("return at 90 = %v, want %v", s.Return, -3.0/195)
	}
	if got := mustSample(t, c, 115).Profit; got != 7 {
		t.Errorf("profit at 115 = %v, want 7 (capped)", got)
	}
}

// The written call caps the stock at the strike: above it profit stays at
// strike - avg + premium rather than rising with the price.
func TestCoveredCallCappedAboveStrike(t *testing.T) {
	cc := CoveredCall{StrikePrice: 100, Premium: 2, AvgPrice: 95}
	tests := []struct {
		x    float64
		want float64
	}{
		{0, -93},
		{50, -43},
		{95, 2},
		{100, 7},
		{115, 7},
		{119.99, 7},
		{1000, 7},
	}
	for _, tt := range tests {
		if got := cc.Profit(tt.x); got != tt.want {
			t.Errorf("Profit(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestNaNPropagates(t *testing.T) {
	c := Call{StrikePrice: 10, Premium: math.NaN()}
	if !math.IsNaN(c.Profit(12)) {
		t.Error("NaN premium should give NaN profit")
	}
}

func TestNewInstrument(t *testing.T) {
	p := Params{Strike: 100, Premium: 2, AvgPrice: 90}
	for _, kind := range Kinds() {
		inst, err := NewInstrument(kind, p)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if inst.Kind() != kind || inst.Strike() != 100 {
			t.Errorf("%s: got kind %s strike %v", kind, inst.Kind(), inst.Strike())
		}
	}

	if _, err := NewInstrument("straddle", p); !errors.Is(err, apperrors.ErrUnknownInstrument) {
		t.Errorf("expected ErrUnknownInstrument, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"call", KindCall},
		{"Call", KindCall},
		{"Covered Call", KindCoveredCall},
		{"covered-call", KindCoveredCall},
		{" put ", KindPut},
		{"Cash Covered Put", KindCashCoveredPut},
		{"cash_covered_put", KindCashCoveredPut},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseKind(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseKind("iron condor"); !errors.Is(err, apperrors.ErrUnknownInstrument) {
		t.Errorf("expected ErrUnknownInstrument, got %v", err)
	}
}

func TestKindLabels(t *testing.T) {
	want := map[Kind]string{
		KindCall:           "Call",
		KindPut:            "Put",
		KindCoveredCall:    "Covered Call",
		KindCashCoveredPut: "Cash Covered Put",
	}
	for k, label := range want {
		if k.Label() != label {
			t.Errorf("%s.Label() = %q, want %q", k, k.Label(), label)
		}
	}
	if !KindCoveredCall.UsesAvgPrice() || KindCall.UsesAvgPrice() {
		t.Error("only covered call uses the average price")
	}
}
