package payoff

// Summary describes the extremes of a curve over its sweep.
type Summary struct {
	Samples     int       `json:"samples"`
	MaxProfit   float64   `json:"max_profit"`
	MaxProfitAt float64   `json:"max_profit_at"`
	MaxLoss     float64   `json:"max_loss"` // lowest profit on the curve, may be positive
	MaxLossAt   float64   `json:"max_loss_at"`
	Breakevens  []float64 `json:"breakevens"`
}

// Summary computes profit extremes and the prices where profit crosses zero.
// Crossings between samples are linearly interpolated.
func (c Curve) Summary() Summary {
	sum := Summary{Samples: len(c.Samples), Breakevens: []float64{}}
	if len(c.Samples) == 0 {
		return sum
	}

	first := c.Samples[0]
	sum.MaxProfit, sum.MaxProfitAt = first.Profit, first.StockPrice
	sum.MaxLoss, sum.MaxLossAt = first.Profit, first.StockPrice
	if first.Profit == 0 {
		sum.Breakevens = append(sum.Breakevens, first.StockPrice)
	}

	for i := 1; i < len(c.Samples); i++ {
		prev, cur := c.Samples[i-1], c.Samples[i]
		if cur.Profit > sum.MaxProfit {
			sum.MaxProfit, sum.MaxProfitAt = cur.Profit, cur.StockPrice
		}
		if cur.Profit < sum.MaxLoss {
			sum.MaxLoss, sum.MaxLossAt = cur.Profit, cur.StockPrice
		}

		switch {
		case cur.Profit == 0 && prev.Profit != 0:
			sum.Breakevens = append(sum.Breakevens, cur.StockPrice)
		case (prev.Profit < 0 && cur.Profit > 0) || (prev.Profit > 0 && cur.Profit < 0):
			t := -prev.Profit / (cur.Profit - prev.Profit)
			sum.Breakevens = append(sum.Breakevens, prev.StockPrice+t*(cur.StockPrice-prev.StockPrice))
		}
	}

	return sum
}

// ChartBounds are the axis ranges for plotting a curve.
type ChartBounds struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// ChartBounds spans the sweep on x and pads profit by one on y. The y range
// never starts above -1.
func (c Curve) ChartBounds() ChartBounds {
	if len(c.Samples) == 0 {
		return ChartBounds{YMin: -1, YMax: 1}
	}
	sum := c.Summary()
	yMin := sum.MaxLoss - 1
	if yMin > 0 {
		yMin = -1
	}
	return ChartBounds{
		XMin: c.Samples[0].StockPrice,
		XMax: c.Samples[len(c.Samples)-1].StockPrice,
		YMin: yMin,
		YMax: sum.MaxProfit + 1,
	}
}
