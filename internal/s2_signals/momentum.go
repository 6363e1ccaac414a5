package s2_signals

import (
	"fmt"
	"strings"

	"github.com/wonny/haugen/internal/contracts"
)

// Excess return parameters
const (
	PriceBonus = 0.01 // added to the base price so near-zero prices stay finite
	MinExcess  = -1.0
	MaxExcess  = 1.0
)

// ExcessReturnCalculator computes capped stock-minus-market returns
// ⭐ SSOT: 초과수익률 계산은 여기서만
type ExcessReturnCalculator struct {
	bonus  float64
	minCap float64
	maxCap float64
	marker string // benchmark ticker marker, e.g. "^"
}

// NewExcessReturnCalculator creates a calculator with the default caps
func NewExcessReturnCalculator(marker string) *ExcessReturnCalculator {
	return &ExcessReturnCalculator{
		bonus:  PriceBonus,
		minCap: MinExcess,
		maxCap: MaxExcess,
		marker: marker,
	}
}

// Compute returns clamp((sTo-sFrom)/(sFrom+b) - (mTo-mFrom)/(mFrom+b))
func (c *ExcessReturnCalculator) Compute(stockFrom, stockTo, marketFrom, marketTo float64) (float64, error) {
	for _, p := range []float64{stockFrom, stockTo, marketFrom, marketTo} {
		if p < 0 {
			return 0, fmt.Errorf("%w: %v", contracts.ErrNegativePrice, p)
		}
	}

	stockR := (stockTo - stockFrom) / (stockFrom + c.bonus)
	marketR := (marketTo - marketFrom) / (marketFrom + c.bonus)
	excess := stockR - marketR

	if excess > c.maxCap {
		return c.maxCap, nil
	}
	if excess < c.minCap {
		return c.minCap, nil
	}
	return excess, nil
}

// Window holds the benchmark prices of one lookback window
type Window struct {
	Target     contracts.Month
	Lookback   contracts.Month
	MarketFrom float64
	MarketTo   float64
	Months     int
}

// NewWindow resolves the benchmark prices for target and target-k.
// A gap in the benchmark is a contract violation.
func NewWindow(benchmark *contracts.MonthlySeries, target contracts.Month, k int) (Window, error) {
	if k < 1 {
		return Window{}, fmt.Errorf("lookback must be >= 1, got %d", k)
	}

	prices := benchmark.PriceByMonth()
	from := target.AddMonths(-k)

	to, ok := prices[target]
	if !ok {
		return Window{}, fmt.Errorf("%w: %s has no sample in %s", contracts.ErrBenchmarkGap, benchmark.Ticker, target)
	}
	base, ok := prices[from]
	if !ok {
		return Window{}, fmt.Errorf("%w: %s has no sample in %s", contracts.ErrBenchmarkGap, benchmark.Ticker, from)
	}

	return Window{
		Target:     target,
		Lookback:   from,
		MarketFrom: base,
		MarketTo:   to,
		Months:     k,
	}, nil
}

// CheckTicker rejects tickers that denote the benchmark
func (c *ExcessReturnCalculator) CheckTicker(ticker string) error {
	if c.marker != "" && strings.Contains(ticker, c.marker) {
		return fmt.Errorf("%w: %s", contracts.ErrBenchmarkTicker, ticker)
	}
	return nil
}

// Calculate returns the excess return of one stock over the window
func (c *ExcessReturnCalculator) Calculate(stock *contracts.MonthlySeries, w Window) (float64, error) {
	if err := c.CheckTicker(stock.Ticker); err != nil {
		return 0, err
	}

	prices := stock.PriceByMonth()
	to, ok := prices[w.Target]
	if !ok {
		return 0, fmt.Errorf("%w: %s", contracts.ErrPriceNotFound, w.Target)
	}
	from, ok := prices[w.Lookback]
	if !ok {
		return 0, fmt.Errorf("%w: %s", contracts.ErrPriceNotFound, w.Lookback)
	}

	return c.Compute(from, to, w.MarketFrom, w.MarketTo)
}
