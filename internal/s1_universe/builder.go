package s1_universe

import (
	"fmt"

	"github.com/wonny/haugen/internal/contracts"
	"github.com/wonny/haugen/pkg/logger"
)

// Config holds liquidity filter thresholds (inclusive minimums)
type Config struct {
	MinPrice     float64 `yaml:"min_price" json:"min_price"`           // 5.0
	MinMarketCap float64 `yaml:"min_market_cap" json:"min_market_cap"` // 300,000,000
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		MinPrice:     5.0,
		MinMarketCap: 300_000_000,
	}
}

// Result is the filter output with per-ticker exclusion reasons
type Result struct {
	Scores   contracts.ValueMap
	Excluded map[string]string // ticker → reason
}

// Filter removes tickers below the price and market-cap floors
type Filter struct {
	config Config
	logger *logger.Logger
}

// NewFilter creates a new liquidity filter
func NewFilter(config Config, logger *logger.Logger) *Filter {
	return &Filter{
		config: config,
		logger: logger,
	}
}

// Apply keeps the scores of tickers present in all three maps whose price
// and market cap meet the minimums. Scores pass through unmodified.
// ⭐ SSOT: 유동성 필터는 여기서만
func (f *Filter) Apply(scores, prices, marketCaps contracts.ValueMap) Result {
	res := Result{
		Scores:   make(contracts.ValueMap),
		Excluded: make(map[string]string),
	}

	for _, t := range contracts.Intersect(scores, prices, marketCaps) {
		if reason := f.checkExclusion(prices[t], marketCaps[t]); reason != "" {
			res.Excluded[t] = reason
			continue
		}
		res.Scores[t] = scores[t]
	}

	f.logger.WithFields(map[string]interface{}{
		"scores":   len(scores),
		"kept":     len(res.Scores),
		"excluded": len(res.Excluded),
	}).Info("Liquidity filter applied")

	return res
}

// checkExclusion returns the reason a ticker fails, or "" when it passes
func (f *Filter) checkExclusion(price, marketCap float64) string {
	// 1. 가격 미달
	if price < f.config.MinPrice {
		return fmt.Sprintf("price below minimum (%.2f)", price)
	}

	// 2. 시가총액 미달
	if marketCap < f.config.MinMarketCap {
		return fmt.Sprintf("market cap below minimum (%.0f)", marketCap)
	}

	return "" // 통과
}
