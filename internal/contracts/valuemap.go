package contracts

import (
	"fmt"
	"math"
	"sort"
)

// ValueMap maps ticker → value
// ⭐ SSOT: 모든 단계 간 데이터 전달은 ValueMap으로만
//
// A ValueMap is owned by the stage that produced it; consumers treat it as
// read-only and joins always allocate a new map.
type ValueMap map[string]float64

// Get returns the value for a ticker
func (m ValueMap) Get(ticker string) (float64, bool) {
	v, ok := m[ticker]
	return v, ok
}

// Count returns the number of tickers
func (m ValueMap) Count() int {
	return len(m)
}

// Tickers returns the tickers in ascending order
func (m ValueMap) Tickers() []string {
	tickers := make([]string, 0, len(m))
	for t := range m {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// Clone returns an independent copy
func (m ValueMap) Clone() ValueMap {
	out := make(ValueMap, len(m))
	for t, v := range m {
		out[t] = v
	}
	return out
}

// Validate checks that every value is finite
func (m ValueMap) Validate() error {
	for _, t := range m.Tickers() {
		v := m[t]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &TickerError{Ticker: t, Err: fmt.Errorf("%w: %v", ErrNonFinite, v)}
		}
	}
	return nil
}

// Intersect returns the tickers present in every map, ascending.
// With no maps the result is empty.
func Intersect(maps ...ValueMap) []string {
	if len(maps) == 0 {
		return []string{}
	}

	// iterate the smallest map
	smallest := 0
	for i, m := range maps {
		if len(m) < len(maps[smallest]) {
			smallest = i
		}
	}

	tickers := make([]string, 0, len(maps[smallest]))
	for t := range maps[smallest] {
		inAll := true
		for _, m := range maps {
			if _, ok := m[t]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			tickers = append(tickers, t)
		}
	}
	sort.Strings(tickers)
	return tickers
}
