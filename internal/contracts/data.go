package contracts

import (
	"time"
)

// Cell is one reported statement value; Present=false means not reported
type Cell struct {
	Value   float64
	Present bool
}

// StatementSeries is a normalized per-ticker statement time series
// ⭐ SSOT: 재무제표 정규화 결과 (collaborator → S2)
//
// Periods keep the column order found in the file; consumers must not
// assume they are ascending.
type StatementSeries struct {
	Ticker  string
	Periods []Month
	Rows    map[string][]Cell // metric name → one cell per period
}

// Lookup returns the first candidate row present in the series.
// Candidates are tried in order; the first match wins.
func (s *StatementSeries) Lookup(candidates ...string) (string, []Cell, bool) {
	for _, name := range candidates {
		if row, ok := s.Rows[name]; ok {
			return name, row, true
		}
	}
	return "", nil, false
}

// PriceSample is one daily OHLCV row
type PriceSample struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	AdjClose float64
}

// PriceSeries holds the daily samples of one ticker
type PriceSeries struct {
	Ticker  string
	Samples []PriceSample
}

// MonthlySample is one month-end price snapshot
type MonthlySample struct {
	Date   time.Time
	Volume float64
	Price  float64
}

// MonthlySeries holds the month-end snapshots of one ticker
type MonthlySeries struct {
	Ticker  string
	Samples []MonthlySample
}

// FirstPrice returns the first sample (in file order) falling in month
func (s *MonthlySeries) FirstPrice(month Month) (float64, bool) {
	for _, sample := range s.Samples {
		if MonthOf(sample.Date) == month {
			return sample.Price, true
		}
	}
	return 0, false
}

// PriceByMonth indexes samples by month; a later sample in file order
// overrides an earlier one in the same month.
func (s *MonthlySeries) PriceByMonth() map[Month]float64 {
	idx := make(map[Month]float64, len(s.Samples))
	for _, sample := range s.Samples {
		idx[MonthOf(sample.Date)] = sample.Price
	}
	return idx
}
