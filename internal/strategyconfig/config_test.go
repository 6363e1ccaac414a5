package strategyconfig

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/haugen/internal/contracts"
)

const minimalYAML = `
meta:
  model_id: test_model
month: "2013-03"
inputs:
  tickers: data/tickers.txt
  daily_prices: data/prices
  monthly_samples: data/prices_ms
  statements:
    income_statement: data/is
    balance_sheet: data/bs
    cash_flow: data/cf
metrics:
  - {name: outstanding_shares, source: income_statement}
  - {name: net_income, source: income_statement, quarters: 4, aliases: ["|Net income"]}
  - {name: net_income_common, source: income_statement, quarters: 4}
  - {name: preferred_dividend, source: income_statement, quarters: 4, optional: true}
  - {name: total_assets, source: balance_sheet}
  - {name: total_liabilities, source: balance_sheet}
  - {name: total_equity, source: balance_sheet}
  - {name: intangible_assets, source: balance_sheet, optional: true}
  - {name: operating_cashflow, source: cash_flow, quarters: 4}
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "^GSPC", cfg.Benchmark.Ticker)
	assert.Equal(t, "^", cfg.Benchmark.Marker)
	assert.Equal(t, "data/derived", cfg.OutputDir)
	assert.Equal(t, []int{1, 2, 6, 12}, cfg.Signals.ExcessReturnLookbacks)
	assert.Equal(t, 12, cfg.Signals.VolumeMonths)
	assert.Equal(t, 5.0, cfg.Filter.MinPrice)
	assert.Equal(t, 3e8, cfg.Filter.MinMarketCap)
	assert.Equal(t, []int{1, 2, 3, 4, 6, 12}, cfg.Backtest.Horizons)
	assert.Equal(t, 10, cfg.Backtest.Buckets)
	assert.Equal(t, "0 0 6 2 * *", cfg.Schedule.Cron)

	// metric 항목에도 기본값 적용
	m, ok := cfg.Metric("outstanding_shares")
	require.True(t, ok)
	assert.Equal(t, 1, m.Quarters)

	assert.Equal(t, contracts.MustParseMonth("2013-03"), cfg.TargetMonth())
	assert.True(t, cfg.MaxMonth().IsZero())
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + "\nunknown_field: 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown_field")
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		field   string
		message string
	}{
		{
			name:   "bad month",
			mutate: func(s string) string { return strings.Replace(s, `"2013-03"`, `"2013-13"`, 1) },
			field:  "month",
		},
		{
			name:    "max date before month",
			mutate:  func(s string) string { return s + "backtest:\n  max_date: \"2012-12\"\n" },
			field:   "backtest.max_date",
			message: "must not be before month",
		},
		{
			name:    "benchmark without marker",
			mutate:  func(s string) string { return s + "benchmark:\n  ticker: GSPC\n" },
			field:   "benchmark.ticker",
			message: "marker",
		},
		{
			name: "unknown source",
			mutate: func(s string) string {
				return strings.Replace(s, "{name: total_assets, source: balance_sheet}", "{name: total_assets, source: ledger}", 1)
			},
			field:   "metrics[4].source",
			message: "ledger",
		},
		{
			name: "duplicate metric",
			mutate: func(s string) string {
				return strings.Replace(s, "{name: intangible_assets,", "{name: total_equity,", 1)
			},
			field:   "metrics[7]",
			message: "duplicate",
		},
		{
			name: "missing required metric",
			mutate: func(s string) string {
				return strings.Replace(s, "  - {name: total_equity, source: balance_sheet}\n", "", 1)
			},
			field:   "metrics",
			message: "total_equity",
		},
		{
			name: "required metric marked optional",
			mutate: func(s string) string {
				return strings.Replace(s, "{name: total_equity, source: balance_sheet}", "{name: total_equity, source: balance_sheet, optional: true}", 1)
			},
			field:   "metrics",
			message: "cannot be optional",
		},
		{
			name:    "exception for unknown metric",
			mutate:  func(s string) string { return s + "exceptions:\n  metrics:\n    ebitda: [AAA]\n" },
			field:   "exceptions.metrics",
			message: "ebitda",
		},
		{
			name:    "lookback without factor",
			mutate:  func(s string) string { return s + "signals:\n  excess_return_lookbacks: [1, 2, 3, 6, 12]\n" },
			field:   "signals.excess_return_lookbacks",
			message: "3-month",
		},
		{
			name:    "missing er12",
			mutate:  func(s string) string { return s + "signals:\n  excess_return_lookbacks: [1, 2, 6]\n" },
			field:   "signals.excess_return_lookbacks",
			message: "er12",
		},
		{
			name:   "volume months out of range",
			mutate: func(s string) string { return s + "signals:\n  volume_months: 40\n" },
			field:  "Signals.VolumeMonths",
		},
		{
			name: "quarters out of range",
			mutate: func(s string) string {
				return strings.Replace(s, "source: cash_flow, quarters: 4", "source: cash_flow, quarters: 9", 1)
			},
			field: "Metrics[8].Quarters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.mutate(minimalYAML)))
			require.Error(t, err)

			var verr ValidationError
			require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			if tt.message != "" {
				assert.Contains(t, verr.Message, tt.message)
			}
		})
	}
}

func TestConfig_ForwardMonths(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML + "backtest:\n  max_date: \"2013-07\"\n"))
	require.NoError(t, err)

	// 2013-03 + {1,2,3,4} <= 2013-07; 6 and 12 fall beyond max_date
	assert.Equal(t, []int{1, 2, 3, 4}, cfg.ForwardMonths())

	// a later training month leaves fewer horizons
	assert.Equal(t, []int{1, 2}, cfg.ForwardMonthsFrom(contracts.MustParseMonth("2013-05")))
	assert.Empty(t, cfg.ForwardMonthsFrom(contracts.MustParseMonth("2013-07")))

	cfg.Backtest.MaxDate = ""
	assert.Equal(t, []int{1, 2, 3, 4, 6, 12}, cfg.ForwardMonths())
}

func TestConfig_Conversions(t *testing.T) {
	yaml := minimalYAML + `exceptions:
  skip: [ZZZ]
  metrics:
    net_income: [AAA]
filter:
  min_price: 1
  min_market_cap: 1000
backtest:
  top_n: [3]
  buckets: 4
`
	cfg, err := Parse([]byte(yaml))
	require.NoError(t, err)

	specs := cfg.MetricSpecs()
	require.Len(t, specs, 9)
	assert.Equal(t, "net_income", specs[1].Name)
	assert.Equal(t, []string{"net_income", "|Net income"}, specs[1].Candidates())
	assert.True(t, specs[3].Optional)

	ex := cfg.ExceptionTable()
	assert.True(t, ex.Skips("net_income", "AAA"))
	assert.False(t, ex.Skips("total_assets", "AAA"))
	assert.True(t, ex.Skips("total_assets", "ZZZ"))

	fc := cfg.FilterConfig()
	assert.Equal(t, 1.0, fc.MinPrice)
	assert.Equal(t, 1000.0, fc.MinMarketCap)

	ac := cfg.AnalyzerConfig()
	assert.Equal(t, 4, ac.Buckets)
	assert.Equal(t, []int{3}, ac.TopN)
}

func TestHash_Deterministic(t *testing.T) {
	a, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)
	b, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	assert.Len(t, ha, 64)
	assert.Equal(t, ha, hb)

	b.Filter.MinPrice = 6
	hc, err := Hash(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func TestLoad_ModelFile(t *testing.T) {
	path := "../../config/model/haugen.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("model config not found")
	}

	cfg, raw, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, "haugen_russell3000", cfg.Meta.ModelID)
	assert.Equal(t, []int{1, 2, 3, 4}, cfg.ForwardMonths())

	rev, ok := cfg.Metric("revenue")
	require.True(t, ok)
	assert.Equal(t, 4, rev.Quarters)
	assert.True(t, cfg.ExceptionTable().Skips("outstanding_shares", "NWSA"))
}
