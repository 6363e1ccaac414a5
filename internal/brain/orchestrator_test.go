package brain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/haugen/internal/audit"
	"github.com/wonny/haugen/internal/backtest"
	"github.com/wonny/haugen/internal/contracts"
	"github.com/wonny/haugen/internal/s0_data"
	"github.com/wonny/haugen/internal/s1_universe"
	"github.com/wonny/haugen/internal/s2_signals"
	"github.com/wonny/haugen/internal/selection"
	"github.com/wonny/haugen/pkg/logger"
	"github.com/wonny/haugen/pkg/metrics"
)

type fakeStatements map[string]*contracts.StatementSeries

func (f fakeStatements) Statement(_ context.Context, ticker string) (*contracts.StatementSeries, error) {
	s, ok := f[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contracts.ErrMissingFile, ticker)
	}
	return s, nil
}

type fakeSamples map[string]*contracts.MonthlySeries

func (f fakeSamples) MonthlySamples(_ context.Context, ticker string) (*contracts.MonthlySeries, error) {
	s, ok := f[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contracts.ErrMissingFile, ticker)
	}
	return s, nil
}

type fakePrices map[string]*contracts.PriceSeries

func (f fakePrices) DailyPrices(_ context.Context, ticker string) (*contracts.PriceSeries, error) {
	s, ok := f[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contracts.ErrMissingFile, ticker)
	}
	return s, nil
}

var trainMonth = contracts.MustParseMonth("2013-03")

// samples builds month-end snapshots from 2012-01 to 2013-06; price gives
// the value for a month
func samples(ticker string, price func(m contracts.Month) float64) *contracts.MonthlySeries {
	s := &contracts.MonthlySeries{Ticker: ticker}
	for m := contracts.MustParseMonth("2012-01"); !m.After(contracts.MustParseMonth("2013-06")); m = m.AddMonths(1) {
		s.Samples = append(s.Samples, contracts.MonthlySample{
			Date:   time.Date(m.Year, time.Month(m.Month), 28, 0, 0, 0, 0, time.UTC),
			Volume: 1000,
			Price:  price(m),
		})
	}
	return s
}

// statement has five quarterly periods ending 2012-12 with constant rows
func statement(ticker string, rows map[string]float64) *contracts.StatementSeries {
	s := &contracts.StatementSeries{
		Ticker: ticker,
		Periods: []contracts.Month{
			contracts.MustParseMonth("2011-12"),
			contracts.MustParseMonth("2012-03"),
			contracts.MustParseMonth("2012-06"),
			contracts.MustParseMonth("2012-09"),
			contracts.MustParseMonth("2012-12"),
		},
		Rows: make(map[string][]contracts.Cell),
	}
	for name, v := range rows {
		cells := make([]contracts.Cell, len(s.Periods))
		for i := range cells {
			cells[i] = contracts.Cell{Value: v, Present: true}
		}
		s.Rows[name] = cells
	}
	return s
}

func testSpecs() []s2_signals.MetricSpec {
	return []s2_signals.MetricSpec{
		{Name: MetricShares, Source: "income_statement", Quarters: 1},
		{Name: MetricNetIncome, Source: "income_statement", Quarters: 4},
		{Name: MetricNetIncomeCommon, Source: "income_statement", Quarters: 4},
		{Name: MetricPreferredDividend, Source: "income_statement", Quarters: 4, Optional: true},
		{Name: MetricTotalAssets, Source: "balance_sheet", Quarters: 1},
		{Name: MetricTotalLiabilities, Source: "balance_sheet", Quarters: 1},
		{Name: MetricTotalEquity, Source: "balance_sheet", Quarters: 1},
		{Name: MetricOperatingCashflow, Source: "cash_flow", Quarters: 4},
	}
}

type fixture struct {
	orchestrator *Orchestrator
	store        *s0_data.ValueMapStore
	auditRepo    *audit.Repository
	recorder     *metrics.Recorder
	config       RunConfig
}

func newFixture(t *testing.T, withBenchmark bool) *fixture {
	t.Helper()
	// CCC trades below the $5 floor and is filtered out
	return newFixtureWithPrices(t, withBenchmark, map[string]float64{"AAA": 10, "BBB": 20, "CCC": 3})
}

func newFixtureWithPrices(t *testing.T, withBenchmark bool, prices map[string]float64) *fixture {
	t.Helper()

	futures := map[string]float64{"AAA": 11, "BBB": 19, "CCC": 3}

	monthly := fakeSamples{}
	daily := fakePrices{}
	statements := fakeStatements{}
	for ticker, p := range prices {
		f := futures[ticker]
		monthly[ticker] = samples(ticker, func(m contracts.Month) float64 {
			if m.After(trainMonth) {
				return f
			}
			return p
		})
		daily[ticker] = &contracts.PriceSeries{Ticker: ticker, Samples: []contracts.PriceSample{
			{Date: time.Date(2013, 3, 15, 0, 0, 0, 0, time.UTC), Volume: 1000, AdjClose: p},
		}}
		statements[ticker] = statement(ticker, map[string]float64{
			MetricShares:            1e8,
			MetricNetIncome:         1e6,
			MetricNetIncomeCommon:   1e6,
			MetricTotalAssets:       5e9,
			MetricTotalLiabilities:  2e9,
			MetricTotalEquity:       3e9,
			MetricOperatingCashflow: 2e6,
		})
	}
	if withBenchmark {
		monthly["^GSPC"] = samples("^GSPC", func(m contracts.Month) float64 { return 1500 })
	}

	log := logger.Nop()
	builder := s2_signals.NewBuilder(
		map[string]contracts.StatementRepository{
			"income_statement": statements,
			"balance_sheet":    statements,
			"cash_flow":        statements,
		},
		daily,
		monthly,
		s2_signals.NewMetricExtractor(),
		s2_signals.NewVolumeCalculator(1),
		s2_signals.NewExcessReturnCalculator(s0_data.BenchmarkMarker),
		nil,
		s2_signals.NewBatchRunner(2, log),
		log,
	)

	root := t.TempDir()
	fx := &fixture{
		store:     s0_data.NewValueMapStore(root),
		auditRepo: audit.NewRepository(root),
		recorder:  metrics.New(),
	}
	fx.orchestrator = NewOrchestrator(
		builder,
		selection.NewScorer(selection.DefaultWeights(), log),
		s1_universe.NewFilter(s1_universe.DefaultConfig(), log),
		backtest.NewAnalyzer(backtest.DefaultConfig(), log),
		fx.store,
		fx.auditRepo,
		fx.recorder,
		log,
	)
	fx.config = RunConfig{
		Month:       trainMonth,
		Tickers:     []string{"AAA", "BBB", "CCC"},
		Benchmark:   "^GSPC",
		Metrics:     testSpecs(),
		Lookbacks:   []int{1, 2, 6, 12},
		Horizons:    []int{1},
		ExportExcel: true,
	}
	return fx
}

func TestOrchestrator_Run(t *testing.T) {
	fx := newFixture(t, true)
	ctx := context.Background()

	result, err := fx.orchestrator.Run(ctx, fx.config)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.NotEmpty(t, result.RunID)
	assert.Len(t, result.CompletedStages, 8)

	// price, tv, 8 metrics, 4 er, 5 ratios, scores, mc, filtered, 1 future price
	require.Len(t, result.Stages, 23)
	assert.Equal(t, NamePrice, result.Stages[0].Stage)
	assert.Equal(t, FuturePriceName(contracts.MustParseMonth("2013-04")), result.Stages[22].Stage)

	// the optional metric is reported by nobody
	pd := result.Stages[5]
	assert.Equal(t, MetricPreferredDividend, pd.Stage)
	assert.Equal(t, 0, pd.Succeeded)
	assert.Equal(t, 3, pd.SkipReasons["metric_not_found"])

	assert.Len(t, result.Scores, 3)
	assert.Equal(t, []string{"AAA", "BBB"}, result.Filtered.Tickers())

	// outputs are on disk
	price, err := fx.store.Load(ctx, trainMonth, NamePrice)
	require.NoError(t, err)
	assert.Equal(t, contracts.ValueMap{"AAA": 10, "BBB": 20, "CCC": 3}, price)

	mc, err := fx.store.Load(ctx, trainMonth, NameMarketCap)
	require.NoError(t, err)
	assert.Equal(t, 1e9, mc["AAA"])

	er1, err := fx.store.Load(ctx, trainMonth, string(contracts.FactorER1))
	require.NoError(t, err)
	assert.Equal(t, 0.0, er1["AAA"])

	roe, err := fx.store.Load(ctx, trainMonth, string(contracts.FactorROE))
	require.NoError(t, err)
	assert.InDelta(t, 4e6/3e9, roe["AAA"], 1e-6)

	// report and workbook
	report, err := fx.auditRepo.Load(trainMonth)
	require.NoError(t, err)
	assert.Equal(t, result.RunID, report.RunID)
	h, ok := report.Horizon(1)
	require.True(t, ok)
	assert.Equal(t, "2013-04", h.Future)
	assert.Equal(t, 2, h.Result.Tickers)
	assert.Equal(t, 1, h.Result.ActualUp)

	_, err = os.Stat(filepath.Join(fx.store.Root(), "2013-03", WorkbookFile))
	assert.NoError(t, err)

	n, err := testutil.GatherAndCount(fx.recorder.Registry(), "haugen_stage_tickers_processed_total")
	require.NoError(t, err)
	assert.Equal(t, 23, n)
}

func TestOrchestrator_Run_BenchmarkGap(t *testing.T) {
	fx := newFixture(t, false)

	result, err := fx.orchestrator.Run(context.Background(), fx.config)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrBenchmarkGap))
	assert.False(t, result.Success)
	assert.Equal(t, []string{"S0:Price", "S2:Volume", "S2:Metrics"}, result.CompletedStages)

	n, err := testutil.GatherAndCount(fx.recorder.Registry(), "haugen_stage_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = fx.auditRepo.Load(trainMonth)
	assert.True(t, errors.Is(err, contracts.ErrMissingFile))
}

func TestOrchestrator_Run_Cancelled(t *testing.T) {
	fx := newFixture(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := fx.orchestrator.Run(ctx, fx.config)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.CompletedStages)
}

func TestRatioFactors_MissingInput(t *testing.T) {
	in := FactorInputs{
		Price:         contracts.ValueMap{"A": 1},
		TradingVolume: contracts.ValueMap{"A": 1},
		Metrics:       map[string]contracts.ValueMap{MetricShares: {"A": 1}},
	}
	_, err := RatioFactors(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), MetricNetIncome)
}

func TestRatioFactors_Order(t *testing.T) {
	unit := contracts.ValueMap{"A": 1}
	in := FactorInputs{Price: unit, TradingVolume: unit, Metrics: map[string]contracts.ValueMap{}}
	for _, name := range requiredForFactors {
		in.Metrics[name] = unit
	}

	factors, err := RatioFactors(in)
	require.NoError(t, err)

	var names []contracts.FactorName
	for _, f := range factors {
		names = append(names, f.Name)
	}
	assert.Equal(t, []contracts.FactorName{
		contracts.FactorTV2MC, contracts.FactorE2P, contracts.FactorROE, contracts.FactorB2P, contracts.FactorCF2P,
	}, names)
	// b2p = (1 - 0 - 1) / 1 with intangibles absent
	assert.Equal(t, 0.0, factors[3].Values["A"])
}

func TestJoinSummary(t *testing.T) {
	s := joinSummary("e2p", contracts.ValueMap{"A": 1, "B": 2, "C": 3}, contracts.ValueMap{"A": 1}, time.Second)
	assert.Equal(t, 3, s.Processed)
	assert.Equal(t, 1, s.Succeeded)
	assert.Equal(t, 2, s.Skipped)
	assert.Equal(t, 2, s.SkipReasons["missing_input"])
}
