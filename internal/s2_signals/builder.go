package s2_signals

import (
	"context"
	"fmt"

	"github.com/wonny/haugen/internal/contracts"
	"github.com/wonny/haugen/pkg/logger"
)

// SkipPolicy decides whether a ticker is excluded from a stage up front
type SkipPolicy interface {
	Skips(stage, ticker string) bool
}

// noSkips is the empty policy
type noSkips struct{}

func (noSkips) Skips(string, string) bool { return false }

// Builder runs the per-ticker extraction stages over the repositories
// ⭐ SSOT: 종목별 추출 단계 오케스트레이션은 여기서만
type Builder struct {
	statements map[string]contracts.StatementRepository // keyed by statement source
	prices     contracts.PriceRepository
	samples    contracts.SampleRepository

	metric *MetricExtractor
	volume *VolumeCalculator
	excess *ExcessReturnCalculator

	skips  SkipPolicy
	runner *BatchRunner
	logger *logger.Logger
}

// NewBuilder creates a new extraction builder
func NewBuilder(
	statements map[string]contracts.StatementRepository,
	prices contracts.PriceRepository,
	samples contracts.SampleRepository,
	metric *MetricExtractor,
	volume *VolumeCalculator,
	excess *ExcessReturnCalculator,
	skips SkipPolicy,
	runner *BatchRunner,
	logger *logger.Logger,
) *Builder {
	if skips == nil {
		skips = noSkips{}
	}
	return &Builder{
		statements: statements,
		prices:     prices,
		samples:    samples,
		metric:     metric,
		volume:     volume,
		excess:     excess,
		skips:      skips,
		runner:     runner,
		logger:     logger,
	}
}

// run wraps fn with the skip policy
func (b *Builder) run(ctx context.Context, stage string, tickers []string, fn TickerFunc) (contracts.ValueMap, contracts.StageSummary, error) {
	return b.runner.Run(ctx, stage, tickers, func(ctx context.Context, ticker string) (float64, error) {
		if b.skips.Skips(stage, ticker) {
			return 0, contracts.ErrSkippedTicker
		}
		return fn(ctx, ticker)
	})
}

// Metric extracts one statement metric for every ticker
func (b *Builder) Metric(ctx context.Context, tickers []string, spec MetricSpec, month contracts.Month) (contracts.ValueMap, contracts.StageSummary, error) {
	repo, ok := b.statements[spec.Source]
	if !ok {
		return nil, contracts.StageSummary{}, fmt.Errorf("metric %s: unknown statement source %q", spec.Name, spec.Source)
	}

	return b.run(ctx, spec.Name, tickers, func(ctx context.Context, ticker string) (float64, error) {
		series, err := repo.Statement(ctx, ticker)
		if err != nil {
			return 0, err
		}
		return b.metric.Extract(series, spec, month)
	})
}

// CurrentPrice extracts the month's price snapshot for every ticker
func (b *Builder) CurrentPrice(ctx context.Context, stage string, tickers []string, month contracts.Month) (contracts.ValueMap, contracts.StageSummary, error) {
	return b.run(ctx, stage, tickers, func(ctx context.Context, ticker string) (float64, error) {
		series, err := b.samples.MonthlySamples(ctx, ticker)
		if err != nil {
			return 0, err
		}
		return CurrentPrice(series, month)
	})
}

// TradingVolume aggregates trailing dollar volume for every ticker
func (b *Builder) TradingVolume(ctx context.Context, stage string, tickers []string, month contracts.Month) (contracts.ValueMap, contracts.StageSummary, error) {
	return b.run(ctx, stage, tickers, func(ctx context.Context, ticker string) (float64, error) {
		series, err := b.prices.DailyPrices(ctx, ticker)
		if err != nil {
			return 0, err
		}
		return b.volume.Calculate(series, month)
	})
}

// ExcessReturn computes the k-month excess return against the benchmark.
// The benchmark must carry both window months; otherwise nothing runs.
func (b *Builder) ExcessReturn(ctx context.Context, tickers []string, benchmark string, month contracts.Month, k int) (contracts.Factor, contracts.StageSummary, error) {
	name, ok := contracts.ExcessReturnFactor(k)
	if !ok {
		name = contracts.FactorName(fmt.Sprintf("er%d", k))
	}

	market, err := b.samples.MonthlySamples(ctx, benchmark)
	if err != nil {
		// the benchmark is assumed complete, so even a missing file is fatal
		return contracts.Factor{}, contracts.StageSummary{}, fmt.Errorf("%w: benchmark %s: %v", contracts.ErrBenchmarkGap, benchmark, err)
	}
	window, err := NewWindow(market, month, k)
	if err != nil {
		return contracts.Factor{}, contracts.StageSummary{}, err
	}

	b.logger.WithFields(map[string]interface{}{
		"benchmark": benchmark,
		"from":      window.Lookback.String(),
		"to":        window.Target.String(),
	}).Debug("Resolved benchmark window")

	values, summary, err := b.run(ctx, string(name), tickers, func(ctx context.Context, ticker string) (float64, error) {
		if err := b.excess.CheckTicker(ticker); err != nil {
			return 0, err
		}
		series, err := b.samples.MonthlySamples(ctx, ticker)
		if err != nil {
			return 0, err
		}
		return b.excess.Calculate(series, window)
	})
	if err != nil {
		return contracts.Factor{}, summary, err
	}

	return contracts.Factor{
		Name:    name,
		Formula: fmt.Sprintf("clamp(r(stock, %d) - r(market, %d), -1, 1)", k, k),
		Values:  values,
	}, summary, nil
}
