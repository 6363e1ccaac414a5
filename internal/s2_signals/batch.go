package s2_signals

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/haugen/internal/contracts"
	"github.com/wonny/haugen/pkg/logger"
)

// TickerFunc computes one ticker's value for a stage
type TickerFunc func(ctx context.Context, ticker string) (float64, error)

// BatchRunner fans a per-ticker computation out over a bounded worker pool.
// Soft misses drop the ticker; any other error aborts the whole stage.
type BatchRunner struct {
	workers int
	logger  *logger.Logger
}

// NewBatchRunner creates a runner with the given concurrency
func NewBatchRunner(workers int, log *logger.Logger) *BatchRunner {
	if workers < 1 {
		workers = 1
	}
	return &BatchRunner{workers: workers, logger: log}
}

// Run evaluates fn for every ticker and collects the successes
func (r *BatchRunner) Run(ctx context.Context, stage string, tickers []string, fn TickerFunc) (contracts.ValueMap, contracts.StageSummary, error) {
	start := time.Now()
	summary := contracts.NewStageSummary(stage)
	summary.Processed = len(tickers)

	r.logger.WithFields(map[string]interface{}{
		"stage":   stage,
		"tickers": len(tickers),
		"workers": r.workers,
	}).Info("Starting stage")

	var mu sync.Mutex
	out := make(contracts.ValueMap, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			v, err := fn(gctx, ticker)
			if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
				err = contracts.ErrNonFinite
			}
			if err != nil {
				if contracts.IsSoftMiss(err) {
					mu.Lock()
					summary.RecordSkip(err)
					mu.Unlock()
					r.logger.WithFields(map[string]interface{}{
						"stage":  stage,
						"ticker": ticker,
						"reason": contracts.SkipReason(err),
						"error":  err.Error(),
					}).Warn("Skipping ticker")
					return nil
				}
				return &contracts.TickerError{Ticker: ticker, Err: err}
			}

			mu.Lock()
			out[ticker] = v
			mu.Unlock()
			r.logger.WithFields(map[string]interface{}{
				"stage":  stage,
				"ticker": ticker,
				"value":  v,
			}).Debug("Computed value")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.WithFields(map[string]interface{}{
			"stage": stage,
			"error": err.Error(),
		}).Error("Stage aborted")
		return nil, summary, err
	}

	summary.Succeeded = len(out)
	summary.Duration = time.Since(start)

	r.logger.WithFields(map[string]interface{}{
		"stage":     stage,
		"processed": summary.Processed,
		"succeeded": summary.Succeeded,
		"skipped":   summary.Skipped,
	}).Info("Stage completed")

	return out, summary, nil
}
