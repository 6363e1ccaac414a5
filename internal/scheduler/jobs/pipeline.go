package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/haugen/internal/contracts"
	"github.com/wonny/haugen/internal/s0_data/quality"
	"github.com/wonny/haugen/pkg/logger"
)

// CoverageChecker validates statement coverage before a run
type CoverageChecker interface {
	Check(ctx context.Context, tickers []string) (*quality.Snapshot, error)
}

// RunFunc runs the pipeline for one training month
type RunFunc func(ctx context.Context, month contracts.Month) error

// PipelineJob re-runs the factor pipeline every month
// ⭐ SSOT: 월간 파이프라인 스케줄은 이 Job에서만
type PipelineJob struct {
	schedule string
	gate     CoverageChecker
	tickers  []string
	run      RunFunc
	now      func() time.Time
	logger   *logger.Logger
}

// NewPipelineJob creates a new pipeline job; gate may be nil
func NewPipelineJob(schedule string, gate CoverageChecker, tickers []string, run RunFunc, log *logger.Logger) *PipelineJob {
	return &PipelineJob{
		schedule: schedule,
		gate:     gate,
		tickers:  tickers,
		run:      run,
		now:      time.Now,
		logger:   log,
	}
}

// Name returns the job name
func (j *PipelineJob) Name() string {
	return "factor_pipeline"
}

// Schedule returns the cron schedule (default: 06:00 on the 2nd of every month)
func (j *PipelineJob) Schedule() string {
	return j.schedule
}

// LatestCompleteMonth returns the month before now's month
func LatestCompleteMonth(now time.Time) contracts.Month {
	return contracts.MonthOf(now).AddMonths(-1)
}

// Run checks coverage and runs the pipeline for the latest complete month
func (j *PipelineJob) Run(ctx context.Context) error {
	month := LatestCompleteMonth(j.now())
	j.logger.WithField("month", month.String()).Info("Starting scheduled pipeline run")

	// 1. 커버리지 검증
	if j.gate != nil {
		snapshot, err := j.gate.Check(ctx, j.tickers)
		if err != nil {
			return fmt.Errorf("coverage validation failed: %w", err)
		}
		if !snapshot.Passed {
			j.logger.WithFields(map[string]interface{}{
				"quality_score": snapshot.QualityScore,
				"total_tickers": snapshot.TotalTickers,
			}).Warn("Statement coverage below threshold, but continuing with pipeline")
		}
	}

	// 2. 파이프라인 실행
	if err := j.run(ctx, month); err != nil {
		return fmt.Errorf("pipeline %s: %w", month, err)
	}

	j.logger.WithField("month", month.String()).Info("Scheduled pipeline run completed")
	return nil
}
