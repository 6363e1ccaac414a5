package brain

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

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

// WorkbookFile is the optional Excel export inside a month directory
const WorkbookFile = "report.xlsx"

// Orchestrator coordinates the entire factor pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	// Stage components
	signalBuilder *s2_signals.Builder
	scorer        *selection.Scorer
	filter        *s1_universe.Filter
	analyzer      *backtest.Analyzer

	// Repositories for saving intermediate results
	store     *s0_data.ValueMapStore
	auditRepo *audit.Repository

	metrics *metrics.Recorder
	logger  *logger.Logger
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	Month      contracts.Month
	RunID      string
	ConfigHash string

	Tickers   []string // universe after global exceptions
	Benchmark string
	Metrics   []s2_signals.MetricSpec
	Lookbacks []int // excess-return lookbacks in months
	Horizons  []int // forward months to measure, already capped by max date

	ExportExcel bool
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           string
	Month           contracts.Month
	Success         bool
	Error           error
	CompletedStages []string
	Stages          []contracts.StageSummary
	Scores          contracts.ValueMap
	Filtered        contracts.ValueMap
	Horizons        []audit.HorizonResult
	Report          *audit.Report
	Duration        time.Duration
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	signalBuilder *s2_signals.Builder,
	scorer *selection.Scorer,
	filter *s1_universe.Filter,
	analyzer *backtest.Analyzer,
	store *s0_data.ValueMapStore,
	auditRepo *audit.Repository,
	recorder *metrics.Recorder,
	logger *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		signalBuilder: signalBuilder,
		scorer:        scorer,
		filter:        filter,
		analyzer:      analyzer,
		store:         store,
		auditRepo:     auditRepo,
		metrics:       recorder,
		logger:        logger,
	}
}

// run carries the maps produced so far
type run struct {
	config   RunConfig
	result   *RunResult
	price    contracts.ValueMap
	tv       contracts.ValueMap
	metrics  map[string]contracts.ValueMap
	factors  contracts.FactorSet
	scores   contracts.ValueMap
	filtered contracts.ValueMap
	horizons []audit.HorizonResult
}

// Run executes every stage in order:
// price → tv → metrics → er → ratio factors → score → mc → filter → measure
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()
	if config.RunID == "" {
		config.RunID = GenerateRunID()
	}

	r := newRun(config)
	result := r.result

	o.logger.WithFields(map[string]interface{}{
		"run_id":    config.RunID,
		"month":     config.Month.String(),
		"tickers":   len(config.Tickers),
		"benchmark": config.Benchmark,
		"horizons":  config.Horizons,
	}).Info("Starting pipeline run")

	for _, step := range o.steps() {
		if err := ctx.Err(); err != nil {
			result.Error = err
			return result, err
		}
		if err := step.fn(ctx, r); err != nil {
			result.Error = fmt.Errorf("%s failed: %w", step.name, err)
			result.Duration = time.Since(startTime)
			return result, result.Error
		}
		result.CompletedStages = append(result.CompletedStages, step.name)
	}

	result.Duration = time.Since(startTime)
	result.Scores = r.scores
	result.Filtered = r.filtered
	result.Horizons = r.horizons

	report := &audit.Report{
		RunID:      config.RunID,
		Month:      config.Month.String(),
		ConfigHash: config.ConfigHash,
		Stages:     result.Stages,
		Horizons:   r.horizons,
		CreatedAt:  time.Now(),
		Duration:   result.Duration,
	}
	if err := o.saveReport(report, config.ExportExcel); err != nil {
		result.Error = err
		return result, err
	}
	result.Report = report

	// Mark success
	result.Success = true

	o.logger.WithFields(map[string]interface{}{
		"run_id":   config.RunID,
		"duration": result.Duration.Seconds(),
		"stages":   len(result.Stages),
	}).Info("Pipeline run completed successfully")

	return result, nil
}

type step struct {
	name string
	fn   func(context.Context, *run) error
}

// steps lists the pipeline stages in execution order
func (o *Orchestrator) steps() []step {
	return []step{
		{"S0:Price", o.runPrice},
		{"S2:Volume", o.runVolume},
		{"S2:Metrics", o.runMetrics},
		{"S2:ExcessReturn", o.runExcessReturns},
		{"S2:Ratios", o.runRatios},
		{"S3:Score", o.runScore},
		{"S1:Filter", o.runFilter},
		{"S7:Measure", o.runMeasure},
	}
}

// newRun creates empty run state
func newRun(config RunConfig) *run {
	return &run{
		config: config,
		result: &RunResult{
			RunID:           config.RunID,
			Month:           config.Month,
			CompletedStages: make([]string, 0),
		},
		metrics: make(map[string]contracts.ValueMap),
		factors: make(contracts.FactorSet),
	}
}

// record saves a stage output, books its summary and returns the map as
// stored so later steps see the same rounded values a file reader would
func (o *Orchestrator) record(ctx context.Context, r *run, summary contracts.StageSummary, name string, m contracts.ValueMap, precision int) (contracts.ValueMap, error) {
	path, err := o.store.Save(ctx, r.config.Month, name, m, precision)
	if err != nil {
		o.metrics.RecordFailure(summary.Stage)
		return nil, fmt.Errorf("save %s: %w", name, err)
	}
	stored, err := o.store.Load(ctx, r.config.Month, name)
	if err != nil {
		o.metrics.RecordFailure(summary.Stage)
		return nil, fmt.Errorf("reload %s: %w", name, err)
	}
	summary.Output = path
	r.result.Stages = append(r.result.Stages, summary)
	o.metrics.RecordSummary(summary)
	return stored, nil
}

// fail counts an aborted stage and passes the error through
func (o *Orchestrator) fail(stage string, err error) error {
	o.metrics.RecordFailure(stage)
	return err
}

// runPrice extracts the training month's price snapshot
func (o *Orchestrator) runPrice(ctx context.Context, r *run) error {
	values, summary, err := o.signalBuilder.CurrentPrice(ctx, NamePrice, r.config.Tickers, r.config.Month)
	if err != nil {
		return o.fail(NamePrice, err)
	}
	r.price, err = o.record(ctx, r, summary, NamePrice, values, s0_data.PricePrecision)
	return err
}

// runVolume aggregates trailing dollar volume
func (o *Orchestrator) runVolume(ctx context.Context, r *run) error {
	values, summary, err := o.signalBuilder.TradingVolume(ctx, NameTradingVolume, r.config.Tickers, r.config.Month)
	if err != nil {
		return o.fail(NameTradingVolume, err)
	}
	r.tv, err = o.record(ctx, r, summary, NameTradingVolume, values, s0_data.DefaultPrecision)
	return err
}

// runMetrics extracts every configured statement metric
func (o *Orchestrator) runMetrics(ctx context.Context, r *run) error {
	for _, spec := range r.config.Metrics {
		values, summary, err := o.signalBuilder.Metric(ctx, r.config.Tickers, spec, r.config.Month)
		if err != nil {
			return o.fail(spec.Name, err)
		}
		stored, err := o.record(ctx, r, summary, spec.Name, values, s0_data.DefaultPrecision)
		if err != nil {
			return err
		}
		r.metrics[spec.Name] = stored
	}
	return nil
}

// runExcessReturns computes one factor per lookback
func (o *Orchestrator) runExcessReturns(ctx context.Context, r *run) error {
	for _, k := range r.config.Lookbacks {
		factor, summary, err := o.signalBuilder.ExcessReturn(ctx, r.config.Tickers, r.config.Benchmark, r.config.Month, k)
		if err != nil {
			return o.fail(fmt.Sprintf("er%d", k), err)
		}
		stored, err := o.record(ctx, r, summary, string(factor.Name), factor.Values, s0_data.DefaultPrecision)
		if err != nil {
			return err
		}
		r.factors[factor.Name] = stored
	}
	return nil
}

// runRatios joins prices, volume and metrics into the ratio factors
func (o *Orchestrator) runRatios(ctx context.Context, r *run) error {
	start := time.Now()
	factors, err := RatioFactors(FactorInputs{Price: r.price, TradingVolume: r.tv, Metrics: r.metrics})
	if err != nil {
		return o.fail("ratios", err)
	}

	for _, f := range factors {
		base := r.price
		if f.Name == contracts.FactorROE {
			base = r.metrics[MetricNetIncome]
		}
		summary := joinSummary(string(f.Name), base, f.Values, time.Since(start))
		stored, err := o.record(ctx, r, summary, string(f.Name), f.Values, s0_data.DefaultPrecision)
		if err != nil {
			return err
		}
		r.factors[f.Name] = stored
		o.logger.WithFields(map[string]interface{}{
			"factor":  string(f.Name),
			"formula": f.Formula,
			"tickers": len(f.Values),
		}).Debug("Ratio factor computed")
	}
	return nil
}

// runScore combines the nine factors
func (o *Orchestrator) runScore(ctx context.Context, r *run) error {
	start := time.Now()
	scores, err := o.scorer.Score(r.factors)
	if err != nil {
		return o.fail(NameScores, err)
	}
	r.scores, err = o.record(ctx, r, joinSummary(NameScores, r.price, scores, time.Since(start)), NameScores, scores, s0_data.DefaultPrecision)
	return err
}

// runFilter computes market cap and applies the liquidity floors
func (o *Orchestrator) runFilter(ctx context.Context, r *run) error {
	start := time.Now()
	mc, err := s2_signals.MarketCap(r.price, r.metrics[MetricShares])
	if err != nil {
		return o.fail(NameMarketCap, err)
	}
	mc, err = o.record(ctx, r, joinSummary(NameMarketCap, r.price, mc, time.Since(start)), NameMarketCap, mc, s0_data.DefaultPrecision)
	if err != nil {
		return err
	}

	start = time.Now()
	res := o.filter.Apply(r.scores, r.price, mc)

	summary := joinSummary(NameFilteredScores, r.scores, res.Scores, time.Since(start))
	if len(res.Excluded) > 0 {
		summary.SkipReasons["below_liquidity"] = len(res.Excluded)
	}
	r.filtered, err = o.record(ctx, r, summary, NameFilteredScores, res.Scores, s0_data.DefaultPrecision)
	return err
}

// runMeasure fetches future prices and measures each horizon
func (o *Orchestrator) runMeasure(ctx context.Context, r *run) error {
	for _, h := range r.config.Horizons {
		future := r.config.Month.AddMonths(h)
		name := FuturePriceName(future)

		values, summary, err := o.signalBuilder.CurrentPrice(ctx, name, r.config.Tickers, future)
		if err != nil {
			return o.fail(name, err)
		}
		stored, err := o.record(ctx, r, summary, name, values, s0_data.PricePrecision)
		if err != nil {
			return err
		}

		res, err := o.analyzer.Analyze(r.price, stored, r.filtered)
		if err != nil {
			return o.fail(fmt.Sprintf("measure_%dm", h), err)
		}
		r.horizons = append(r.horizons, audit.HorizonResult{Months: h, Future: future.String(), Result: res})

		o.logger.WithFields(map[string]interface{}{
			"horizon":        h,
			"future":         future.String(),
			"tickers":        res.Tickers,
			"sign_agreement": res.SignAgreement,
		}).Info("Horizon measured")
	}
	return nil
}

// saveReport persists the run report and the optional workbook
func (o *Orchestrator) saveReport(report *audit.Report, exportExcel bool) error {
	if err := o.auditRepo.Save(report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	if !exportExcel {
		return nil
	}

	path := filepath.Join(o.store.Root(), report.Month, WorkbookFile)
	if err := audit.ExportWorkbook(report, path); err != nil {
		return fmt.Errorf("export workbook: %w", err)
	}
	o.logger.WithField("path", path).Info("Workbook exported")
	return nil
}

// GenerateRunID generates a unique run ID
func GenerateRunID() string {
	return fmt.Sprintf("run_%s", uuid.NewString())
}
