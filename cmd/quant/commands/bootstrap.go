package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wonny/haugen/internal/audit"
	"github.com/wonny/haugen/internal/backtest"
	"github.com/wonny/haugen/internal/brain"
	"github.com/wonny/haugen/internal/contracts"
	"github.com/wonny/haugen/internal/s0_data"
	"github.com/wonny/haugen/internal/s0_data/quality"
	"github.com/wonny/haugen/internal/s1_universe"
	"github.com/wonny/haugen/internal/s2_signals"
	"github.com/wonny/haugen/internal/selection"
	"github.com/wonny/haugen/internal/strategyconfig"
	"github.com/wonny/haugen/pkg/config"
	"github.com/wonny/haugen/pkg/logger"
	"github.com/wonny/haugen/pkg/metrics"
)

// app holds the components every command is built from
type app struct {
	cfg   *config.Config
	model *strategyconfig.Config
	hash  string
	log   *logger.Logger

	statements  map[string]contracts.StatementRepository
	store       *s0_data.ValueMapStore
	auditRepo   *audit.Repository
	qualityRepo *quality.Repository
	recorder    *metrics.Recorder

	orchestrator *brain.Orchestrator
}

// newApp loads both configuration layers and wires the pipeline
func newApp(cmd *cobra.Command) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyFlags(cmd, cfg)

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load model
	model, _, err := strategyconfig.Load(cfg.ModelConfig)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", cfg.ModelConfig, err)
	}
	if monthFlag != "" {
		if _, err := contracts.ParseMonth(monthFlag); err != nil {
			return nil, fmt.Errorf("--month: %w", err)
		}
		model.Month = monthFlag
	}
	hash, err := strategyconfig.Hash(model)
	if err != nil {
		return nil, fmt.Errorf("hash model: %w", err)
	}

	a := &app{cfg: cfg, model: model, hash: hash, log: log}

	// 4. Create repositories
	a.statements = make(map[string]contracts.StatementRepository, len(model.Inputs.Statements))
	for source, dir := range model.Inputs.Statements {
		a.statements[source] = s0_data.NewStatementRepository(source, a.path(dir))
	}
	prices := s0_data.NewPriceRepository(a.path(model.Inputs.DailyPrices))
	samples := s0_data.NewSampleRepository(a.path(model.Inputs.MonthlySamples))

	outputDir := a.path(model.OutputDir)
	a.store = s0_data.NewValueMapStore(outputDir)
	a.auditRepo = audit.NewRepository(outputDir)
	a.qualityRepo = quality.NewRepository(outputDir)
	a.recorder = metrics.New()

	// 5. Create S2: Signal Builder
	signalBuilder := s2_signals.NewBuilder(
		a.statements,
		prices,
		samples,
		s2_signals.NewMetricExtractor(),
		s2_signals.NewVolumeCalculator(model.Signals.VolumeMonths),
		s2_signals.NewExcessReturnCalculator(model.Benchmark.Marker),
		model.ExceptionTable(),
		s2_signals.NewBatchRunner(cfg.Workers, log),
		log,
	)

	// 6. Create Orchestrator
	a.orchestrator = brain.NewOrchestrator(
		signalBuilder,
		selection.NewScorer(selection.DefaultWeights(), log),
		s1_universe.NewFilter(model.FilterConfig(), log),
		backtest.NewAnalyzer(model.AnalyzerConfig(), log),
		a.store,
		a.auditRepo,
		a.recorder,
		log,
	)

	log.WithFields(map[string]interface{}{
		"model":   model.Meta.ModelID,
		"month":   model.Month,
		"output":  outputDir,
		"workers": cfg.Workers,
	}).Debug("Application initialized")

	return a, nil
}

// applyFlags lets global flags override environment settings
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("env") {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if configFile != "" {
		cfg.ModelConfig = configFile
	}
}

// path resolves a model path against DATA_DIR
func (a *app) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.cfg.DataDir, p)
}

// universe reads the ticker list and drops globally skipped tickers
func (a *app) universe() ([]string, error) {
	tickers, err := s0_data.LoadTickers(a.path(a.model.Inputs.Tickers))
	if err != nil {
		return nil, err
	}
	return a.model.ExceptionTable().Universe(tickers), nil
}

// qualityGate builds the statement coverage check
func (a *app) qualityGate() *quality.QualityGate {
	return quality.NewQualityGate(
		a.statements,
		a.model.MetricSpecs(),
		a.model.ExceptionTable(),
		quality.DefaultConfig(),
		a.log,
	)
}

// runConfig builds the orchestrator input for a training month
func (a *app) runConfig(month contracts.Month, tickers []string) brain.RunConfig {
	return brain.RunConfig{
		Month:       month,
		RunID:       brain.GenerateRunID(),
		ConfigHash:  a.hash,
		Tickers:     tickers,
		Benchmark:   a.model.Benchmark.Ticker,
		Metrics:     a.model.MetricSpecs(),
		Lookbacks:   a.model.Signals.ExcessReturnLookbacks,
		Horizons:    a.model.ForwardMonthsFrom(month),
		ExportExcel: a.model.Backtest.ExportExcel,
	}
}
