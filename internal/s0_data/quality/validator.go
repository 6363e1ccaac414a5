package quality

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/haugen/internal/contracts"
	"github.com/wonny/haugen/internal/s2_signals"
	"github.com/wonny/haugen/pkg/logger"
)

// Config holds quality gate thresholds
type Config struct {
	MinCoverage float64 `yaml:"min_coverage"` // 0.95: every required metric must reach this
}

// DefaultConfig returns the default thresholds
func DefaultConfig() Config {
	return Config{MinCoverage: 0.95}
}

// MetricCoverage counts how many tickers report one metric
type MetricCoverage struct {
	Metric   string   `json:"metric"`
	Optional bool     `json:"optional"`
	Covered  int      `json:"covered"`
	Skipped  int      `json:"skipped"`           // excluded by the exception table
	Missing  []string `json:"missing,omitempty"` // sorted
	Coverage float64  `json:"coverage"`          // covered / (loaded - skipped)
}

// SourceCoverage summarizes one statement source
type SourceCoverage struct {
	Source       string           `json:"source"`
	Loaded       int              `json:"loaded"`
	MissingFiles []string         `json:"missing_files,omitempty"`
	Metrics      []MetricCoverage `json:"metrics"`
}

// Snapshot is the result of one coverage check
type Snapshot struct {
	CheckedAt    time.Time        `json:"checked_at"`
	TotalTickers int              `json:"total_tickers"`
	Sources      []SourceCoverage `json:"sources"`
	QualityScore float64          `json:"quality_score"` // mean coverage of required metrics
	Passed       bool             `json:"passed"`
}

// Failing returns the required metrics below the threshold, as source/metric
func (s *Snapshot) Failing(minCoverage float64) []string {
	var out []string
	for _, src := range s.Sources {
		for _, m := range src.Metrics {
			if !m.Optional && m.Coverage < minCoverage {
				out = append(out, src.Source+"/"+m.Metric)
			}
		}
	}
	return out
}

// SkipPolicy reports tickers known not to carry a metric
type SkipPolicy interface {
	Skips(stage, ticker string) bool
}

// QualityGate validates that statement files carry the configured metrics
// ⭐ SSOT: S0 → S2 재무제표 커버리지 검증
type QualityGate struct {
	statements map[string]contracts.StatementRepository
	metrics    []s2_signals.MetricSpec
	skips      SkipPolicy
	config     Config
	logger     *logger.Logger
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(
	statements map[string]contracts.StatementRepository,
	metrics []s2_signals.MetricSpec,
	skips SkipPolicy,
	config Config,
	log *logger.Logger,
) *QualityGate {
	return &QualityGate{
		statements: statements,
		metrics:    metrics,
		skips:      skips,
		config:     config,
		logger:     log,
	}
}

// Check loads every ticker's statements once per source and counts which
// metrics resolve through their aliases.
func (g *QualityGate) Check(ctx context.Context, tickers []string) (*Snapshot, error) {
	snapshot := &Snapshot{
		CheckedAt:    time.Now(),
		TotalTickers: len(tickers),
	}

	for _, source := range g.sources() {
		cov, err := g.checkSource(ctx, source, tickers)
		if err != nil {
			return nil, fmt.Errorf("check %s coverage: %w", source, err)
		}
		snapshot.Sources = append(snapshot.Sources, *cov)
	}

	snapshot.QualityScore = calculateScore(snapshot)
	snapshot.Passed = len(snapshot.Failing(g.config.MinCoverage)) == 0

	g.logger.WithFields(map[string]interface{}{
		"tickers": snapshot.TotalTickers,
		"score":   snapshot.QualityScore,
		"passed":  snapshot.Passed,
	}).Info("Statement coverage checked")

	return snapshot, nil
}

// sources returns the statement sources referenced by metrics, sorted
func (g *QualityGate) sources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range g.metrics {
		if !seen[m.Source] {
			seen[m.Source] = true
			out = append(out, m.Source)
		}
	}
	sort.Strings(out)
	return out
}

func (g *QualityGate) checkSource(ctx context.Context, source string, tickers []string) (*SourceCoverage, error) {
	repo, ok := g.statements[source]
	if !ok {
		return nil, fmt.Errorf("no repository for statement source %q", source)
	}

	var specs []s2_signals.MetricSpec
	for _, m := range g.metrics {
		if m.Source == source {
			specs = append(specs, m)
		}
	}

	cov := &SourceCoverage{Source: source, Metrics: make([]MetricCoverage, len(specs))}
	for i, spec := range specs {
		cov.Metrics[i] = MetricCoverage{Metric: spec.Name, Optional: spec.Optional}
	}

	for _, ticker := range tickers {
		series, err := repo.Statement(ctx, ticker)
		if err != nil {
			if errors.Is(err, contracts.ErrMissingFile) {
				cov.MissingFiles = append(cov.MissingFiles, ticker)
				continue
			}
			return nil, err
		}
		cov.Loaded++

		for i, spec := range specs {
			mc := &cov.Metrics[i]
			if g.skips != nil && g.skips.Skips(spec.Name, ticker) {
				mc.Skipped++
				continue
			}
			if _, _, found := series.Lookup(spec.Candidates()...); found {
				mc.Covered++
			} else {
				mc.Missing = append(mc.Missing, ticker)
			}
		}
	}

	sort.Strings(cov.MissingFiles)
	for i := range cov.Metrics {
		mc := &cov.Metrics[i]
		sort.Strings(mc.Missing)
		if denom := cov.Loaded - mc.Skipped; denom > 0 {
			mc.Coverage = float64(mc.Covered) / float64(denom)
		} else {
			mc.Coverage = 1
		}
		if !mc.Optional && len(mc.Missing) > 0 {
			g.logger.WithFields(map[string]interface{}{
				"source":  source,
				"metric":  mc.Metric,
				"missing": len(mc.Missing),
			}).Warn("Required metric missing")
		}
	}

	return cov, nil
}

// calculateScore averages coverage over required metrics
func calculateScore(s *Snapshot) float64 {
	sum, n := 0.0, 0
	for _, src := range s.Sources {
		for _, m := range src.Metrics {
			if m.Optional {
				continue
			}
			sum += m.Coverage
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return sum / float64(n)
}
