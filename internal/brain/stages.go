package brain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/haugen/internal/contracts"
)

// Single-stage names accepted by RunStage
const (
	StagePrice   = "price"
	StageVolume  = "volume"
	StageMetric  = "metric"
	StageExcess  = "excess"
	StageFactor  = "factor"
	StageScore   = "score"
	StageFilter  = "filter"
	StageMeasure = "measure"
)

// StageNames lists the single stages in pipeline order
var StageNames = []string{
	StagePrice, StageVolume, StageMetric, StageExcess,
	StageFactor, StageScore, StageFilter, StageMeasure,
}

// RunStage executes one stage, reading the outputs of earlier stages from
// the store instead of recomputing them
func (o *Orchestrator) RunStage(ctx context.Context, stage string, config RunConfig) (*RunResult, error) {
	startTime := time.Now()
	if config.RunID == "" {
		config.RunID = GenerateRunID()
	}
	r := newRun(config)

	var fn func(context.Context, *run) error
	var load func(context.Context, *run) error
	switch stage {
	case StagePrice:
		fn = o.runPrice
	case StageVolume:
		fn = o.runVolume
	case StageMetric:
		fn = o.runMetrics
	case StageExcess:
		fn = o.runExcessReturns
	case StageFactor:
		load, fn = o.loadFactorInputs, o.runRatios
	case StageScore:
		load, fn = o.loadFactors, o.runScore
	case StageFilter:
		load, fn = o.loadFilterInputs, o.runFilter
	case StageMeasure:
		load, fn = o.loadMeasureInputs, o.runMeasure
	default:
		return nil, fmt.Errorf("unknown stage %q", stage)
	}

	if load != nil {
		if err := load(ctx, r); err != nil {
			r.result.Error = err
			return r.result, err
		}
	}
	if err := fn(ctx, r); err != nil {
		r.result.Error = fmt.Errorf("%s failed: %w", stage, err)
		r.result.Duration = time.Since(startTime)
		return r.result, r.result.Error
	}

	r.result.CompletedStages = append(r.result.CompletedStages, stage)
	r.result.Scores = r.scores
	r.result.Filtered = r.filtered
	r.result.Horizons = r.horizons
	r.result.Duration = time.Since(startTime)
	r.result.Success = true

	o.logger.WithFields(map[string]interface{}{
		"stage":    stage,
		"month":    config.Month.String(),
		"duration": r.result.Duration.Seconds(),
	}).Info("Stage completed")

	return r.result, nil
}

// load reads a stored map of the run month
func (o *Orchestrator) load(ctx context.Context, r *run, name string) (contracts.ValueMap, error) {
	m, err := o.store.Load(ctx, r.config.Month, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return m, nil
}

// loadMetrics reads the configured metric maps; absent optional metrics
// are left out
func (o *Orchestrator) loadMetrics(ctx context.Context, r *run, names ...string) error {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	for _, spec := range r.config.Metrics {
		if len(wanted) > 0 && !wanted[spec.Name] {
			continue
		}
		m, err := o.load(ctx, r, spec.Name)
		if err != nil {
			if spec.Optional && errors.Is(err, contracts.ErrMissingFile) {
				continue
			}
			return err
		}
		r.metrics[spec.Name] = m
	}
	return nil
}

func (o *Orchestrator) loadFactorInputs(ctx context.Context, r *run) error {
	var err error
	if r.price, err = o.load(ctx, r, NamePrice); err != nil {
		return err
	}
	if r.tv, err = o.load(ctx, r, NameTradingVolume); err != nil {
		return err
	}
	return o.loadMetrics(ctx, r)
}

// loadFactors reads the excess-return and ratio factors
func (o *Orchestrator) loadFactors(ctx context.Context, r *run) error {
	var names []contracts.FactorName
	for _, k := range r.config.Lookbacks {
		name, ok := contracts.ExcessReturnFactor(k)
		if !ok {
			return fmt.Errorf("%w: no factor for %d-month lookback", contracts.ErrMissingFactor, k)
		}
		names = append(names, name)
	}
	names = append(names, ratioFactorNames...)

	for _, name := range names {
		m, err := o.load(ctx, r, string(name))
		if err != nil {
			return err
		}
		r.factors[name] = m
	}

	// joinSummary of the score stage is based on the price map
	var err error
	r.price, err = o.load(ctx, r, NamePrice)
	return err
}

func (o *Orchestrator) loadFilterInputs(ctx context.Context, r *run) error {
	var err error
	if r.price, err = o.load(ctx, r, NamePrice); err != nil {
		return err
	}
	if r.scores, err = o.load(ctx, r, NameScores); err != nil {
		return err
	}
	return o.loadMetrics(ctx, r, MetricShares)
}

func (o *Orchestrator) loadMeasureInputs(ctx context.Context, r *run) error {
	var err error
	if r.price, err = o.load(ctx, r, NamePrice); err != nil {
		return err
	}
	r.filtered, err = o.load(ctx, r, NameFilteredScores)
	return err
}
