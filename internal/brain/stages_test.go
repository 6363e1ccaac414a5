package brain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/haugen/internal/contracts"
)

func TestRunStage_Sequence(t *testing.T) {
	fx := newFixture(t, true)
	ctx := context.Background()

	var last *RunResult
	for _, stage := range StageNames {
		result, err := fx.orchestrator.RunStage(ctx, stage, fx.config)
		require.NoError(t, err, stage)
		assert.Equal(t, []string{stage}, result.CompletedStages)
		last = result
	}

	require.Len(t, last.Horizons, 1)
	assert.Equal(t, 2, last.Horizons[0].Result.Tickers)

	filtered, err := fx.store.Load(ctx, trainMonth, NameFilteredScores)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, filtered.Tickers())

	// single stages never write the report
	_, err = fx.auditRepo.Load(trainMonth)
	assert.True(t, errors.Is(err, contracts.ErrMissingFile))
}

func TestRunStage_MatchesRun(t *testing.T) {
	// AAA rounds up to the $5 floor in the stored price map
	prices := map[string]float64{"AAA": 4.996, "BBB": 20, "CCC": 3}
	ctx := context.Background()

	full := newFixtureWithPrices(t, true, prices)
	result, err := full.orchestrator.Run(ctx, full.config)
	require.NoError(t, err)
	require.True(t, result.Success)

	staged := newFixtureWithPrices(t, true, prices)
	for _, stage := range StageNames {
		_, err := staged.orchestrator.RunStage(ctx, stage, staged.config)
		require.NoError(t, err, stage)
	}

	price, err := full.store.Load(ctx, trainMonth, NamePrice)
	require.NoError(t, err)
	assert.Equal(t, 5.0, price["AAA"])

	for _, name := range []string{NamePrice, NameMarketCap, NameScores, NameFilteredScores} {
		t.Run(name, func(t *testing.T) {
			want, err := staged.store.Load(ctx, trainMonth, name)
			require.NoError(t, err)
			got, err := full.store.Load(ctx, trainMonth, name)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	filtered, err := full.store.Load(ctx, trainMonth, NameFilteredScores)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, filtered.Tickers())
	assert.Equal(t, []string{"AAA", "BBB"}, result.Filtered.Tickers())
}

func TestRunStage_MissingInputs(t *testing.T) {
	fx := newFixture(t, true)

	for _, stage := range []string{StageFactor, StageScore, StageFilter, StageMeasure} {
		t.Run(stage, func(t *testing.T) {
			result, err := fx.orchestrator.RunStage(context.Background(), stage, fx.config)
			require.Error(t, err)
			assert.True(t, errors.Is(err, contracts.ErrMissingFile))
			assert.False(t, result.Success)
		})
	}
}

func TestRunStage_Unknown(t *testing.T) {
	fx := newFixture(t, true)
	_, err := fx.orchestrator.RunStage(context.Background(), "fetch", fx.config)
	assert.Error(t, err)
}
