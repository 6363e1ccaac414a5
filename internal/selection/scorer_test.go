package selection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/haugen/internal/contracts"
	"github.com/wonny/haugen/pkg/logger"
)

func allFactors(m contracts.ValueMap) contracts.FactorSet {
	set := make(contracts.FactorSet)
	for _, w := range DefaultWeights() {
		set[w.Factor] = m
	}
	return set
}

func TestDefaultWeights(t *testing.T) {
	weights := DefaultWeights()
	require.Len(t, weights, 9)

	want := map[contracts.FactorName]float64{
		contracts.FactorER1:   -0.845,
		contracts.FactorER12:  0.52,
		contracts.FactorTV2MC: -0.275,
		contracts.FactorER2:   -0.155,
		contracts.FactorE2P:   0.265,
		contracts.FactorROE:   0.185,
		contracts.FactorB2P:   0.37,
		contracts.FactorER6:   0.215,
		contracts.FactorCF2P:  0.195,
	}
	for _, w := range weights {
		assert.InDelta(t, want[w.Factor], w.Value(), 1e-12, string(w.Factor))
	}
}

func TestScorer_UnitFactorsGiveTotalWeight(t *testing.T) {
	s := NewScorer(DefaultWeights(), logger.Nop())

	scores, err := s.Score(allFactors(contracts.ValueMap{"X": 1.0}))
	require.NoError(t, err)

	// same summation order as the scorer
	expected := 0.0
	for _, w := range DefaultWeights() {
		expected += 1.0 * w.Value()
	}
	expected /= 100

	assert.Equal(t, math.Float64bits(expected), math.Float64bits(scores["X"]))
	assert.InDelta(t, 0.00475, scores["X"], 1e-12)

	again, err := s.Score(allFactors(contracts.ValueMap{"X": 1.0}))
	require.NoError(t, err)
	assert.Equal(t, math.Float64bits(scores["X"]), math.Float64bits(again["X"]))
}

func TestScorer_IntersectsTickers(t *testing.T) {
	set := allFactors(contracts.ValueMap{"A": 1, "B": 1})
	set[contracts.FactorB2P] = contracts.ValueMap{"A": 2}

	scores, err := NewScorer(DefaultWeights(), logger.Nop()).Score(set)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, scores.Tickers())
}

func TestScorer_MissingOrUnknownFactor(t *testing.T) {
	s := NewScorer(DefaultWeights(), logger.Nop())

	set := allFactors(contracts.ValueMap{"A": 1})
	delete(set, contracts.FactorROE)
	_, err := s.Score(set)
	assert.ErrorIs(t, err, contracts.ErrMissingFactor)

	set = allFactors(contracts.ValueMap{"A": 1})
	set["er3"] = contracts.ValueMap{"A": 1}
	_, err = s.Score(set)
	assert.ErrorIs(t, err, contracts.ErrMissingFactor)
}

func TestScorer_InjectedWeights(t *testing.T) {
	s := NewScorer([]Weight{{contracts.FactorB2P, 100, 100}}, logger.Nop())
	scores, err := s.Score(contracts.FactorSet{contracts.FactorB2P: {"A": 0.5}})
	require.NoError(t, err)
	assert.Equal(t, 0.5, scores["A"])
}

func TestRank(t *testing.T) {
	scores := contracts.ValueMap{"A": 0.1, "B": 0.3, "C": 0.3, "D": -0.2}

	ranked := Rank(scores, 0)
	require.Len(t, ranked, 4)
	assert.Equal(t, "B", ranked[0].Ticker)
	assert.Equal(t, "C", ranked[1].Ticker)
	assert.Equal(t, 4, ranked[3].Rank)

	top := Rank(scores, 2)
	assert.Len(t, top, 2)
}
