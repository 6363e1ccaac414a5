package selection

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/haugen/internal/contracts"
	"github.com/wonny/haugen/pkg/logger"
)

// Weight is one factor's coefficient, the mean of two published estimates
type Weight struct {
	Factor contracts.FactorName
	A      float64
	B      float64
}

// Value returns (A + B) / 2
func (w Weight) Value() float64 {
	return (w.A + w.B) / 2
}

// DefaultWeights returns the frozen weight table in summation order.
// Coefficients are percentages; Score divides the sum by 100.
// ⭐ SSOT: 팩터 가중치 테이블은 여기서만
func DefaultWeights() []Weight {
	return []Weight{
		{contracts.FactorER1, -.97, -.72},
		{contracts.FactorER12, .52, .52},
		{contracts.FactorTV2MC, -.35, -.2},
		{contracts.FactorER2, -.2, -.11},
		{contracts.FactorE2P, .27, .26},
		{contracts.FactorROE, .24, .13},
		{contracts.FactorB2P, .35, .39},
		{contracts.FactorER6, .24, .19},
		{contracts.FactorCF2P, .13, .26},
	}
}

// Scorer combines factor maps into one weighted score per ticker
// ⭐ SSOT: 종합 점수 계산은 여기서만
type Scorer struct {
	weights []Weight
	logger  *logger.Logger
}

// NewScorer creates a scorer over an injected weight table
func NewScorer(weights []Weight, logger *logger.Logger) *Scorer {
	w := make([]Weight, len(weights))
	copy(w, weights)
	return &Scorer{
		weights: w,
		logger:  logger,
	}
}

// Weights returns a copy of the table
func (s *Scorer) Weights() []Weight {
	w := make([]Weight, len(s.weights))
	copy(w, s.weights)
	return w
}

// TotalWeight returns the sum of weight values in table order
func (s *Scorer) TotalWeight() float64 {
	total := 0.0
	for _, w := range s.weights {
		total += w.Value()
	}
	return total
}

// Score computes Σ(factor × weight) / 100 for every ticker present in all
// factor maps. The sum runs in table order so results are reproducible
// bit for bit. A missing or unweighted factor is a contract violation.
func (s *Scorer) Score(factors contracts.FactorSet) (contracts.ValueMap, error) {
	maps := make([]contracts.ValueMap, len(s.weights))
	weighted := make(map[contracts.FactorName]bool, len(s.weights))
	for i, w := range s.weights {
		m, ok := factors[w.Factor]
		if !ok {
			return nil, fmt.Errorf("%w: %s not provided", contracts.ErrMissingFactor, w.Factor)
		}
		maps[i] = m
		weighted[w.Factor] = true
	}

	var extra []string
	for name := range factors {
		if !weighted[name] {
			extra = append(extra, string(name))
		}
	}
	if len(extra) > 0 {
		return nil, fmt.Errorf("%w: no weight for %s", contracts.ErrMissingFactor, strings.Join(extra, ", "))
	}

	tickers := contracts.Intersect(maps...)
	scores := make(contracts.ValueMap, len(tickers))
	for _, t := range tickers {
		sum := 0.0
		for i, w := range s.weights {
			sum += maps[i][t] * w.Value()
		}
		score := sum / 100

		if math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, &contracts.TickerError{Ticker: t, Err: contracts.ErrNonFinite}
		}
		scores[t] = score
	}

	s.logger.WithFields(map[string]interface{}{
		"factors":      len(s.weights),
		"tickers":      len(scores),
		"total_weight": s.TotalWeight(),
	}).Info("Scoring completed")

	return scores, nil
}
