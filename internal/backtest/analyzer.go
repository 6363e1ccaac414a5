package backtest

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/haugen/internal/contracts"
	"github.com/wonny/haugen/pkg/logger"
)

// Config holds analyzer settings
type Config struct {
	Buckets int     `yaml:"buckets" json:"buckets"` // 10 = deciles
	TopN    []int   `yaml:"top_n" json:"top_n"`     // sizes of the top/bottom positions
	Bonus   float64 `yaml:"-" json:"bonus"`         // added to the current price
}

// DefaultConfig returns deciles with top/bottom 1, 5, 10, 20, 30
func DefaultConfig() Config {
	return Config{
		Buckets: 10,
		TopN:    []int{1, 5, 10, 20, 30},
		Bonus:   0.01,
	}
}

// Bucket is one score-ranked slice of the universe
type Bucket struct {
	Index      int     `json:"index"` // 1-based
	Count      int     `json:"count"`
	MeanReturn float64 `json:"mean_return"`
}

// Position is the N highest or lowest scored tickers
type Position struct {
	Side       string  `json:"side"` // top | bottom
	N          int     `json:"n"`
	Count      int     `json:"count"`
	MeanReturn float64 `json:"mean_return"`
}

// Result is a point-in-time snapshot of the score's predictive power
type Result struct {
	Tickers       int        `json:"tickers"`
	MaxScore      float64    `json:"max_score"`
	MinScore      float64    `json:"min_score"`
	MeanScore     float64    `json:"mean_score"`
	PredictedUp   int        `json:"predicted_up"`
	ActualUp      int        `json:"actual_up"`
	Correct       int        `json:"correct"`
	SignAgreement float64    `json:"sign_agreement"`
	Buckets       []Bucket   `json:"buckets"`
	Top           []Position `json:"top"`
	Bottom        []Position `json:"bottom"`
}

// Analyzer joins scores with realized forward returns
// ⭐ SSOT: 점수 예측력 측정은 여기서만
type Analyzer struct {
	config Config
	logger *logger.Logger
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(config Config, logger *logger.Logger) *Analyzer {
	if config.Buckets < 1 {
		config.Buckets = DefaultConfig().Buckets
	}
	if config.Bonus <= 0 {
		config.Bonus = DefaultConfig().Bonus
	}
	return &Analyzer{
		config: config,
		logger: logger,
	}
}

type scored struct {
	ticker string
	score  float64
	ret    float64
}

// Analyze evaluates scores against (future - current) / (current + 0.01)
// over the tickers present in all three maps.
//
// "Up" means strictly greater than zero for both score and return.
// Tickers are ranked by score ascending, ties by ticker. Bucket size is
// floor(n / buckets) and the last bucket absorbs the remainder.
func (a *Analyzer) Analyze(current, future, scores contracts.ValueMap) (*Result, error) {
	tickers := contracts.Intersect(current, future, scores)
	rows := make([]scored, 0, len(tickers))
	for _, t := range tickers {
		ret := (future[t] - current[t]) / (current[t] + a.config.Bonus)
		if math.IsNaN(ret) || math.IsInf(ret, 0) {
			return nil, &contracts.TickerError{Ticker: t, Err: fmt.Errorf("%w: forward return", contracts.ErrNonFinite)}
		}
		rows = append(rows, scored{ticker: t, score: scores[t], ret: ret})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].score != rows[j].score {
			return rows[i].score < rows[j].score
		}
		return rows[i].ticker < rows[j].ticker
	})

	res := &Result{Tickers: len(rows)}
	a.scoreStats(res, rows)
	res.Buckets = a.buckets(rows)
	res.Top, res.Bottom = a.positions(rows)

	a.logger.WithFields(map[string]interface{}{
		"tickers":        res.Tickers,
		"predicted_up":   res.PredictedUp,
		"actual_up":      res.ActualUp,
		"sign_agreement": res.SignAgreement,
	}).Info("Backtest analysis completed")

	return res, nil
}

func (a *Analyzer) scoreStats(res *Result, rows []scored) {
	if len(rows) == 0 {
		return
	}

	res.MinScore = rows[0].score
	res.MaxScore = rows[len(rows)-1].score
	sum := 0.0
	for _, r := range rows {
		sum += r.score
		up := r.score > 0
		rose := r.ret > 0
		if up {
			res.PredictedUp++
		}
		if rose {
			res.ActualUp++
		}
		if up == rose {
			res.Correct++
		}
	}
	res.MeanScore = sum / float64(len(rows))
	res.SignAgreement = float64(res.Correct) / float64(len(rows))
}

func (a *Analyzer) buckets(rows []scored) []Bucket {
	k := a.config.Buckets
	size := len(rows) / k
	out := make([]Bucket, k)
	for i := 0; i < k; i++ {
		from := i * size
		to := from + size
		if i == k-1 {
			to = len(rows)
		}
		out[i] = Bucket{
			Index:      i + 1,
			Count:      to - from,
			MeanReturn: meanReturn(rows[from:to]),
		}
	}
	return out
}

func (a *Analyzer) positions(rows []scored) (top, bottom []Position) {
	n := len(rows)
	for _, want := range a.config.TopN {
		size := want
		if size > n {
			size = n
		}
		if size < 0 {
			size = 0
		}

		bottom = append(bottom, Position{
			Side:       "bottom",
			N:          want,
			Count:      size,
			MeanReturn: meanReturn(rows[:size]),
		})
		top = append(top, Position{
			Side:       "top",
			N:          want,
			Count:      size,
			MeanReturn: meanReturn(rows[n-size:]),
		})
	}
	return top, bottom
}

// meanReturn returns 0 for an empty slice
func meanReturn(rows []scored) float64 {
	if len(rows) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range rows {
		sum += r.ret
	}
	return sum / float64(len(rows))
}
