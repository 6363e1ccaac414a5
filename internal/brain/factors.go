package brain

import (
	"fmt"
	"time"

	"github.com/wonny/haugen/internal/contracts"
	"github.com/wonny/haugen/internal/s2_signals"
)

// Metric names consumed by the ratio factors
const (
	MetricShares            = "outstanding_shares"
	MetricNetIncome         = "net_income"
	MetricNetIncomeCommon   = "net_income_common"
	MetricPreferredDividend = "preferred_dividend"
	MetricTotalAssets       = "total_assets"
	MetricTotalLiabilities  = "total_liabilities"
	MetricTotalEquity       = "total_equity"
	MetricIntangibleAssets  = "intangible_assets"
	MetricOperatingCashflow = "operating_cashflow"
)

// ValueMap file names under <output_dir>/<month>/
// ⭐ SSOT: 단계 산출물 이름은 여기서만
const (
	NamePrice          = "price"
	NameTradingVolume  = "tv"
	NameMarketCap      = "mc"
	NameScores         = "scores"
	NameFilteredScores = "filtered_scores"
)

// FuturePriceName names the price map of a forward month, stored next to
// the training month's maps
func FuturePriceName(future contracts.Month) string {
	return NamePrice + "_" + future.String()
}

// requiredForFactors are the metrics without which no factor can be built
var requiredForFactors = []string{
	MetricShares,
	MetricNetIncome,
	MetricNetIncomeCommon,
	MetricTotalAssets,
	MetricTotalLiabilities,
	MetricTotalEquity,
	MetricOperatingCashflow,
}

// ratioFactorNames is the RatioFactors output order
var ratioFactorNames = []contracts.FactorName{
	contracts.FactorTV2MC,
	contracts.FactorE2P,
	contracts.FactorROE,
	contracts.FactorB2P,
	contracts.FactorCF2P,
}

// FactorInputs holds the per-ticker maps the ratio factors join
type FactorInputs struct {
	Price         contracts.ValueMap
	TradingVolume contracts.ValueMap
	Metrics       map[string]contracts.ValueMap // metric name → values
}

// Check reports the first required input that is absent
func (in FactorInputs) Check() error {
	if in.Price == nil {
		return fmt.Errorf("factor input %s missing", NamePrice)
	}
	if in.TradingVolume == nil {
		return fmt.Errorf("factor input %s missing", NameTradingVolume)
	}
	for _, name := range requiredForFactors {
		if _, ok := in.Metrics[name]; !ok {
			return fmt.Errorf("factor input %s missing", name)
		}
	}
	return nil
}

// metric returns a metric map; absent optional metrics read as nil
func (in FactorInputs) metric(name string) contracts.ValueMap {
	return in.Metrics[name]
}

// RatioFactors computes tv2mc, e2p, roe, b2p and cf2p in that order
func RatioFactors(in FactorInputs) ([]contracts.Factor, error) {
	if err := in.Check(); err != nil {
		return nil, err
	}

	shares := in.metric(MetricShares)
	steps := []func() (contracts.Factor, error){
		func() (contracts.Factor, error) {
			return s2_signals.VolumeToMarketCap(in.TradingVolume, in.Price, shares)
		},
		func() (contracts.Factor, error) {
			return s2_signals.EarningsToPrice(in.metric(MetricNetIncomeCommon), shares, in.Price)
		},
		func() (contracts.Factor, error) {
			return s2_signals.ReturnOnEquity(in.metric(MetricNetIncome), in.metric(MetricTotalEquity))
		},
		func() (contracts.Factor, error) {
			return s2_signals.BookToPrice(
				in.metric(MetricTotalAssets),
				in.metric(MetricIntangibleAssets),
				in.metric(MetricTotalLiabilities),
				shares,
				in.Price,
			)
		},
		func() (contracts.Factor, error) {
			return s2_signals.CashFlowToPrice(in.metric(MetricOperatingCashflow), in.metric(MetricPreferredDividend), shares, in.Price)
		},
	}

	factors := make([]contracts.Factor, 0, len(steps))
	for _, step := range steps {
		f, err := step()
		if err != nil {
			return nil, err
		}
		factors = append(factors, f)
	}
	return factors, nil
}

// joinSummary describes a ratio join: tickers in the base map that did not
// survive the join count as skipped with reason missing_input
func joinSummary(stage string, base, out contracts.ValueMap, elapsed time.Duration) contracts.StageSummary {
	s := contracts.NewStageSummary(stage)
	s.Processed = len(base)
	s.Succeeded = len(out)
	if missing := s.Processed - s.Succeeded; missing > 0 {
		s.Skipped = missing
		s.SkipReasons["missing_input"] = missing
	}
	s.Duration = elapsed
	return s
}
