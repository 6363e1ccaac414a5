package strategyconfig

import (
	"github.com/wonny/haugen/internal/backtest"
	"github.com/wonny/haugen/internal/contracts"
	"github.com/wonny/haugen/internal/s1_universe"
	"github.com/wonny/haugen/internal/s2_signals"
)

// Config는 Haugen 팩터 모델의 전체 설정
// The factor weight table is deliberately absent: it is frozen in selection.
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Month      string     `yaml:"month" json:"month" validate:"required"` // YYYY-MM of the training data
	Benchmark  Benchmark  `yaml:"benchmark" json:"benchmark"`
	Inputs     Inputs     `yaml:"inputs" json:"inputs"`
	OutputDir  string     `yaml:"output_dir" json:"output_dir" default:"data/derived" validate:"required"`
	Metrics    []Metric   `yaml:"metrics" json:"metrics" validate:"required,min=1,dive"`
	Exceptions Exceptions `yaml:"exceptions" json:"exceptions"`
	Signals    Signals    `yaml:"signals" json:"signals"`
	Filter     Filter     `yaml:"filter" json:"filter"`
	Backtest   Backtest   `yaml:"backtest" json:"backtest"`
	Schedule   Schedule   `yaml:"schedule" json:"schedule"`
}

// Meta 메타 정보
type Meta struct {
	ModelID string `yaml:"model_id" json:"model_id" validate:"required"`
	Version string `yaml:"version" json:"version" default:"1"`
}

// Benchmark 시장 지수
type Benchmark struct {
	Ticker string `yaml:"ticker" json:"ticker" default:"^GSPC" validate:"required"`
	Marker string `yaml:"marker" json:"marker" default:"^" validate:"required"`
}

// Inputs 수집기가 만든 입력 파일 위치
type Inputs struct {
	Tickers        string            `yaml:"tickers" json:"tickers" validate:"required"`
	DailyPrices    string            `yaml:"daily_prices" json:"daily_prices" validate:"required"`
	MonthlySamples string            `yaml:"monthly_samples" json:"monthly_samples" validate:"required"`
	Statements     map[string]string `yaml:"statements" json:"statements" validate:"required,min=1"` // source → directory
}

// Metric 재무 지표 정의
type Metric struct {
	Name     string   `yaml:"name" json:"name" validate:"required"`
	Source   string   `yaml:"source" json:"source" validate:"required"`
	Quarters int      `yaml:"quarters" json:"quarters" default:"1" validate:"gte=1,lte=8"`
	Aliases  []string `yaml:"aliases" json:"aliases"`
	Optional bool     `yaml:"optional" json:"optional"`
}

// Exceptions 데이터 품질 예외 종목
type Exceptions struct {
	Skip    []string            `yaml:"skip" json:"skip"`
	Metrics map[string][]string `yaml:"metrics" json:"metrics"` // metric → tickers
}

// Signals S2 파라미터
type Signals struct {
	ExcessReturnLookbacks []int `yaml:"excess_return_lookbacks" json:"excess_return_lookbacks" default:"[1,2,6,12]" validate:"min=1,dive,gte=1"`
	VolumeMonths          int   `yaml:"volume_months" json:"volume_months" default:"12" validate:"gte=1,lte=36"`
}

// Filter S1 유동성 기준
type Filter struct {
	MinPrice     float64 `yaml:"min_price" json:"min_price" default:"5.0" validate:"gte=0"`
	MinMarketCap float64 `yaml:"min_market_cap" json:"min_market_cap" default:"300000000" validate:"gte=0"`
}

// Backtest 예측력 측정
type Backtest struct {
	Horizons    []int  `yaml:"horizons" json:"horizons" default:"[1,2,3,4,6,12]" validate:"dive,gte=1"`
	MaxDate     string `yaml:"max_date" json:"max_date"` // newest month with future prices
	TopN        []int  `yaml:"top_n" json:"top_n" default:"[1,5,10,20,30]" validate:"dive,gte=1"`
	Buckets     int    `yaml:"buckets" json:"buckets" default:"10" validate:"gte=1"`
	ExportExcel bool   `yaml:"export_excel" json:"export_excel"`
}

// Schedule 정기 실행
type Schedule struct {
	Cron string `yaml:"cron" json:"cron" default:"0 0 6 2 * *"` // sec min hour dom mon dow
}

// TargetMonth returns the parsed training month (valid after Validate)
func (c *Config) TargetMonth() contracts.Month {
	m, _ := contracts.ParseMonth(c.Month)
	return m
}

// MaxMonth returns the newest month with future prices; zero when unset
func (c *Config) MaxMonth() contracts.Month {
	m, _ := contracts.ParseMonth(c.Backtest.MaxDate)
	return m
}

// MetricSpecs converts metric definitions for the extractor
func (c *Config) MetricSpecs() []s2_signals.MetricSpec {
	specs := make([]s2_signals.MetricSpec, 0, len(c.Metrics))
	for _, m := range c.Metrics {
		specs = append(specs, m.Spec())
	}
	return specs
}

// Spec converts one metric definition
func (m Metric) Spec() s2_signals.MetricSpec {
	return s2_signals.MetricSpec{
		Name:     m.Name,
		Source:   m.Source,
		Quarters: m.Quarters,
		Aliases:  append([]string(nil), m.Aliases...),
		Optional: m.Optional,
	}
}

// Metric looks up a metric definition by name
func (c *Config) Metric(name string) (Metric, bool) {
	for _, m := range c.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// ExceptionTable builds the injected exception configuration
func (c *Config) ExceptionTable() *s1_universe.Exceptions {
	return s1_universe.NewExceptions(c.Exceptions.Skip, c.Exceptions.Metrics)
}

// FilterConfig converts the liquidity thresholds
func (c *Config) FilterConfig() s1_universe.Config {
	return s1_universe.Config{
		MinPrice:     c.Filter.MinPrice,
		MinMarketCap: c.Filter.MinMarketCap,
	}
}

// AnalyzerConfig converts the backtest settings
func (c *Config) AnalyzerConfig() backtest.Config {
	cfg := backtest.DefaultConfig()
	cfg.Buckets = c.Backtest.Buckets
	cfg.TopN = append([]int(nil), c.Backtest.TopN...)
	return cfg
}

// ForwardMonths returns the horizons whose future month is <= max date.
// Without a max date every horizon is returned.
func (c *Config) ForwardMonths() []int {
	return c.ForwardMonthsFrom(c.TargetMonth())
}

// ForwardMonthsFrom is ForwardMonths for another training month
func (c *Config) ForwardMonthsFrom(target contracts.Month) []int {
	limit := c.MaxMonth()

	var out []int
	for _, h := range c.Backtest.Horizons {
		if !limit.IsZero() && target.AddMonths(h).After(limit) {
			continue
		}
		out = append(out, h)
	}
	return out
}
