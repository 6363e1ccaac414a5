package strategyconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/haugen/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = validator.New()

// RequiredMetrics are the statement metrics the factor formulas consume
var RequiredMetrics = []string{
	"outstanding_shares",
	"net_income",
	"net_income_common",
	"total_assets",
	"total_liabilities",
	"total_equity",
	"operating_cashflow",
}

// OptionalMetrics default to zero in the ratio joins when absent
var OptionalMetrics = []string{
	"intangible_assets",
	"preferred_dividend",
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Struct tags ===
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return ValidationError{fieldPath(fe.Namespace()), tagMessage(fe)}
		}
		return err
	}

	// === Dates ===
	if _, err := contracts.ParseMonth(cfg.Month); err != nil {
		return ValidationError{"month", err.Error()}
	}
	if cfg.Backtest.MaxDate != "" {
		maxDate, err := contracts.ParseMonth(cfg.Backtest.MaxDate)
		if err != nil {
			return ValidationError{"backtest.max_date", err.Error()}
		}
		if maxDate.Before(cfg.TargetMonth()) {
			return ValidationError{"backtest.max_date", "must not be before month"}
		}
	}

	// === Benchmark ===
	if !strings.Contains(cfg.Benchmark.Ticker, cfg.Benchmark.Marker) {
		return ValidationError{"benchmark.ticker", fmt.Sprintf("must contain marker %q", cfg.Benchmark.Marker)}
	}

	// === Metrics ===
	seen := make(map[string]bool, len(cfg.Metrics))
	for i, m := range cfg.Metrics {
		field := fmt.Sprintf("metrics[%d]", i)
		if seen[m.Name] {
			return ValidationError{field, fmt.Sprintf("duplicate metric %q", m.Name)}
		}
		seen[m.Name] = true

		if _, ok := cfg.Inputs.Statements[m.Source]; !ok {
			return ValidationError{field + ".source", fmt.Sprintf("unknown statement source %q", m.Source)}
		}
	}
	for _, name := range RequiredMetrics {
		m, ok := cfg.Metric(name)
		if !ok {
			return ValidationError{"metrics", fmt.Sprintf("missing required metric %q", name)}
		}
		if m.Optional {
			return ValidationError{"metrics", fmt.Sprintf("metric %q cannot be optional", name)}
		}
	}

	// === Exceptions ===
	for name := range cfg.Exceptions.Metrics {
		if !seen[name] {
			return ValidationError{"exceptions.metrics", fmt.Sprintf("unknown metric %q", name)}
		}
	}

	// === Signals ===
	lookbacks := make(map[contracts.FactorName]bool)
	for _, k := range cfg.Signals.ExcessReturnLookbacks {
		name, ok := contracts.ExcessReturnFactor(k)
		if !ok {
			return ValidationError{"signals.excess_return_lookbacks", fmt.Sprintf("no factor for %d-month lookback", k)}
		}
		lookbacks[name] = true
	}
	for _, name := range []contracts.FactorName{contracts.FactorER1, contracts.FactorER2, contracts.FactorER6, contracts.FactorER12} {
		if !lookbacks[name] {
			return ValidationError{"signals.excess_return_lookbacks", fmt.Sprintf("missing %s", name)}
		}
	}

	return nil
}

// fieldPath turns "Config.Signals.VolumeMonths" into "Signals.VolumeMonths"
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
