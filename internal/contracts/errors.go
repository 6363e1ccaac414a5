package contracts

import (
	"errors"
	"fmt"
)

// Error taxonomy
//
// Soft misses wrap ErrUnavailable: the ticker is dropped from the stage
// output and the batch continues. Contract violations wrap ErrContract and
// abort the whole stage.
var (
	ErrUnavailable = errors.New("unavailable")
	ErrContract    = errors.New("data contract violation")
)

// Soft misses
var (
	ErrMissingFile         = fmt.Errorf("%w: input file is missing", ErrUnavailable)
	ErrInsufficientHistory = fmt.Errorf("%w: not enough quarters", ErrUnavailable)
	ErrStale               = fmt.Errorf("%w: most recent quarter is not recent enough", ErrUnavailable)
	ErrNotQuarterly        = fmt.Errorf("%w: data is not quarterly", ErrUnavailable)
	ErrMetricNotFound      = fmt.Errorf("%w: metric not found", ErrUnavailable)
	ErrEmptyValue          = fmt.Errorf("%w: metric value is empty", ErrUnavailable)
	ErrPriceNotFound       = fmt.Errorf("%w: price sample not found", ErrUnavailable)
	ErrInsufficientMonths  = fmt.Errorf("%w: not enough months of volume data", ErrUnavailable)
	ErrSkippedTicker       = fmt.Errorf("%w: ticker is skipped by exception table", ErrUnavailable)
)

// Contract violations
var (
	ErrMalformed       = fmt.Errorf("%w: malformed input", ErrContract)
	ErrBenchmarkGap    = fmt.Errorf("%w: benchmark sample missing", ErrContract)
	ErrBenchmarkTicker = fmt.Errorf("%w: ticker denotes the benchmark", ErrContract)
	ErrNonFinite       = fmt.Errorf("%w: non-finite value", ErrContract)
	ErrMissingFactor   = fmt.Errorf("%w: factor not in weight table", ErrContract)
	ErrNegativePrice   = fmt.Errorf("%w: negative price", ErrContract)
)

// IsSoftMiss reports whether err only affects a single ticker
func IsSoftMiss(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// TickerError attaches the ticker to a per-ticker failure
type TickerError struct {
	Ticker string
	Err    error
}

func (e *TickerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Ticker, e.Err)
}

func (e *TickerError) Unwrap() error {
	return e.Err
}

// SkipReason returns a short label for a soft miss, used in summaries
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingFile):
		return "missing_file"
	case errors.Is(err, ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, ErrStale):
		return "stale"
	case errors.Is(err, ErrNotQuarterly):
		return "not_quarterly"
	case errors.Is(err, ErrMetricNotFound):
		return "metric_not_found"
	case errors.Is(err, ErrEmptyValue):
		return "empty_value"
	case errors.Is(err, ErrPriceNotFound):
		return "price_not_found"
	case errors.Is(err, ErrInsufficientMonths):
		return "insufficient_months"
	case errors.Is(err, ErrSkippedTicker):
		return "skipped"
	default:
		return "other"
	}
}
