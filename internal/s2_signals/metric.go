package s2_signals

import (
	"fmt"
	"sort"

	"github.com/wonny/haugen/internal/contracts"
)

// Extraction policy
const (
	DefaultStalenessMonths = 6 // newest usable period may lag the target by this much
	QuarterSpacingMonths   = 3
)

// MetricSpec describes one statement metric to extract
type MetricSpec struct {
	Name     string   // output name and primary row label
	Source   string   // statement source (income_statement, balance_sheet, cash_flow)
	Quarters int      // k: number of trailing quarters to sum
	Aliases  []string // alternative row labels, tried in order after Name
	Optional bool     // ratio joins default a missing ticker to zero
}

// Candidates returns the row labels to try, in priority order
func (s MetricSpec) Candidates() []string {
	out := make([]string, 0, len(s.Aliases)+1)
	out = append(out, s.Name)
	return append(out, s.Aliases...)
}

// MetricExtractor reads point-in-time metrics from statement series
// ⭐ SSOT: 분기 재무 지표 추출 규칙 (최신성, 분기 간격)은 여기서만
type MetricExtractor struct {
	stalenessMonths int
	spacingMonths   int
}

// NewMetricExtractor creates an extractor with the default policy
func NewMetricExtractor() *MetricExtractor {
	return &MetricExtractor{
		stalenessMonths: DefaultStalenessMonths,
		spacingMonths:   QuarterSpacingMonths,
	}
}

// Extract returns the metric value as of target.
//
// The newest period d <= target is selected together with the k-1 periods
// before it. A soft miss is returned when fewer than k+1 periods exist, when
// d has fewer than k predecessors, when d is more than six months older than
// target, or (k > 1) when consecutive selected periods are not one quarter
// apart. For k = 1 an unreported cell is a miss; for k > 1 it counts as zero.
func (e *MetricExtractor) Extract(series *contracts.StatementSeries, spec MetricSpec, target contracts.Month) (float64, error) {
	k := spec.Quarters
	if k < 1 {
		return 0, fmt.Errorf("metric %s: quarters must be >= 1, got %d", spec.Name, k)
	}

	n := len(series.Periods)
	if n < k+1 {
		return 0, fmt.Errorf("%w: want at least %d periods, have %d", contracts.ErrInsufficientHistory, k+1, n)
	}

	// column indexes in ascending period order
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return series.Periods[order[a]].Before(series.Periods[order[b]])
	})

	pos := -1
	for i := n - 1; i >= 0; i-- {
		if !series.Periods[order[i]].After(target) {
			pos = i
			break
		}
	}
	if pos < k {
		return 0, fmt.Errorf("%w: no period at or before %s with %d predecessors", contracts.ErrInsufficientHistory, target, k)
	}

	latest := series.Periods[order[pos]]
	if lag := contracts.MonthsBetween(target, latest); lag > e.stalenessMonths {
		return 0, fmt.Errorf("%w: latest period %s is %d months before %s", contracts.ErrStale, latest, lag, target)
	}

	// Cadence covers the k-1 gaps between selected periods only; the
	// (k+1)-th column has to exist but its spacing is not checked.
	selected := order[pos-k+1 : pos+1]
	for i := 1; i < len(selected); i++ {
		prev := series.Periods[selected[i-1]]
		cur := series.Periods[selected[i]]
		if gap := contracts.MonthsBetween(cur, prev); gap != e.spacingMonths {
			return 0, fmt.Errorf("%w: %s follows %s after %d months", contracts.ErrNotQuarterly, cur, prev, gap)
		}
	}

	_, row, ok := series.Lookup(spec.Candidates()...)
	if !ok {
		return 0, fmt.Errorf("%w: %s", contracts.ErrMetricNotFound, spec.Name)
	}

	if k == 1 {
		cell := row[selected[0]]
		if !cell.Present {
			return 0, fmt.Errorf("%w: %s at %s", contracts.ErrEmptyValue, spec.Name, latest)
		}
		return cell.Value, nil
	}

	sum := 0.0
	for _, col := range selected {
		if row[col].Present {
			sum += row[col].Value
		}
	}
	return sum, nil
}
