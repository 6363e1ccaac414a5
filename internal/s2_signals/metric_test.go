package s2_signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/haugen/internal/contracts"
)

// statement builds a series from period labels and one row; nil cells are absent
func statement(periods []string, row string, cells ...*float64) *contracts.StatementSeries {
	s := &contracts.StatementSeries{Ticker: "T", Rows: map[string][]contracts.Cell{}}
	for _, p := range periods {
		s.Periods = append(s.Periods, contracts.MustParseMonth(p))
	}
	r := make([]contracts.Cell, len(periods))
	for i, c := range cells {
		if c != nil {
			r[i] = contracts.Cell{Value: *c, Present: true}
		}
	}
	s.Rows[row] = r
	return s
}

func f(v float64) *float64 { return &v }

var quarterly = []string{"2011-12", "2012-03", "2012-06", "2012-09", "2012-12", "2013-03"}

func TestMetricExtractor_Extract(t *testing.T) {
	e := NewMetricExtractor()

	tests := []struct {
		name    string
		series  *contracts.StatementSeries
		spec    MetricSpec
		target  string
		want    float64
		wantErr error
	}{
		{
			name:   "sum of four quarters ending at target",
			series: statement(quarterly, "revenue", f(100), f(1), f(2), f(3), f(4), f(5)),
			spec:   MetricSpec{Name: "revenue", Quarters: 4},
			target: "2013-03",
			want:   14,
		},
		{
			name:   "absent quarter counts as zero",
			series: statement(quarterly, "revenue", f(100), f(1), f(2), nil, f(4), f(5)),
			spec:   MetricSpec{Name: "revenue", Quarters: 4},
			target: "2013-03",
			want:   11,
		},
		{
			name:   "target between periods picks the older one",
			series: statement(quarterly, "revenue", f(100), f(1), f(2), f(3), f(4), f(5)),
			spec:   MetricSpec{Name: "revenue", Quarters: 4},
			target: "2013-02",
			want:   10,
		},
		{
			name:    "irregular spacing",
			series:  statement([]string{"2011-12", "2012-03", "2012-06", "2012-10", "2013-01", "2013-03"}, "revenue", f(1), f(1), f(1), f(1), f(1), f(1)),
			spec:    MetricSpec{Name: "revenue", Quarters: 4},
			target:  "2013-03",
			wantErr: contracts.ErrNotQuarterly,
		},
		{
			name:   "gap before the oldest selected quarter is not checked",
			series: statement([]string{"2011-11", "2012-03", "2012-06", "2012-09", "2012-12"}, "revenue", f(100), f(1), f(2), f(3), f(4)),
			spec:   MetricSpec{Name: "revenue", Quarters: 4},
			target: "2012-12",
			want:   10,
		},
		{
			name:    "too few columns",
			series:  statement([]string{"2012-09", "2012-12", "2013-03"}, "revenue", f(1), f(1), f(1)),
			spec:    MetricSpec{Name: "revenue", Quarters: 4},
			target:  "2013-03",
			wantErr: contracts.ErrInsufficientHistory,
		},
		{
			name:    "not enough predecessors of the selected period",
			series:  statement(quarterly, "revenue", f(1), f(1), f(1), f(1), f(1), f(1)),
			spec:    MetricSpec{Name: "revenue", Quarters: 4},
			target:  "2012-09",
			wantErr: contracts.ErrInsufficientHistory,
		},
		{
			name:    "nothing at or before target",
			series:  statement(quarterly, "revenue", f(1), f(1), f(1), f(1), f(1), f(1)),
			spec:    MetricSpec{Name: "revenue", Quarters: 1},
			target:  "2011-11",
			wantErr: contracts.ErrInsufficientHistory,
		},
		{
			name:   "six months old is still current",
			series: statement([]string{"2012-06", "2012-09"}, "total_assets", f(7), f(9)),
			spec:   MetricSpec{Name: "total_assets", Quarters: 1},
			target: "2013-03",
			want:   9,
		},
		{
			name:    "seven months old is stale",
			series:  statement([]string{"2012-05", "2012-08"}, "total_assets", f(7), f(9)),
			spec:    MetricSpec{Name: "total_assets", Quarters: 1},
			target:  "2013-03",
			wantErr: contracts.ErrStale,
		},
		{
			name:   "single quarter ignores cadence",
			series: statement([]string{"2012-01", "2013-03"}, "total_assets", f(7), f(9)),
			spec:   MetricSpec{Name: "total_assets", Quarters: 1},
			target: "2013-03",
			want:   9,
		},
		{
			name:    "single quarter absent value is a miss",
			series:  statement([]string{"2012-12", "2013-03"}, "total_assets", f(7), nil),
			spec:    MetricSpec{Name: "total_assets", Quarters: 1},
			target:  "2013-03",
			wantErr: contracts.ErrEmptyValue,
		},
		{
			name:    "metric row missing",
			series:  statement([]string{"2012-12", "2013-03"}, "revenue", f(7), f(9)),
			spec:    MetricSpec{Name: "total_assets", Quarters: 1},
			target:  "2013-03",
			wantErr: contracts.ErrMetricNotFound,
		},
		{
			name:   "alias matches when primary label is absent",
			series: statement([]string{"2012-12", "2013-03"}, "total_revenues", f(7), f(9)),
			spec:   MetricSpec{Name: "revenue", Quarters: 1, Aliases: []string{"sales", "total_revenues"}},
			target: "2013-03",
			want:   9,
		},
		{
			name:   "columns in descending file order",
			series: statement([]string{"2013-03", "2012-12", "2012-09"}, "net_income", f(3), f(2), f(1)),
			spec:   MetricSpec{Name: "net_income", Quarters: 2},
			target: "2013-03",
			want:   5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract(tt.series, tt.spec, contracts.MustParseMonth(tt.target))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, contracts.IsSoftMiss(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetricExtractor_FirstAliasWins(t *testing.T) {
	s := statement([]string{"2012-12", "2013-03"}, "sales", f(1), f(2))
	s.Rows["total_revenues"] = []contracts.Cell{{Value: 10, Present: true}, {Value: 20, Present: true}}

	spec := MetricSpec{Name: "revenue", Quarters: 1, Aliases: []string{"total_revenues", "sales"}}
	got, err := NewMetricExtractor().Extract(s, spec, contracts.MustParseMonth("2013-03"))
	require.NoError(t, err)
	assert.Equal(t, 20.0, got)
}

func TestMetricExtractor_InvalidQuarters(t *testing.T) {
	s := statement(quarterly, "revenue", f(1), f(1), f(1), f(1), f(1), f(1))
	_, err := NewMetricExtractor().Extract(s, MetricSpec{Name: "revenue"}, contracts.MustParseMonth("2013-03"))
	require.Error(t, err)
	assert.False(t, contracts.IsSoftMiss(err))
}
