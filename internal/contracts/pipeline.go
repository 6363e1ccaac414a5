package contracts

import (
	"sort"
	"time"
)

// StageSummary reports per-stage ticker counts
// ⭐ SSOT: 단계별 처리 결과 요약 (processed / succeeded / skipped)
type StageSummary struct {
	Stage       string         `json:"stage"`
	Processed   int            `json:"processed"`
	Succeeded   int            `json:"succeeded"`
	Skipped     int            `json:"skipped"`
	SkipReasons map[string]int `json:"skip_reasons,omitempty"`
	Output      string         `json:"output,omitempty"`
	Duration    time.Duration  `json:"duration"`
}

// NewStageSummary creates an empty summary for a stage
func NewStageSummary(stage string) StageSummary {
	return StageSummary{
		Stage:       stage,
		SkipReasons: make(map[string]int),
	}
}

// RecordSkip counts one soft miss
func (s *StageSummary) RecordSkip(err error) {
	s.Skipped++
	if s.SkipReasons == nil {
		s.SkipReasons = make(map[string]int)
	}
	s.SkipReasons[SkipReason(err)]++
}

// Reasons returns skip reasons in ascending order
func (s *StageSummary) Reasons() []string {
	reasons := make([]string, 0, len(s.SkipReasons))
	for r := range s.SkipReasons {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	return reasons
}
