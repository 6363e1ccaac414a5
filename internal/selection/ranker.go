package selection

import (
	"sort"

	"github.com/wonny/haugen/internal/contracts"
)

// Ranked is one ticker's position in a score ranking
type Ranked struct {
	Rank   int     `json:"rank"`
	Ticker string  `json:"ticker"`
	Score  float64 `json:"score"`
}

// Rank orders scores descending (ties by ticker ascending) and returns at
// most limit entries; limit <= 0 returns all.
// ⭐ SSOT: 점수 순위 정렬은 여기서만
func Rank(scores contracts.ValueMap, limit int) []Ranked {
	ranked := make([]Ranked, 0, len(scores))
	for t, s := range scores {
		ranked = append(ranked, Ranked{Ticker: t, Score: s})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Ticker < ranked[j].Ticker
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
