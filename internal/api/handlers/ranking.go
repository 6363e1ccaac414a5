package handlers

import (
	"net/http"
	"strconv"

	"github.com/wonny/haugen/internal/selection"
	"github.com/wonny/haugen/pkg/logger"
)

// defaultRankingLimit caps the ranking response when no limit is given
const defaultRankingLimit = 30

// RankingHandler handles ranking-related API endpoints
// ⭐ SSOT: 랭킹 API 핸들러는 이 구조체에서만
type RankingHandler struct {
	store  ValueMapSource
	source string // map to rank, normally filtered_scores
	logger *logger.Logger
}

// NewRankingHandler creates a handler ranking the named score map
func NewRankingHandler(store ValueMapSource, source string, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		store:  store,
		source: source,
		logger: log,
	}
}

// RankingResponse lists the best-scored tickers of a month
type RankingResponse struct {
	Month  string             `json:"month"`
	Source string             `json:"source"`
	Total  int                `json:"total"`
	Items  []selection.Ranked `json:"items"`
}

// GetRanking returns tickers by descending score
// GET /api/ranking/{month}?limit=N (0 = all)
func (h *RankingHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	month, ok := parseMonth(w, r)
	if !ok {
		return
	}

	limit := defaultRankingLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	scores, err := h.store.Load(r.Context(), month, h.source)
	if err != nil {
		failWith(h.logger, w, err, "Failed to load scores")
		return
	}

	respondJSON(w, http.StatusOK, RankingResponse{
		Month:  month.String(),
		Source: h.source,
		Total:  len(scores),
		Items:  selection.Rank(scores, limit),
	})
}
