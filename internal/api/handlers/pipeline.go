package handlers

import (
	"net/http"
	"strconv"

	"github.com/wonny/haugen/internal/audit"
	"github.com/wonny/haugen/pkg/logger"
)

// PipelineHandler serves run reports and backtest results
// ⭐ SSOT: 파이프라인 리포트 API 핸들러는 여기서만
type PipelineHandler struct {
	reports *audit.Repository
	logger  *logger.Logger
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(reports *audit.Repository, log *logger.Logger) *PipelineHandler {
	return &PipelineHandler{
		reports: reports,
		logger:  log,
	}
}

// GetReport returns the full run report of a month
// GET /api/reports/{month}
func (h *PipelineHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	month, ok := parseMonth(w, r)
	if !ok {
		return
	}

	report, err := h.reports.Load(month)
	if err != nil {
		failWith(h.logger, w, err, "Failed to load report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// GetBacktest returns the analyzer results of a month, optionally for one
// forward horizon
// GET /api/backtest/{month}?horizon=N
func (h *PipelineHandler) GetBacktest(w http.ResponseWriter, r *http.Request) {
	month, ok := parseMonth(w, r)
	if !ok {
		return
	}

	report, err := h.reports.Load(month)
	if err != nil {
		failWith(h.logger, w, err, "Failed to load report")
		return
	}

	raw := r.URL.Query().Get("horizon")
	if raw == "" {
		respondJSON(w, http.StatusOK, report.Horizons)
		return
	}

	months, err := strconv.Atoi(raw)
	if err != nil || months < 1 {
		respondError(w, http.StatusBadRequest, "horizon must be a positive integer")
		return
	}
	result, found := report.Horizon(months)
	if !found {
		respondError(w, http.StatusNotFound, "horizon "+raw+" not measured for "+month.String())
		return
	}

	respondJSON(w, http.StatusOK, result)
}
