package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/haugen/internal/contracts"
	"github.com/wonny/haugen/internal/s0_data/quality"
	"github.com/wonny/haugen/pkg/logger"
)

// ValueMapSource reads derived ValueMaps
type ValueMapSource interface {
	Load(ctx context.Context, month contracts.Month, name string) (contracts.ValueMap, error)
	Names(month contracts.Month) ([]string, error)
}

// DataHandler serves derived ValueMaps and coverage snapshots
// ⭐ SSOT: 데이터 API 핸들러는 이 구조체에서만
type DataHandler struct {
	store       ValueMapSource
	qualityRepo *quality.Repository
	logger      *logger.Logger
}

// NewDataHandler creates a new data handler; qualityRepo may be nil
func NewDataHandler(store ValueMapSource, qualityRepo *quality.Repository, log *logger.Logger) *DataHandler {
	return &DataHandler{
		store:       store,
		qualityRepo: qualityRepo,
		logger:      log,
	}
}

// ValueMapResponse is one stage output
type ValueMapResponse struct {
	Month  string             `json:"month"`
	Name   string             `json:"name"`
	Count  int                `json:"count"`
	Values contracts.ValueMap `json:"values"`
}

// ListValueMaps returns the map names stored for a month
// GET /api/valuemaps/{month}
func (h *DataHandler) ListValueMaps(w http.ResponseWriter, r *http.Request) {
	month, ok := parseMonth(w, r)
	if !ok {
		return
	}

	names, err := h.store.Names(month)
	if err != nil {
		h.fail(w, err, "Failed to list value maps")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"month": month.String(),
		"names": names,
	})
}

// GetValueMap returns one stage output
// GET /api/valuemaps/{month}/{name}
func (h *DataHandler) GetValueMap(w http.ResponseWriter, r *http.Request) {
	month, ok := parseMonth(w, r)
	if !ok {
		return
	}
	name := mux.Vars(r)["name"]

	values, err := h.store.Load(r.Context(), month, name)
	if err != nil {
		h.fail(w, err, "Failed to load value map")
		return
	}

	respondJSON(w, http.StatusOK, ValueMapResponse{
		Month:  month.String(),
		Name:   name,
		Count:  len(values),
		Values: values,
	})
}

// GetQuality returns the statement coverage snapshot of a month
// GET /api/quality/{month}
func (h *DataHandler) GetQuality(w http.ResponseWriter, r *http.Request) {
	month, ok := parseMonth(w, r)
	if !ok {
		return
	}
	if h.qualityRepo == nil {
		respondError(w, http.StatusNotFound, "Coverage snapshots are not enabled")
		return
	}

	snapshot, err := h.qualityRepo.GetByMonth(month)
	if err != nil {
		h.fail(w, err, "Failed to retrieve quality snapshot")
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// fail maps missing inputs to 404 and everything else to 500
func (h *DataHandler) fail(w http.ResponseWriter, err error, message string) {
	failWith(h.logger, w, err, message)
}

// Helper functions

func failWith(log *logger.Logger, w http.ResponseWriter, err error, message string) {
	if errors.Is(err, contracts.ErrMissingFile) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	log.WithError(err).Error(message)
	respondError(w, http.StatusInternalServerError, message)
}

func parseMonth(w http.ResponseWriter, r *http.Request) (contracts.Month, bool) {
	month, err := contracts.ParseMonth(mux.Vars(r)["month"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return contracts.Month{}, false
	}
	return month, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
