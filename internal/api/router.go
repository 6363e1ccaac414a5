package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/haugen/internal/api/handlers"
	"github.com/wonny/haugen/pkg/logger"
)

// Route variable patterns; names never contain path separators
const (
	monthPattern = "{month:[0-9]{4}-[0-9]{2}}"
	namePattern  = "{name:[A-Za-z0-9_-]+}"
)

// Handlers groups the endpoint handlers
type Handlers struct {
	Data     *handlers.DataHandler
	Pipeline *handlers.PipelineHandler
	Ranking  *handlers.RankingHandler
	Metrics  http.Handler // nil disables /metrics
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Derived data
	api.HandleFunc("/valuemaps/"+monthPattern, h.Data.ListValueMaps).Methods("GET")
	api.HandleFunc("/valuemaps/"+monthPattern+"/"+namePattern, h.Data.GetValueMap).Methods("GET")
	api.HandleFunc("/quality/"+monthPattern, h.Data.GetQuality).Methods("GET")

	// Run reports
	api.HandleFunc("/reports/"+monthPattern, h.Pipeline.GetReport).Methods("GET")
	api.HandleFunc("/backtest/"+monthPattern, h.Pipeline.GetBacktest).Methods("GET")

	if h.Ranking != nil {
		api.HandleFunc("/ranking/"+monthPattern, h.Ranking.GetRanking).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "haugen-api",
	})
}

// statusRecorder captures the response code for request logs
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
