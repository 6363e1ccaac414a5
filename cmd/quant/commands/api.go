package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/haugen/internal/api"
	"github.com/wonny/haugen/internal/api/handlers"
	"github.com/wonny/haugen/internal/brain"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `읽기 전용 REST API 서버를 시작합니다.

Endpoints:
  GET  /health                        - Health check
  GET  /metrics                       - Prometheus 단계 카운터
  GET  /api/valuemaps/{month}         - 저장된 ValueMap 목록
  GET  /api/valuemaps/{month}/{name}  - ValueMap 조회
  GET  /api/quality/{month}           - 커버리지 스냅샷
  GET  /api/reports/{month}           - 실행 리포트
  GET  /api/backtest/{month}?horizon=N - 예측력 측정 결과
  GET  /api/ranking/{month}?limit=N   - filtered_scores 순위

Flags:
  --port       API 서버 포트 (기본: $PORT)
  --schedule   월간 파이프라인 스케줄러를 함께 실행

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8080 --schedule`,
	RunE: runAPIServer,
}

var (
	apiPort     string
	apiSchedule bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트")
	apiCmd.Flags().BoolVar(&apiSchedule, "schedule", false, "스케줄러 함께 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Haugen API Server ===")

	// 1. Load config and components
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	// 2. Create handlers
	h := api.Handlers{
		Data:     handlers.NewDataHandler(a.store, a.qualityRepo, a.log),
		Pipeline: handlers.NewPipelineHandler(a.auditRepo, a.log),
		Ranking:  handlers.NewRankingHandler(a.store, brain.NameFilteredScores, a.log),
	}
	if a.cfg.MetricsEnabled {
		h.Metrics = a.recorder.Handler()
	}

	// 3. Create router and server
	router := api.NewRouter(h, a.log)
	server := api.New(a.cfg, a.log, router)

	// 4. Optional scheduler sharing the same recorder
	if apiSchedule {
		sched, job, err := initSchedulerFor(a)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		fmt.Fprintf(out, "📅 Scheduler running: %s (%s)\n", job.Name(), job.Schedule())
	}

	// 5. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Fprintf(out, "\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	a.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
