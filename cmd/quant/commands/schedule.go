package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/haugen/internal/contracts"
	"github.com/wonny/haugen/internal/scheduler"
	"github.com/wonny/haugen/internal/scheduler/jobs"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "정기 실행 관리",
	Long: `매월 파이프라인을 자동 실행합니다.

등록되는 작업:
- factor_pipeline: 직전 완료 월 기준 전체 파이프라인 (기본: 매월 2일 06:00)

Subcommands:
  start   - 스케줄러 시작
  run     - 작업 즉시 실행
  next    - 다음 실행 시각 조회

Example:
  go run ./cmd/quant schedule start
  go run ./cmd/quant schedule run`,
}

var (
	scheduleStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 작업을 스케줄합니다.

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	scheduleRunCmd = &cobra.Command{
		Use:   "run",
		Short: "작업 즉시 실행",
		RunE:  runJobNow,
	}

	scheduleNextCmd = &cobra.Command{
		Use:   "next",
		Short: "다음 실행 시각 조회",
		RunE:  showNext,
	}
)

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.AddCommand(scheduleStartCmd)
	scheduleCmd.AddCommand(scheduleRunCmd)
	scheduleCmd.AddCommand(scheduleNextCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Haugen Scheduler ===")

	sched, job, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	next, _ := sched.Next(job.Name())
	fmt.Fprintln(out, "\n✅ Scheduler started successfully")
	fmt.Fprintln(out, "\nRegistered jobs:")
	for _, name := range sched.GetAllJobs() {
		fmt.Fprintf(out, "  - %s (%s), next run %s\n", name, job.Schedule(), next.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Fprintln(out, "\nShutting down scheduler...")
	sched.Stop()
	fmt.Fprintln(out, "Scheduler stopped")

	return nil
}

func runJobNow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	sched, job, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Fprintf(out, "Running job: %s\n", job.Name())
	result, err := sched.RunNow(cmd.Context(), job.Name())
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}
	if !result.Success {
		PrintError(out, fmt.Sprintf("Job %s failed: %s", result.JobName, result.Error))
		return fmt.Errorf("job %s failed", result.JobName)
	}

	PrintCompletion(out, "Job "+result.JobName, result.Duration)
	return nil
}

func showNext(cmd *cobra.Command, args []string) error {
	sched, job, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// cron computes activation times only while running
	sched.Start()
	defer sched.Stop()

	next, err := sched.Next(job.Name())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	PrintKeyValue(out, "job", job.Name(), 10)
	PrintKeyValue(out, "schedule", job.Schedule(), 10)
	PrintKeyValue(out, "next run", next.Format("2006-01-02 15:04:05"), 10)
	PrintKeyValue(out, "month", jobs.LatestCompleteMonth(next).String(), 10)
	return nil
}

func initScheduler(cmd *cobra.Command) (*scheduler.Scheduler, scheduler.Job, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, nil, err
	}
	return initSchedulerFor(a)
}

// initSchedulerFor registers the monthly pipeline job
func initSchedulerFor(a *app) (*scheduler.Scheduler, scheduler.Job, error) {
	tickers, err := a.universe()
	if err != nil {
		return nil, nil, fmt.Errorf("load universe: %w", err)
	}

	run := func(ctx context.Context, month contracts.Month) error {
		_, err := a.orchestrator.Run(ctx, a.runConfig(month, tickers))
		return err
	}
	job := jobs.NewPipelineJob(a.model.Schedule.Cron, a.qualityGate(), tickers, run, a.log)

	sched := scheduler.New(a.log)
	if err := sched.AddJob(job); err != nil {
		return nil, nil, err
	}
	return sched, job, nil
}
