package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/haugen/internal/audit"
	"github.com/wonny/haugen/internal/s0_data/quality"
)

// pipelineCmd represents the pipeline command
var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "전체 파이프라인 실행",
	Long: `학습 월 기준으로 모든 단계를 순서대로 실행합니다.

price → tv → metrics → er → tv2mc/e2p/roe/b2p/cf2p → scores
→ mc → filtered_scores → price_<YYYY-MM> → 예측력 측정

각 단계 결과는 <output_dir>/<month>/<name>.txt 로 저장되고,
실행 리포트는 report.json (옵션: report.xlsx)으로 남습니다.

Flags:
  --skip-validate   커버리지 검증 생략

Example:
  go run ./cmd/quant pipeline
  go run ./cmd/quant pipeline --month 2013-03 --workers 8`,
	RunE: runPipeline,
}

var (
	pipelineSkipValidate bool
)

func init() {
	rootCmd.AddCommand(pipelineCmd)

	pipelineCmd.Flags().BoolVar(&pipelineSkipValidate, "skip-validate", false, "커버리지 검증 생략")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Haugen Factor Pipeline ===")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	tickers, err := a.universe()
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}
	month := a.model.TargetMonth()
	runConfig := a.runConfig(month, tickers)

	PrintRunHeader(out, RunHeader{
		Title:   "Pipeline Run",
		RunID:   runConfig.RunID,
		Model:   a.model.Meta.ModelID,
		Month:   month.String(),
		Tickers: len(tickers),
	})

	// 1. 커버리지 검증 (경고만)
	if !pipelineSkipValidate {
		snapshot, err := a.qualityGate().Check(cmd.Context(), tickers)
		if err != nil {
			return fmt.Errorf("coverage validation: %w", err)
		}
		if err := a.qualityRepo.SaveSnapshot(month, snapshot); err != nil {
			return fmt.Errorf("save coverage snapshot: %w", err)
		}
		if !snapshot.Passed {
			PrintWarning(out, fmt.Sprintf("Statement coverage %.2f%% below threshold: %v",
				100*snapshot.QualityScore, snapshot.Failing(quality.DefaultConfig().MinCoverage)))
		}
	}

	// 2. 파이프라인 실행
	result, err := a.orchestrator.Run(cmd.Context(), runConfig)
	if err != nil {
		if len(result.Stages) > 0 {
			_ = audit.WriteStages(out, result.Stages)
		}
		PrintError(out, fmt.Sprintf("Pipeline failed after %v", result.CompletedStages))
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	// 3. 결과 출력
	fmt.Fprintln(out)
	if err := audit.WriteReport(out, result.Report); err != nil {
		return err
	}
	PrintCompletion(out, "Pipeline run "+result.RunID, result.Duration)
	return nil
}
