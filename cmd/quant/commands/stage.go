package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/haugen/internal/audit"
	"github.com/wonny/haugen/internal/brain"
	"github.com/wonny/haugen/internal/s2_signals"
)

// stageCmd runs a single pipeline stage
var stageCmd = &cobra.Command{
	Use:   "stage <name>",
	Short: "단일 단계 실행",
	Long: `파이프라인의 한 단계만 실행합니다.
이전 단계 결과는 <output_dir>/<month>/ 에서 읽습니다.

Stages:
  price     - 학습 월 가격 (price)
  volume    - 거래대금 (tv)
  metric    - 재무 지표 (outstanding_shares, net_income, ...)
  excess    - 초과수익률 (er1, er2, er6, er12)
  factor    - 비율 팩터 (tv2mc, e2p, roe, b2p, cf2p)
  score     - 가중 z-score (scores)
  filter    - 시가총액 + 유동성 필터 (mc, filtered_scores)
  measure   - 미래 가격 + 예측력 측정

Flags:
  --metric    metric 단계에서 계산할 지표 (기본: 전체)
  --horizon   measure 단계의 기간 (기본: max_date 이내 전체)

Example:
  go run ./cmd/quant stage price
  go run ./cmd/quant stage metric --metric revenue --metric net_income
  go run ./cmd/quant stage measure --horizon 1 --horizon 3`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: brain.StageNames,
	RunE:      runStage,
}

var (
	stageMetrics  []string
	stageHorizons []int
)

func init() {
	rootCmd.AddCommand(stageCmd)

	stageCmd.Flags().StringSliceVar(&stageMetrics, "metric", nil, "계산할 지표 이름")
	stageCmd.Flags().IntSliceVar(&stageHorizons, "horizon", nil, "측정 기간 (개월)")
}

func runStage(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	stage := args[0]
	fmt.Fprintf(out, "=== Haugen Stage: %s ===\n", stage)

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

	if len(stageMetrics) > 0 {
		specs, err := selectMetrics(runConfig.Metrics, stageMetrics)
		if err != nil {
			return err
		}
		runConfig.Metrics = specs
	}
	if len(stageHorizons) > 0 {
		runConfig.Horizons = stageHorizons
	}

	PrintRunHeader(out, RunHeader{
		Title:   "Stage " + stage,
		Model:   a.model.Meta.ModelID,
		Month:   month.String(),
		Tickers: len(tickers),
	})

	result, err := a.orchestrator.RunStage(cmd.Context(), stage, runConfig)
	if err != nil {
		return err
	}

	if err := audit.WriteStages(out, result.Stages); err != nil {
		return err
	}
	for _, h := range result.Horizons {
		fmt.Fprintln(out)
		title := fmt.Sprintf("%d month(s) forward (%s)", h.Months, h.Future)
		if err := audit.WriteResult(out, title, h.Result); err != nil {
			return err
		}
	}

	PrintCompletion(out, "Stage "+stage, result.Duration)
	return nil
}

// selectMetrics keeps the named metric definitions, in the given order
func selectMetrics(specs []s2_signals.MetricSpec, names []string) ([]s2_signals.MetricSpec, error) {
	byName := make(map[string]s2_signals.MetricSpec, len(specs))
	known := make([]string, 0, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
		known = append(known, s.Name)
	}

	out := make([]s2_signals.MetricSpec, 0, len(names))
	for _, n := range names {
		s, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown metric %q (known: %s)", n, strings.Join(known, ", "))
		}
		out = append(out, s)
	}
	return out, nil
}
