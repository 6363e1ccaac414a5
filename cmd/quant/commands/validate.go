package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/haugen/internal/s0_data/quality"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "재무제표 커버리지 검증",
	Long: `재무제표 소스별로 각 지표를 제공하는 종목 수를 셉니다.

- 지표 이름은 alias 순서대로 찾습니다
- 예외 종목(exceptions)은 분모에서 제외합니다
- 결과는 <output_dir>/<month>/quality.json 으로 저장됩니다

Flags:
  --missing   누락 종목을 지표별로 출력
  --strict    기준 미달이면 실패로 종료

Example:
  go run ./cmd/quant validate
  go run ./cmd/quant validate --missing --strict`,
	RunE: runValidate,
}

var (
	validateShowMissing bool
	validateStrict      bool
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateShowMissing, "missing", false, "누락 종목 출력")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "기준 미달이면 실패")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Haugen Coverage Validation ===")

	start := time.Now()
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	tickers, err := a.universe()
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}
	month := a.model.TargetMonth()

	PrintRunHeader(out, RunHeader{
		Title:   "Statement Coverage",
		Model:   a.model.Meta.ModelID,
		Month:   month.String(),
		Tickers: len(tickers),
	})

	snapshot, err := a.qualityGate().Check(cmd.Context(), tickers)
	if err != nil {
		return fmt.Errorf("coverage validation: %w", err)
	}
	if err := a.qualityRepo.SaveSnapshot(month, snapshot); err != nil {
		return fmt.Errorf("save coverage snapshot: %w", err)
	}

	if err := writeCoverage(out, snapshot, validateShowMissing); err != nil {
		return err
	}

	minCoverage := quality.DefaultConfig().MinCoverage
	if !snapshot.Passed {
		failing := snapshot.Failing(minCoverage)
		PrintWarning(out, fmt.Sprintf("%d required metric(s) below %.0f%% coverage", len(failing), 100*minCoverage))
		PrintList(out, failing)
		if validateStrict {
			return fmt.Errorf("coverage validation failed: %s", strings.Join(failing, ", "))
		}
	}

	PrintCompletion(out, "Validation", time.Since(start))
	return nil
}

// writeCoverage prints one row per source and metric
func writeCoverage(w io.Writer, s *quality.Snapshot, showMissing bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tMETRIC\tLOADED\tCOVERED\tSKIPPED\tCOVERAGE\t")
	for _, src := range s.Sources {
		for _, m := range src.Metrics {
			name := m.Metric
			if m.Optional {
				name += " (optional)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.2f%%\t\n",
				src.Source, name, src.Loaded, m.Covered, m.Skipped, 100*m.Coverage)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	for _, src := range s.Sources {
		if len(src.MissingFiles) > 0 {
			PrintKeyValue(w, src.Source+" missing files", fmt.Sprintf("%d", len(src.MissingFiles)), 30)
		}
		if !showMissing {
			continue
		}
		for _, m := range src.Metrics {
			if len(m.Missing) > 0 {
				PrintKeyValue(w, src.Source+"/"+m.Metric, strings.Join(m.Missing, " "), 30)
			}
		}
	}
	PrintKeyValue(w, "quality score", fmt.Sprintf("%.2f%%", 100*s.QualityScore), 30)
	return nil
}
