package audit

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/wonny/haugen/internal/backtest"
	"github.com/wonny/haugen/internal/contracts"
)

// WriteStages prints the per-stage summary table
func WriteStages(w io.Writer, stages []contracts.StageSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tPROCESSED\tSUCCEEDED\tSKIPPED\tDURATION")
	for _, s := range stages {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", s.Stage, s.Processed, s.Succeeded, s.Skipped, s.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}

// WriteResult prints one analyzer result
func WriteResult(w io.Writer, title string, r *backtest.Result) error {
	fmt.Fprintf(w, "== %s ==\n", title)
	fmt.Fprintf(w, "%d tickers\n", r.Tickers)
	if r.Tickers == 0 {
		return nil
	}
	fmt.Fprintf(w, "max score = %f, min score = %f, mean score = %f\n", r.MaxScore, r.MinScore, r.MeanScore)
	fmt.Fprintf(w, "%d of %d predicted to go up\n", r.PredictedUp, r.Tickers)
	fmt.Fprintf(w, "%d of %d did go up\n", r.ActualUp, r.Tickers)
	fmt.Fprintf(w, "%d of %d correct signs (%.2f%%)\n", r.Correct, r.Tickers, 100*r.SignAgreement)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "BUCKET\tSTOCKS\tMEAN RETURN\t")
	for _, b := range r.Buckets {
		fmt.Fprintf(tw, "%d\t%d\t%.2f%%\t\n", b.Index, b.Count, 100*b.MeanReturn)
	}
	for i := range r.Top {
		fmt.Fprintf(tw, "top %d\t%d\t%.2f%%\t\n", r.Top[i].N, r.Top[i].Count, 100*r.Top[i].MeanReturn)
	}
	for i := range r.Bottom {
		fmt.Fprintf(tw, "bottom %d\t%d\t%.2f%%\t\n", r.Bottom[i].N, r.Bottom[i].Count, 100*r.Bottom[i].MeanReturn)
	}
	return tw.Flush()
}

// WriteReport prints stages and every horizon of a run
func WriteReport(w io.Writer, report *Report) error {
	fmt.Fprintf(w, "run %s, training month %s\n\n", report.RunID, report.Month)
	if err := WriteStages(w, report.Stages); err != nil {
		return err
	}
	for _, h := range report.Horizons {
		fmt.Fprintln(w)
		title := fmt.Sprintf("%d month(s) forward (%s)", h.Months, h.Future)
		if err := WriteResult(w, title, h.Result); err != nil {
			return err
		}
	}
	return nil
}
