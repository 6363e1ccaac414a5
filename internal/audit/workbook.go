package audit

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/haugen/internal/backtest"
)

// ExportWorkbook writes the report to an .xlsx file: a Stages sheet plus
// one sheet per forward horizon.
func ExportWorkbook(report *Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const stages = "Stages"
	if err := f.SetSheetName(f.GetSheetName(0), stages); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	rows := [][]interface{}{
		{"run_id", report.RunID},
		{"month", report.Month},
		{"config_hash", report.ConfigHash},
		{},
		{"stage", "processed", "succeeded", "skipped", "duration_ms"},
	}
	for _, s := range report.Stages {
		rows = append(rows, []interface{}{s.Stage, s.Processed, s.Succeeded, s.Skipped, s.Duration.Milliseconds()})
	}
	if err := writeRows(f, stages, rows); err != nil {
		return err
	}

	for _, h := range report.Horizons {
		sheet := fmt.Sprintf("%dM", h.Months)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if err := writeRows(f, sheet, resultRows(h)); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func resultRows(h HorizonResult) [][]interface{} {
	r := h.Result
	if r == nil {
		r = &backtest.Result{}
	}

	rows := [][]interface{}{
		{"future_month", h.Future},
		{"tickers", r.Tickers},
		{"max_score", r.MaxScore},
		{"min_score", r.MinScore},
		{"mean_score", r.MeanScore},
		{"predicted_up", r.PredictedUp},
		{"actual_up", r.ActualUp},
		{"correct", r.Correct},
		{"sign_agreement", r.SignAgreement},
		{},
		{"bucket", "count", "mean_return"},
	}
	for _, b := range r.Buckets {
		rows = append(rows, []interface{}{b.Index, b.Count, b.MeanReturn})
	}
	rows = append(rows, []interface{}{}, []interface{}{"position", "n", "count", "mean_return"})
	for _, p := range r.Top {
		rows = append(rows, []interface{}{p.Side, p.N, p.Count, p.MeanReturn})
	}
	for _, p := range r.Bottom {
		rows = append(rows, []interface{}{p.Side, p.N, p.Count, p.MeanReturn})
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
