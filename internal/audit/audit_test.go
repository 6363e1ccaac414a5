package audit

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/haugen/internal/backtest"
	"github.com/wonny/haugen/internal/contracts"
)

func sampleReport() *Report {
	return &Report{
		RunID: "run-1",
		Month: "2013-03",
		Stages: []contracts.StageSummary{
			{Stage: "price", Processed: 3, Succeeded: 2, Skipped: 1, Duration: 5 * time.Millisecond},
		},
		Horizons: []HorizonResult{
			{
				Months: 1,
				Future: "2013-04",
				Result: &backtest.Result{
					Tickers:       2,
					MaxScore:      0.2,
					MinScore:      -0.1,
					PredictedUp:   1,
					ActualUp:      1,
					Correct:       2,
					SignAgreement: 1,
					Buckets:       []backtest.Bucket{{Index: 1, Count: 2, MeanReturn: 0.05}},
					Top:           []backtest.Position{{Side: "top", N: 1, Count: 1, MeanReturn: 0.1}},
					Bottom:        []backtest.Position{{Side: "bottom", N: 1, Count: 1, MeanReturn: -0.1}},
				},
			},
		},
		CreatedAt: time.Date(2013, 4, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestRepository_SaveLoad(t *testing.T) {
	repo := NewRepository(t.TempDir())
	report := sampleReport()

	require.NoError(t, repo.Save(report))

	loaded, err := repo.Load(contracts.MustParseMonth("2013-03"))
	require.NoError(t, err)
	assert.Equal(t, report.RunID, loaded.RunID)

	h, ok := loaded.Horizon(1)
	require.True(t, ok)
	assert.Equal(t, 2, h.Result.Tickers)

	_, ok = loaded.Horizon(6)
	assert.False(t, ok)

	_, err = repo.Load(contracts.MustParseMonth("2013-04"))
	assert.ErrorIs(t, err, contracts.ErrMissingFile)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "run run-1")
	assert.Contains(t, out, "2 of 2 correct signs (100.00%)")
	assert.Contains(t, out, "top 1")
	assert.Contains(t, out, "price")
}

func TestExportWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, ExportWorkbook(sampleReport(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Stages", "1M"}, f.GetSheetList())

	v, err := f.GetCellValue("1M", "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	v, err = f.GetCellValue("Stages", "A6")
	require.NoError(t, err)
	assert.Equal(t, "price", v)
}
