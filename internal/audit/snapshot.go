package audit

import (
	"time"

	"github.com/wonny/haugen/internal/backtest"
	"github.com/wonny/haugen/internal/contracts"
)

// HorizonResult is the analyzer output for one forward horizon
type HorizonResult struct {
	Months int              `json:"months"` // forward horizon
	Future string           `json:"future"` // YYYY-MM of the future prices
	Result *backtest.Result `json:"result"`
}

// Report is the persisted record of one pipeline run
type Report struct {
	RunID      string                   `json:"run_id"`
	Month      string                   `json:"month"` // YYYY-MM of the training data
	ConfigHash string                   `json:"config_hash,omitempty"`
	Stages     []contracts.StageSummary `json:"stages"`
	Horizons   []HorizonResult          `json:"horizons"`
	CreatedAt  time.Time                `json:"created_at"`
	Duration   time.Duration            `json:"duration"`
}

// Horizon returns the result for a forward horizon
func (r *Report) Horizon(months int) (*HorizonResult, bool) {
	for i := range r.Horizons {
		if r.Horizons[i].Months == months {
			return &r.Horizons[i], true
		}
	}
	return nil, false
}
