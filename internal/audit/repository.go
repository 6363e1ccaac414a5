package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wonny/haugen/internal/contracts"
)

// ReportFile is the report's file name inside a month directory
const ReportFile = "report.json"

// Repository persists run reports next to the month's ValueMaps
// ⭐ SSOT: Audit 리포트 저장/조회는 여기서만
type Repository struct {
	root string
}

// NewRepository creates a report repository under the output root
func NewRepository(root string) *Repository {
	return &Repository{root: root}
}

// Path returns <root>/<month>/report.json
func (r *Repository) Path(month contracts.Month) string {
	return filepath.Join(r.root, month.String(), ReportFile)
}

// Save writes the report for its month
func (r *Repository) Save(report *Report) error {
	month, err := contracts.ParseMonth(report.Month)
	if err != nil {
		return fmt.Errorf("report month: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	path := r.Path(month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load reads the report of a month
func (r *Repository) Load(month contracts.Month) (*Report, error) {
	data, err := os.ReadFile(r.Path(month))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no report for %s", contracts.ErrMissingFile, month)
		}
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}
