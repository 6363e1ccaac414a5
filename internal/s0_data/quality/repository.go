package quality

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wonny/haugen/internal/contracts"
)

// SnapshotFile is the snapshot's file name inside a month directory
const SnapshotFile = "quality.json"

// Repository handles coverage snapshot persistence
// ⭐ SSOT: S0 품질 스냅샷 저장/조회
type Repository struct {
	root string
}

// NewRepository creates a snapshot repository under the output root
func NewRepository(root string) *Repository {
	return &Repository{root: root}
}

// Path returns <root>/<month>/quality.json
func (r *Repository) Path(month contracts.Month) string {
	return filepath.Join(r.root, month.String(), SnapshotFile)
}

// SaveSnapshot writes the snapshot checked for month
func (r *Repository) SaveSnapshot(month contracts.Month, snapshot *Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal quality snapshot: %w", err)
	}

	path := r.Path(month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save quality snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save quality snapshot: %w", err)
	}
	return nil
}

// GetByMonth retrieves the snapshot of a month
func (r *Repository) GetByMonth(month contracts.Month) (*Snapshot, error) {
	data, err := os.ReadFile(r.Path(month))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no quality snapshot for %s", contracts.ErrMissingFile, month)
		}
		return nil, fmt.Errorf("get quality snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("get quality snapshot: %w", err)
	}
	return &snapshot, nil
}
