package s0_data

import (
	"context"
	"fmt"

	"github.com/wonny/haugen/internal/contracts"
)

// StatementRepository implements contracts.StatementRepository over one
// statement source directory (balance sheets, income statements, ...).
// ⭐ SSOT: 재무제표 파일 저장소는 여기서만
type StatementRepository struct {
	source string
	dir    string
}

// NewStatementRepository creates a repository for a statement source
func NewStatementRepository(source, dir string) *StatementRepository {
	return &StatementRepository{source: source, dir: dir}
}

// Source returns the statement source name
func (r *StatementRepository) Source() string {
	return r.source
}

// Statement loads the normalized series of a ticker
func (r *StatementRepository) Statement(ctx context.Context, ticker string) (*contracts.StatementSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := openTickerFile(r.dir, ticker)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	series, err := ParseStatement(f, ticker)
	if err != nil {
		return nil, fmt.Errorf("%s statement %s: %w", r.source, ticker, err)
	}
	return series, nil
}
