package s0_data

import (
	"context"
	"fmt"

	"github.com/wonny/haugen/internal/contracts"
)

// PriceRepository implements contracts.PriceRepository over daily price files
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
type PriceRepository struct {
	dir string
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(dir string) *PriceRepository {
	return &PriceRepository{dir: dir}
}

// DailyPrices loads the daily OHLCV samples of a ticker
func (r *PriceRepository) DailyPrices(ctx context.Context, ticker string) (*contracts.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := openTickerFile(r.dir, ticker)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	series, err := ParseDailyPrices(f, ticker)
	if err != nil {
		return nil, fmt.Errorf("daily prices %s: %w", ticker, err)
	}
	return series, nil
}

// SampleRepository implements contracts.SampleRepository over month-end snapshots
type SampleRepository struct {
	dir string
}

// NewSampleRepository creates a new monthly sample repository
func NewSampleRepository(dir string) *SampleRepository {
	return &SampleRepository{dir: dir}
}

// MonthlySamples loads the month-end snapshots of a ticker
func (r *SampleRepository) MonthlySamples(ctx context.Context, ticker string) (*contracts.MonthlySeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := openTickerFile(r.dir, ticker)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	series, err := ParseMonthlySamples(f, ticker)
	if err != nil {
		return nil, fmt.Errorf("monthly samples %s: %w", ticker, err)
	}
	return series, nil
}
