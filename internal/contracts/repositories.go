package contracts

import "context"

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만
//
// Repositories return ErrMissingFile (a soft miss) when a ticker has no
// input, and ErrMalformed when the input breaks its format.

// StatementRepository loads normalized statement series
type StatementRepository interface {
	Statement(ctx context.Context, ticker string) (*StatementSeries, error)
}

// PriceRepository loads daily price/volume series
type PriceRepository interface {
	DailyPrices(ctx context.Context, ticker string) (*PriceSeries, error)
}

// SampleRepository loads month-end price snapshots
type SampleRepository interface {
	MonthlySamples(ctx context.Context, ticker string) (*MonthlySeries, error)
}
