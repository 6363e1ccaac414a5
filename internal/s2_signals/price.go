package s2_signals

import (
	"fmt"

	"github.com/wonny/haugen/internal/contracts"
)

// CurrentPrice returns the first month-end snapshot falling in month
func CurrentPrice(series *contracts.MonthlySeries, month contracts.Month) (float64, error) {
	price, ok := series.FirstPrice(month)
	if !ok {
		return 0, fmt.Errorf("%w: %s has no sample in %s", contracts.ErrPriceNotFound, series.Ticker, month)
	}
	return price, nil
}
