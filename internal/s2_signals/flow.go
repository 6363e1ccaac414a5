package s2_signals

import (
	"fmt"
	"sort"

	"github.com/wonny/haugen/internal/contracts"
)

// DefaultVolumeMonths is the trailing window of the volume aggregate
const DefaultVolumeMonths = 12

// VolumeCalculator aggregates trailing dollar volume
// ⭐ SSOT: 거래대금 집계는 여기서만
type VolumeCalculator struct {
	months int
}

// NewVolumeCalculator creates a calculator over a k-month window
func NewVolumeCalculator(months int) *VolumeCalculator {
	if months < 1 {
		months = DefaultVolumeMonths
	}
	return &VolumeCalculator{months: months}
}

// Months returns the window size
func (c *VolumeCalculator) Months() int {
	return c.months
}

// Calculate returns the mean monthly dollar volume over the k months ending
// at target. Daily dollar volume is volume × adjusted close, so a split
// (half the adjusted price, twice the shares) leaves it unchanged.
// Exactly k populated months are required.
func (c *VolumeCalculator) Calculate(series *contracts.PriceSeries, target contracts.Month) (float64, error) {
	buckets := make(map[contracts.Month]float64, c.months)
	for _, s := range series.Samples {
		m := contracts.MonthOf(s.Date)
		if m.After(target) || contracts.MonthsBetween(target, m) >= c.months {
			continue
		}
		buckets[m] += s.Volume * s.AdjClose
	}

	if len(buckets) < c.months {
		return 0, fmt.Errorf("%w: %d of %d months", contracts.ErrInsufficientMonths, len(buckets), c.months)
	}

	// fixed summation order keeps the result reproducible
	months := make([]contracts.Month, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	total := 0.0
	for _, m := range months {
		total += buckets[m]
	}
	return total / float64(len(months)), nil
}
