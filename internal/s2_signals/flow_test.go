package s2_signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/haugen/internal/contracts"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestVolumeCalculator_Calculate(t *testing.T) {
	series := &contracts.PriceSeries{
		Ticker: "AAPL",
		Samples: []contracts.PriceSample{
			{Date: day("2013-04-01"), Volume: 1e9, AdjClose: 1}, // after target
			{Date: day("2013-03-28"), Volume: 100, AdjClose: 2},
			{Date: day("2013-03-27"), Volume: 50, AdjClose: 2},
			{Date: day("2013-02-28"), Volume: 100, AdjClose: 1},
			{Date: day("2013-01-31"), Volume: 1e9, AdjClose: 1}, // outside window
		},
	}
	target := contracts.MustParseMonth("2013-03")

	got, err := NewVolumeCalculator(2).Calculate(series, target)
	require.NoError(t, err)
	assert.Equal(t, (300.0+100.0)/2, got)

	_, err = NewVolumeCalculator(4).Calculate(series, target)
	assert.ErrorIs(t, err, contracts.ErrInsufficientMonths)
}

func TestVolumeCalculator_SplitInvariant(t *testing.T) {
	before := &contracts.PriceSeries{Samples: []contracts.PriceSample{
		{Date: day("2013-03-01"), Volume: 100, AdjClose: 10},
	}}
	after := &contracts.PriceSeries{Samples: []contracts.PriceSample{
		{Date: day("2013-03-01"), Volume: 200, AdjClose: 5},
	}}

	c := NewVolumeCalculator(1)
	a, err := c.Calculate(before, contracts.MustParseMonth("2013-03"))
	require.NoError(t, err)
	b, err := c.Calculate(after, contracts.MustParseMonth("2013-03"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNewVolumeCalculator_DefaultWindow(t *testing.T) {
	assert.Equal(t, DefaultVolumeMonths, NewVolumeCalculator(0).Months())
}

func TestCurrentPrice(t *testing.T) {
	series := &contracts.MonthlySeries{Ticker: "AAPL", Samples: []contracts.MonthlySample{
		{Date: day("2013-03-01"), Price: 10},
		{Date: day("2013-03-28"), Price: 12},
	}}

	p, err := CurrentPrice(series, contracts.MustParseMonth("2013-03"))
	require.NoError(t, err)
	assert.Equal(t, 10.0, p)

	_, err = CurrentPrice(series, contracts.MustParseMonth("2013-04"))
	assert.ErrorIs(t, err, contracts.ErrPriceNotFound)
}
