package contracts

import (
	"fmt"
	"strconv"
	"time"
)

// Month identifies a calendar month (YYYY-MM)
// ⭐ SSOT: 모든 시점 비교는 Month 단위로만 수행
type Month struct {
	Year  int
	Month int // 1..12
}

// ParseMonth parses "YYYY-MM". Longer date strings ("YYYY-MM-DD") are
// accepted and truncated to their month.
func ParseMonth(s string) (Month, error) {
	if len(s) < 7 || s[4] != '-' {
		return Month{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}

	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	m, err := strconv.Atoi(s[5:7])
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	if m < 1 || m > 12 {
		return Month{}, fmt.Errorf("invalid month %q: month out of range", s)
	}

	return Month{Year: y, Month: m}, nil
}

// MustParseMonth is ParseMonth for constants and tests
func MustParseMonth(s string) Month {
	m, err := ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MonthOf returns the month a timestamp falls in
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: int(t.Month())}
}

// String formats the month as YYYY-MM
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// IsZero reports whether m is the zero Month
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// index is the absolute month number used for arithmetic
func (m Month) index() int {
	return m.Year*12 + (m.Month - 1)
}

func monthFromIndex(idx int) Month {
	return Month{Year: idx / 12, Month: idx%12 + 1}
}

// AddMonths shifts the month by n (negative n goes back), rolling years over
func (m Month) AddMonths(n int) Month {
	return monthFromIndex(m.index() + n)
}

// Before reports whether m is strictly earlier than other
func (m Month) Before(other Month) bool {
	return m.index() < other.index()
}

// After reports whether m is strictly later than other
func (m Month) After(other Month) bool {
	return m.index() > other.index()
}

// MonthsBetween returns later - earlier in months
func MonthsBetween(later, earlier Month) int {
	return later.index() - earlier.index()
}
