package s0_data

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/wonny/haugen/internal/contracts"
)

const dateLayout = "2006-01-02"

// ParseDailyPrices reads "<date>,<open>,<high>,<low>,<close>,<volume>,<adjclose>"
// rows. A leading header row is skipped. Row order is preserved.
func ParseDailyPrices(r io.Reader, ticker string) (*contracts.PriceSeries, error) {
	series := &contracts.PriceSeries{Ticker: ticker}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), utf8BOM))
		if line == "" {
			continue
		}

		items := strings.Split(line, ",")
		if lineNo == 1 && isHeader(items[0]) {
			continue
		}
		if len(items) != 7 {
			return nil, fmt.Errorf("%w: line %d: want 7 fields, got %d", contracts.ErrMalformed, lineNo, len(items))
		}

		date, err := time.Parse(dateLayout, strings.TrimSpace(items[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", contracts.ErrMalformed, lineNo, err)
		}

		var values [6]float64
		for i := range values {
			values[i], err = strconv.ParseFloat(strings.TrimSpace(items[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: field %d: %v", contracts.ErrMalformed, lineNo, i+2, err)
			}
		}

		series.Samples = append(series.Samples, contracts.PriceSample{
			Date:     date,
			Open:     values[0],
			High:     values[1],
			Low:      values[2],
			Close:    values[3],
			Volume:   values[4],
			AdjClose: values[5],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan prices: %w", err)
	}

	return series, nil
}

// ParseMonthlySamples reads "<date> <volume> <price>" month-end snapshots.
// Fields may be separated by commas or whitespace.
func ParseMonthlySamples(r io.Reader, ticker string) (*contracts.MonthlySeries, error) {
	series := &contracts.MonthlySeries{Ticker: ticker}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), utf8BOM))
		if line == "" {
			continue
		}

		items := strings.FieldsFunc(line, func(c rune) bool {
			return c == ',' || unicode.IsSpace(c)
		})
		if lineNo == 1 && isHeader(items[0]) {
			continue
		}
		if len(items) != 3 {
			return nil, fmt.Errorf("%w: line %d: want 3 fields, got %d", contracts.ErrMalformed, lineNo, len(items))
		}

		date, err := time.Parse(dateLayout, items[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", contracts.ErrMalformed, lineNo, err)
		}
		volume, err := strconv.ParseFloat(items[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: volume: %v", contracts.ErrMalformed, lineNo, err)
		}
		price, err := strconv.ParseFloat(items[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: price: %v", contracts.ErrMalformed, lineNo, err)
		}

		series.Samples = append(series.Samples, contracts.MonthlySample{
			Date:   date,
			Volume: volume,
			Price:  price,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan samples: %w", err)
	}

	return series, nil
}

// isHeader reports whether the first field is a column label, not a date
func isHeader(field string) bool {
	field = strings.TrimSpace(field)
	return field != "" && !unicode.IsDigit(rune(field[0]))
}
