package s0_data

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wonny/haugen/internal/contracts"
)

const utf8BOM = "\ufeff"

// ParseStatement reads a normalized statement file:
//
//	date,2012-03,2012-06,...
//	<metric>,<v1>,<v2>,...
//
// An empty cell means the value was not reported. A TTM column is dropped.
// Row width mismatches and duplicate period dates are contract violations.
func ParseStatement(r io.Reader, ticker string) (*contracts.StatementSeries, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		return nil, fmt.Errorf("%w: empty statement", contracts.ErrMalformed)
	}

	header := strings.Split(strings.TrimPrefix(strings.TrimSpace(scanner.Text()), utf8BOM), ",")
	if header[0] != "date" {
		return nil, fmt.Errorf("%w: header must start with \"date\", got %q", contracts.ErrMalformed, header[0])
	}
	width := len(header)

	// column index in the file for each kept period
	var (
		periods []contracts.Month
		columns []int
	)
	seen := make(map[contracts.Month]bool)
	for i := 1; i < width; i++ {
		label := strings.TrimSpace(header[i])
		if strings.EqualFold(label, "ttm") {
			continue
		}
		m, err := contracts.ParseMonth(label)
		if err != nil {
			return nil, fmt.Errorf("%w: column %d: %v", contracts.ErrMalformed, i, err)
		}
		if seen[m] {
			return nil, fmt.Errorf("%w: duplicate period %s", contracts.ErrMalformed, m)
		}
		seen[m] = true
		periods = append(periods, m)
		columns = append(columns, i)
	}

	series := &contracts.StatementSeries{
		Ticker:  ticker,
		Periods: periods,
		Rows:    make(map[string][]contracts.Cell),
	}

	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		items := strings.Split(line, ",")
		if len(items) != width {
			return nil, fmt.Errorf("%w: line %d: want %d fields, got %d", contracts.ErrMalformed, lineNo, width, len(items))
		}

		name := strings.TrimSpace(items[0])
		if _, dup := series.Rows[name]; dup {
			// first occurrence wins
			continue
		}

		row := make([]contracts.Cell, len(columns))
		for j, col := range columns {
			raw := strings.TrimSpace(items[col])
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %s: %v", contracts.ErrMalformed, lineNo, name, err)
			}
			row[j] = contracts.Cell{Value: v, Present: true}
		}
		series.Rows[name] = row
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan statement: %w", err)
	}

	return series, nil
}
