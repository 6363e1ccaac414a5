package s0_data

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wonny/haugen/internal/contracts"
)

// Output precision for ValueMap files
const (
	DefaultPrecision = 6 // metrics, factors, scores
	PricePrecision   = 2 // current/future price maps
)

// ReadValueMap parses "<ticker> <value>" lines.
// Blank lines are ignored; line order is irrelevant.
// ⭐ SSOT: ValueMap 파일 포맷 파싱은 여기서만
func ReadValueMap(r io.Reader) (contracts.ValueMap, error) {
	m := make(contracts.ValueMap)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: want 2 fields, got %d", contracts.ErrMalformed, lineNo, len(fields))
		}

		ticker := fields[0]
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", contracts.ErrMalformed, lineNo, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &contracts.TickerError{Ticker: ticker, Err: contracts.ErrNonFinite}
		}
		if _, dup := m[ticker]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate ticker %s", contracts.ErrMalformed, lineNo, ticker)
		}
		m[ticker] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan value map: %w", err)
	}

	return m, nil
}

// LoadValueMap reads a ValueMap file
func LoadValueMap(path string) (contracts.ValueMap, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", contracts.ErrMissingFile, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := ReadValueMap(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// WriteValueMap writes one "<ticker> <value>" line per ticker, ascending
func WriteValueMap(w io.Writer, m contracts.ValueMap, precision int) error {
	if err := m.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for _, ticker := range m.Tickers() {
		if _, err := fmt.Fprintf(bw, "%s %s\n", ticker, strconv.FormatFloat(m[ticker], 'f', precision, 64)); err != nil {
			return fmt.Errorf("write %s: %w", ticker, err)
		}
	}
	return bw.Flush()
}

// SaveValueMap writes m to path through a temp file and rename, so readers
// never observe a partially written map.
func SaveValueMap(path string, m contracts.ValueMap, precision int) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := WriteValueMap(tmp, m, precision); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
