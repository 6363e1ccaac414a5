package s0_data

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/haugen/internal/contracts"
)

// BenchmarkMarker marks index tickers (e.g. ^GSPC); file names replace it with '_'
const BenchmarkMarker = "^"

// TickerPath returns the per-ticker input file under dir
// ⭐ SSOT: 종목 → 파일 경로 변환은 여기서만
func TickerPath(dir, ticker string) string {
	return filepath.Join(dir, strings.ReplaceAll(ticker, BenchmarkMarker, "_")+".csv")
}

// LoadTickers reads a ticker list, one per line. Blank lines are ignored
// and the file order is kept.
func LoadTickers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ticker list: %w", err)
	}
	defer f.Close()

	var tickers []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		t := strings.TrimSpace(scanner.Text())
		if t == "" {
			continue
		}
		tickers = append(tickers, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan ticker list: %w", err)
	}

	return tickers, nil
}

// ValueMapStore lays derived ValueMaps out as <root>/<month>/<name>.txt
type ValueMapStore struct {
	root string
}

// NewValueMapStore creates a store rooted at dir
func NewValueMapStore(root string) *ValueMapStore {
	return &ValueMapStore{root: root}
}

// Root returns the output root directory
func (s *ValueMapStore) Root() string {
	return s.root
}

// Path returns the file path of a named map for a month
func (s *ValueMapStore) Path(month contracts.Month, name string) string {
	return filepath.Join(s.root, month.String(), name+".txt")
}

// Load reads a named map
func (s *ValueMapStore) Load(ctx context.Context, month contracts.Month, name string) (contracts.ValueMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadValueMap(s.Path(month, name))
}

// Save writes a named map and returns its path
func (s *ValueMapStore) Save(ctx context.Context, month contracts.Month, name string, m contracts.ValueMap, precision int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := s.Path(month, name)
	if err := SaveValueMap(path, m, precision); err != nil {
		return "", err
	}
	return path, nil
}

// Names lists the maps stored for a month, ascending
func (s *ValueMapStore) Names(month contracts.Month) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, month.String()))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no maps for %s", contracts.ErrMissingFile, month)
		}
		return nil, fmt.Errorf("read %s: %w", month, err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".txt") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".txt"))
	}
	return names, nil
}

// openTickerFile opens dir/<ticker>.csv, mapping absence to a soft miss
func openTickerFile(dir, ticker string) (*os.File, error) {
	path := TickerPath(dir, ticker)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", contracts.ErrMissingFile, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
