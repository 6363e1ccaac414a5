package s0_data

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/haugen/internal/contracts"
)

func TestReadValueMap(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    contracts.ValueMap
		wantErr error
	}{
		{
			name:  "unordered lines",
			input: "MSFT 2.5\nAAPL 1.000000\n\nIBM -3\n",
			want:  contracts.ValueMap{"AAPL": 1, "IBM": -3, "MSFT": 2.5},
		},
		{
			name:  "empty file",
			input: "",
			want:  contracts.ValueMap{},
		},
		{
			name:    "missing value",
			input:   "AAPL\n",
			wantErr: contracts.ErrMalformed,
		},
		{
			name:    "duplicate ticker",
			input:   "AAPL 1\nAAPL 2\n",
			wantErr: contracts.ErrMalformed,
		},
		{
			name:    "not a number",
			input:   "AAPL abc\n",
			wantErr: contracts.ErrMalformed,
		},
		{
			name:    "infinite value",
			input:   "AAPL +Inf\n",
			wantErr: contracts.ErrNonFinite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadValueMap(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteValueMap_SortedAndPrecision(t *testing.T) {
	m := contracts.ValueMap{"MSFT": 2.5, "AAPL": 1.0 / 3.0, "^GSPC": 1500}

	var buf bytes.Buffer
	require.NoError(t, WriteValueMap(&buf, m, DefaultPrecision))
	assert.Equal(t, "AAPL 0.333333\nMSFT 2.500000\n^GSPC 1500.000000\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteValueMap(&buf, contracts.ValueMap{"A": 12.345}, PricePrecision))
	assert.Equal(t, "A 12.35\n", buf.String())
}

func TestSaveAndLoadValueMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2013-03", "b2p.txt")
	m := contracts.ValueMap{"A": 1, "B": -0.5}

	require.NoError(t, SaveValueMap(path, m, DefaultPrecision))

	loaded, err := LoadValueMap(path)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)

	// temp files must not linger next to the output
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadValueMap_MissingFile(t *testing.T) {
	_, err := LoadValueMap(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, contracts.ErrMissingFile)
	assert.True(t, contracts.IsSoftMiss(err))
}

func TestSaveValueMap_RejectsNonFinite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	err := SaveValueMap(path, contracts.ValueMap{"A": 1, "B": math.Inf(1)}, DefaultPrecision)
	assert.ErrorIs(t, err, contracts.ErrNonFinite)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no output may be written on failure")
}
