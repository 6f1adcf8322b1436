package csvdata

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rangewatch/drought-predictor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ndvi.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func load(t *testing.T, content string) (domain.HistoricalSeries, error) {
	t.Helper()
	return NewLoader(writeCSV(t, content), discardLogger()).Load()
}

func TestLoader_Load(t *testing.T) {
	series, err := load(t, `start_date,mean_ndvi
01/01/2026,0.36
15/01/2026,0.38
29/01/2026,0.40
`)

	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), series[0].Date)
	assert.Equal(t, 0.36, series[0].Value)
	assert.Equal(t, 0.40, series.Last().Value)
}

func TestLoader_Load_SortsByDate(t *testing.T) {
	series, err := load(t, `start_date,mean_ndvi
29/01/2026,0.40
01/01/2026,0.36
15/01/2026,0.38
`)

	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, []float64{0.36, 0.38, 0.40}, series.Values())
}

func TestLoader_Load_AcceptsISODates(t *testing.T) {
	series, err := load(t, `start_date,mean_ndvi
2026-01-01,0.36
2026-01-15,0.38
`)

	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), series.Last().Date)
}

func TestLoader_Load_InterpolatesOutOfRangeValues(t *testing.T) {
	// 3.2 is outside the valid NDVI range and should be filled with the
	// midpoint of its neighbors.
	series, err := load(t, `start_date,mean_ndvi
01/01/2026,0.30
15/01/2026,3.2
29/01/2026,0.40
`)

	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.InDelta(t, 0.35, series[1].Value, 1e-9)
}

func TestLoader_Load_InterpolatesUnparseableValues(t *testing.T) {
	series, err := load(t, `start_date,mean_ndvi
01/01/2026,0.30
15/01/2026,n/a
29/01/2026,0.50
`)

	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.InDelta(t, 0.40, series[1].Value, 1e-9)
}

func TestLoader_Load_FillsEdgeGapsWithNearestValue(t *testing.T) {
	series, err := load(t, `start_date,mean_ndvi
01/01/2026,-2
15/01/2026,0.38
29/01/2026,9.9
`)

	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, 0.38, series[0].Value)
	assert.Equal(t, 0.38, series[2].Value)
}

func TestLoader_Load_IgnoresExtraColumns(t *testing.T) {
	series, err := load(t, `region,start_date,end_date,mean_ndvi
turkana,01/01/2026,14/01/2026,0.36
turkana,15/01/2026,28/01/2026,0.38
`)

	require.NoError(t, err)
	assert.Len(t, series, 2)
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"header only", "start_date,mean_ndvi\n"},
		{"missing value column", "start_date,ndvi\n01/01/2026,0.36\n"},
		{"unparseable date", "start_date,mean_ndvi\nsoon,0.36\n"},
		{"duplicate dates", "start_date,mean_ndvi\n01/01/2026,0.36\n01/01/2026,0.38\n"},
		{"all values invalid", "start_date,mean_ndvi\n01/01/2026,5\n15/01/2026,-9\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.content)
			require.Error(t, err)
		})
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "no-such.csv"), discardLogger()).Load()
	require.Error(t, err)
}
