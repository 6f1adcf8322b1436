// Package csvdata loads the historical NDVI series from the biweekly export
// CSV. The file carries start_date (DD/MM/YYYY) and mean_ndvi columns; values
// outside the valid NDVI range are treated as missing and filled by linear
// interpolation so one bad composite does not punch a hole in the series.
package csvdata

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rangewatch/drought-predictor/internal/domain"
)

const (
	dateColumn  = "start_date"
	valueColumn = "mean_ndvi"
)

// dateLayouts are accepted in order. The upstream export writes DD/MM/YYYY;
// ISO dates appear in hand-built fixtures.
var dateLayouts = []string{"02/01/2006", time.DateOnly}

// Loader reads and cleans the NDVI CSV. Load is called once at startup; the
// returned series is immutable afterwards.
type Loader struct {
	path   string
	logger *slog.Logger
}

// NewLoader creates a Loader for the given CSV path.
func NewLoader(path string, logger *slog.Logger) *Loader {
	return &Loader{path: path, logger: logger}
}

// Load parses the CSV, marks out-of-range NDVI values as missing, linearly
// interpolates the gaps, sorts by date, and validates the result. An empty or
// unusable file is an error: the service cannot start without history.
func (l *Loader) Load() (domain.HistoricalSeries, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open NDVI csv: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read NDVI csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("NDVI csv %s has no data rows", l.path)
	}

	dateIdx, valueIdx, err := columnIndexes(rows[0])
	if err != nil {
		return nil, fmt.Errorf("NDVI csv %s: %w", l.path, err)
	}

	samples, missing, err := l.parseRows(rows[1:], dateIdx, valueIdx)
	if err != nil {
		return nil, err
	}

	sortByDate(samples)

	interpolated := interpolateMissing(samples, missing)
	if missing > 0 {
		l.logger.Warn("interpolated missing NDVI values",
			"missing", missing, "filled", interpolated, "total", len(samples))
	}

	series := dropMissing(samples)
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no valid NDVI data after cleaning", domain.ErrInvalidSeries)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	l.logger.Info("historical series loaded",
		"path", l.path,
		"points", len(series),
		"from", series[0].Date.Format(time.DateOnly),
		"to", series.Last().Date.Format(time.DateOnly),
	)

	return series, nil
}

// sample extends an NDVISample with a missing marker used during cleaning.
type sample struct {
	date    time.Time
	value   float64
	missing bool
}

func columnIndexes(header []string) (dateIdx, valueIdx int, err error) {
	dateIdx, valueIdx = -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case dateColumn:
			dateIdx = i
		case valueColumn:
			valueIdx = i
		}
	}
	if dateIdx < 0 || valueIdx < 0 {
		return 0, 0, fmt.Errorf("missing required columns %q and %q in header %v",
			dateColumn, valueColumn, header)
	}
	return dateIdx, valueIdx, nil
}

func (l *Loader) parseRows(rows [][]string, dateIdx, valueIdx int) ([]sample, int, error) {
	samples := make([]sample, 0, len(rows))
	missing := 0

	for i, row := range rows {
		if len(row) <= dateIdx || len(row) <= valueIdx {
			return nil, 0, fmt.Errorf("row %d has %d columns, expected at least %d", i+2, len(row), max(dateIdx, valueIdx)+1)
		}

		date, err := parseDate(row[dateIdx])
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: %w", i+2, err)
		}

		s := sample{date: date}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[valueIdx]), 64)
		if err != nil || !inNDVIRange(v) {
			// Unparseable or out-of-range values become gaps, not failures.
			s.missing = true
			missing++
		} else {
			s.value = v
		}
		samples = append(samples, s)
	}

	return samples, missing, nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

// inNDVIRange reports whether v is a plausible vegetation index value.
func inNDVIRange(v float64) bool {
	return !math.IsNaN(v) && v >= -1 && v <= 1
}

func sortByDate(samples []sample) {
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].date.Before(samples[j].date)
	})
}

// interpolateMissing fills gaps linearly between the nearest valid neighbors
// and extends the edge values outward, mirroring a both-directions fill.
// Returns the number of gaps actually filled.
func interpolateMissing(samples []sample, missing int) int {
	if missing == 0 {
		return 0
	}

	filled := 0
	for i := range samples {
		if !samples[i].missing {
			continue
		}

		prev := previousValid(samples, i)
		next := nextValid(samples, i)

		switch {
		case prev >= 0 && next >= 0:
			// Linear interpolation by position; the cadence is fixed, so index
			// distance is proportional to time distance.
			frac := float64(i-prev) / float64(next-prev)
			samples[i].value = samples[prev].value + frac*(samples[next].value-samples[prev].value)
		case prev >= 0:
			samples[i].value = samples[prev].value
		case next >= 0:
			samples[i].value = samples[next].value
		default:
			continue // nothing valid anywhere; dropMissing removes these
		}
		samples[i].missing = false
		filled++
	}

	return filled
}

func previousValid(samples []sample, from int) int {
	for i := from - 1; i >= 0; i-- {
		if !samples[i].missing {
			return i
		}
	}
	return -1
}

func nextValid(samples []sample, from int) int {
	for i := from + 1; i < len(samples); i++ {
		if !samples[i].missing {
			return i
		}
	}
	return -1
}

func dropMissing(samples []sample) domain.HistoricalSeries {
	series := make(domain.HistoricalSeries, 0, len(samples))
	for _, s := range samples {
		if s.missing {
			continue
		}
		series = append(series, domain.NDVISample{Date: s.date, Value: s.value})
	}
	return series
}
