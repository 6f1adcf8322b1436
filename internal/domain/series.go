package domain

import (
	"fmt"
	"time"
)

// StepDays is the fixed cadence of the NDVI series: one sample per 14-day
// compositing period.
const StepDays = 14

// validHorizons enumerates the forecast horizons (in weeks) callers may request.
var validHorizons = map[int]bool{2: true, 4: true, 6: true, 8: true, 10: true, 12: true}

// ValidHorizon reports whether weeks is an allowed forecast horizon.
func ValidHorizon(weeks int) bool {
	return validHorizons[weeks]
}

// HorizonSteps converts a horizon in weeks to the number of biweekly forecast steps.
func HorizonSteps(weeks int) int {
	return weeks / 2
}

// NDVISample is one observation of the historical series.
type NDVISample struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"ndvi"`
}

// HistoricalSeries is the ordered biweekly NDVI series for the region.
// It is loaded once at startup and treated as read-only afterwards, so it may
// be shared by any number of concurrent requests without locking.
type HistoricalSeries []NDVISample

// Validate checks the series contract: non-empty, strictly ascending by date,
// no duplicate dates. Violations are reported as ErrInvalidSeries.
func (s HistoricalSeries) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: series is empty", ErrInvalidSeries)
	}
	for i := 1; i < len(s); i++ {
		if !s[i].Date.After(s[i-1].Date) {
			return fmt.Errorf("%w: dates not strictly ascending at index %d (%s >= %s)",
				ErrInvalidSeries, i,
				s[i-1].Date.Format(time.DateOnly), s[i].Date.Format(time.DateOnly))
		}
	}
	return nil
}

// Last returns the most recent sample. The series must be non-empty.
func (s HistoricalSeries) Last() NDVISample {
	return s[len(s)-1]
}

// Values returns the NDVI values in order, for handing the series to a model.
func (s HistoricalSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, sample := range s {
		out[i] = sample.Value
	}
	return out
}
