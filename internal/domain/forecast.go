package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// ForecastPoint is one biweekly forecast step with confidence bounds.
// Invariant: Lower <= Mean <= Upper.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Mean  float64   `json:"mean"`
	Lower float64   `json:"lower"`
	Upper float64   `json:"upper"`
}

// Forecast is an ordered sequence of biweekly forecast points, contiguous
// after the last historical date.
type Forecast []ForecastPoint

// Last returns the final forecast point. The forecast must be non-empty.
func (f Forecast) Last() ForecastPoint {
	return f[len(f)-1]
}

// DroughtAssessment is the classification derived from a forecast trajectory.
// Recomputed per request, never stored.
type DroughtAssessment struct {
	Level      SeverityLevel `json:"level"`
	ChangeRate float64       `json:"change_rate"`
	Insights   []string      `json:"insights"`
}

// PredictionResult aggregates a forecast and its assessment. Created per
// request and discarded after serialization.
type PredictionResult struct {
	Forecast    Forecast          `json:"forecast"`
	Assessment  DroughtAssessment `json:"assessment"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// NewPredictionResult assembles a result and stamps it from the package clock.
func NewPredictionResult(forecast Forecast, assessment DroughtAssessment) PredictionResult {
	return PredictionResult{
		Forecast:    forecast,
		Assessment:  assessment,
		GeneratedAt: clock.Now().UTC(),
	}
}

// HorizonWeeks returns the horizon this result was produced for.
func (r PredictionResult) HorizonWeeks() int {
	return len(r.Forecast) * 2
}

// AlertID produces a deterministic ID from the assessment's key fields.
// Republishing the same assessment yields the same ID, so downstream
// consumers can deduplicate without coordination.
func (r PredictionResult) AlertID() string {
	endDate := ""
	if len(r.Forecast) > 0 {
		endDate = r.Forecast.Last().Date.Format(time.DateOnly)
	}
	input := fmt.Sprintf("%s|%s|%.1f", r.Assessment.Level, endDate, r.Assessment.ChangeRate)
	hash := sha256.Sum256([]byte(input))
	return "drought-" + hex.EncodeToString(hash[:8])
}

// PredictionResponse is the wire shape consumed by the dashboard. Field names
// are a compatibility contract; do not rename.
type PredictionResponse struct {
	Dates        []string  `json:"dates"`
	NDVI         []float64 `json:"ndvi"`
	Lower        []float64 `json:"lower"`
	Upper        []float64 `json:"upper"`
	DroughtLevel string    `json:"drought_level"`
	ChangeRate   float64   `json:"change_rate"`
	Insights     []string  `json:"insights"`
	ColorCode    string    `json:"color_code"`
}

// Response flattens the result into the wire shape. The change rate is rounded
// to one decimal, the precision the dashboard expects.
func (r PredictionResult) Response() PredictionResponse {
	resp := PredictionResponse{
		Dates:        make([]string, len(r.Forecast)),
		NDVI:         make([]float64, len(r.Forecast)),
		Lower:        make([]float64, len(r.Forecast)),
		Upper:        make([]float64, len(r.Forecast)),
		DroughtLevel: r.Assessment.Level.String(),
		ChangeRate:   roundToTenth(r.Assessment.ChangeRate),
		Insights:     r.Assessment.Insights,
		ColorCode:    r.Assessment.Level.ColorCode(),
	}
	for i, p := range r.Forecast {
		resp.Dates[i] = p.Date.Format(time.DateOnly)
		resp.NDVI[i] = p.Mean
		resp.Lower[i] = p.Lower
		resp.Upper[i] = p.Upper
	}
	return resp
}

func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
