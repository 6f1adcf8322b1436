package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/rangewatch/drought-predictor/internal/domain"
)

// periodsPerYear is the number of 14-day compositing periods the seasonal
// component is indexed by. 26 periods cover 364 days; the seasonal index wraps
// at year end.
const periodsPerYear = 26

// Artifact holds the fitted parameters of the seasonal-trend model, produced
// offline and loaded from JSON at startup.
type Artifact struct {
	Version        int       `json:"version"`
	TrainedThrough time.Time `json:"trained_through"`

	// Level is the fitted mean NDVI after removing trend and seasonality.
	Level float64 `json:"level"`
	// TrendPerStep is the fitted NDVI change per biweekly step.
	TrendPerStep float64 `json:"trend_per_step"`
	// Seasonal holds one additive coefficient per biweekly period of the year.
	Seasonal []float64 `json:"seasonal"`
	// Sigma is the residual standard deviation of the fit.
	Sigma float64 `json:"sigma"`
	// IntervalZ scales the confidence band width (e.g. 1.28 for ~80% coverage).
	IntervalZ float64 `json:"interval_z"`
}

func (a Artifact) validate() error {
	if a.Version != 1 {
		return fmt.Errorf("unsupported artifact version %d", a.Version)
	}
	if len(a.Seasonal) != periodsPerYear {
		return fmt.Errorf("artifact has %d seasonal coefficients, expected %d", len(a.Seasonal), periodsPerYear)
	}
	if a.Sigma <= 0 {
		return fmt.Errorf("artifact sigma must be positive, got %g", a.Sigma)
	}
	if a.IntervalZ <= 0 {
		return fmt.Errorf("artifact interval_z must be positive, got %g", a.IntervalZ)
	}
	return nil
}

// SeasonalModel is a deterministic seasonal-trend forecaster. The forecast
// mean for a step h periods past the end of the training window is
//
//	level + trend_per_step*steps_since_training + seasonal[period_of_year]
//
// and the confidence band widens with the square root of the lead time, the
// usual growth for accumulated step errors.
type SeasonalModel struct {
	artifact Artifact
}

// LoadSeasonalModel reads and validates a fitted artifact from disk. A missing
// or malformed artifact is fatal to startup: there is no usable fallback model.
func LoadSeasonalModel(path string) (*SeasonalModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	if err := artifact.validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}

	return &SeasonalModel{artifact: artifact}, nil
}

// NewSeasonalModel wraps an in-memory artifact, mainly for tests and fixtures.
func NewSeasonalModel(artifact Artifact) (*SeasonalModel, error) {
	if err := artifact.validate(); err != nil {
		return nil, err
	}
	return &SeasonalModel{artifact: artifact}, nil
}

// Predict implements Model. Output depends only on the artifact and the last
// historical date, so repeated calls with the same inputs are identical.
func (m *SeasonalModel) Predict(ctx context.Context, series domain.HistoricalSeries, steps int) ([]Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", steps)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("series is empty")
	}

	lastDate := series.Last().Date
	points := make([]Point, steps)
	for h := 1; h <= steps; h++ {
		date := lastDate.AddDate(0, 0, h*domain.StepDays)

		mean := m.artifact.Level +
			m.artifact.TrendPerStep*float64(m.stepsSinceTraining(date)) +
			m.artifact.Seasonal[periodIndex(date)]

		width := m.artifact.IntervalZ * m.artifact.Sigma * math.Sqrt(float64(h))

		points[h-1] = Point{
			Mean:  mean,
			Lower: mean - width,
			Upper: mean + width,
		}
	}

	return points, nil
}

// stepsSinceTraining counts biweekly steps between the training cutoff and the
// forecast date, so the trend term keeps extrapolating from where the fit ended.
func (m *SeasonalModel) stepsSinceTraining(date time.Time) int {
	days := int(date.Sub(m.artifact.TrainedThrough).Hours() / 24)
	return days / domain.StepDays
}

// periodIndex maps a date to its biweekly period of the year, wrapping the
// 365th/366th day back into the first period.
func periodIndex(date time.Time) int {
	return ((date.YearDay() - 1) / domain.StepDays) % periodsPerYear
}
