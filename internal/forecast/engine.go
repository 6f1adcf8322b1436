// Package forecast turns the historical NDVI series into biweekly point
// forecasts with confidence bounds. The numeric prediction itself is delegated
// to an opaque Model; the engine owns the horizon/cadence contract and the
// bound invariant.
package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/rangewatch/drought-predictor/internal/domain"
	"github.com/rangewatch/drought-predictor/internal/observability"
)

// Point is one raw model output step, before dates and invariants are applied.
type Point struct {
	Mean  float64
	Lower float64
	Upper float64
}

// Model is the opaque forecasting capability. Implementations must be
// deterministic for fixed inputs and safe for concurrent use.
type Model interface {
	Predict(ctx context.Context, series domain.HistoricalSeries, steps int) ([]Point, error)
}

// Engine validates requests, invokes the model, and shapes its output into a
// domain.Forecast.
type Engine struct {
	model   Model
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewEngine creates an Engine around the given model.
func NewEngine(model Model, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		model:   model,
		logger:  logger,
		metrics: metrics,
	}
}

// Forecast produces horizonWeeks/2 biweekly forecast points dated after the
// last historical sample. The horizon must be one of {2,4,6,8,10,12} and the
// series must be non-empty and sorted ascending; both are checked before any
// model call. Model failures surface as *domain.ModelInferenceError.
func (e *Engine) Forecast(ctx context.Context, series domain.HistoricalSeries, horizonWeeks int) (domain.Forecast, error) {
	if !domain.ValidHorizon(horizonWeeks) {
		return nil, fmt.Errorf("%w: %d weeks (must be one of 2, 4, 6, 8, 10, 12)",
			domain.ErrInvalidHorizon, horizonWeeks)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	steps := domain.HorizonSteps(horizonWeeks)

	start := time.Now()
	points, err := e.model.Predict(ctx, series, steps)
	e.metrics.ModelInferenceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, &domain.ModelInferenceError{Err: err}
	}
	if len(points) != steps {
		return nil, &domain.ModelInferenceError{
			Err: fmt.Errorf("model returned %d points, expected %d", len(points), steps),
		}
	}

	lastDate := series.Last().Date
	forecast := make(domain.Forecast, steps)
	for i, p := range points {
		if !isFinite(p.Mean) || !isFinite(p.Lower) || !isFinite(p.Upper) {
			return nil, &domain.ModelInferenceError{
				Err: fmt.Errorf("model returned non-finite values at step %d", i+1),
			}
		}
		forecast[i] = domain.ForecastPoint{
			Date:  lastDate.AddDate(0, 0, (i+1)*domain.StepDays),
			Mean:  p.Mean,
			Lower: p.Lower,
			Upper: p.Upper,
		}
		forecast[i] = e.clampBounds(forecast[i], i+1)
	}

	return forecast, nil
}

// clampBounds enforces lower <= mean <= upper. A crossed bound is pulled to
// the mean and logged; an inconsistent point is never propagated silently.
func (e *Engine) clampBounds(p domain.ForecastPoint, step int) domain.ForecastPoint {
	if p.Lower <= p.Mean && p.Mean <= p.Upper {
		return p
	}

	e.logger.Warn("model returned crossed confidence bounds, clamping",
		"step", step,
		"date", p.Date.Format(time.DateOnly),
		"mean", p.Mean,
		"lower", p.Lower,
		"upper", p.Upper,
	)
	e.metrics.BoundClamps.Inc()

	if p.Lower > p.Mean {
		p.Lower = p.Mean
	}
	if p.Upper < p.Mean {
		p.Upper = p.Mean
	}
	return p
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
