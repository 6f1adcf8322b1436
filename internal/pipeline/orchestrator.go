// Package pipeline composes forecasting, classification, and insight
// generation into the single predict operation exposed to the API layer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rangewatch/drought-predictor/internal/domain"
	"github.com/rangewatch/drought-predictor/internal/observability"
)

// Forecaster produces a bounded biweekly forecast for the series.
type Forecaster interface {
	Forecast(ctx context.Context, series domain.HistoricalSeries, horizonWeeks int) (domain.Forecast, error)
}

// Orchestrator runs the per-request pipeline: Validate -> Forecast ->
// Classify -> GenerateInsights -> Assemble. The first failing stage
// short-circuits the rest; no stage is retried.
//
// The historical series is a read-only handle captured at construction, so
// Predict is a pure function of its arguments plus that handle and may be
// called concurrently without locking.
type Orchestrator struct {
	series  domain.HistoricalSeries
	engine  Forecaster
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Orchestrator over a loaded series and forecast engine.
func New(series domain.HistoricalSeries, engine Forecaster, logger *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	metrics.HistoricalSeriesPoints.Set(float64(len(series)))
	return &Orchestrator{
		series:  series,
		engine:  engine,
		logger:  logger,
		metrics: metrics,
	}
}

// Series returns the read-only historical series for the data endpoints.
func (o *Orchestrator) Series() domain.HistoricalSeries {
	return o.series
}

// CheckReadiness returns nil when the orchestrator can serve predictions.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if len(o.series) == 0 {
		return errors.New("historical series not loaded")
	}
	if o.engine == nil {
		return errors.New("forecast engine not configured")
	}
	return nil
}

// Predict runs one full prediction cycle for the requested horizon. The
// change rate is computed exactly once, inside classification, and the same
// value feeds both the assessment and the insight text.
func (o *Orchestrator) Predict(ctx context.Context, horizonWeeks int) (domain.PredictionResult, error) {
	start := time.Now()

	// Validate. Horizon is checked here so an invalid request never reaches
	// the model; the engine revalidates as a matter of its own contract.
	if !domain.ValidHorizon(horizonWeeks) {
		return o.fail(fmt.Errorf("%w: %d weeks (must be one of 2, 4, 6, 8, 10, 12)",
			domain.ErrInvalidHorizon, horizonWeeks))
	}
	if err := o.series.Validate(); err != nil {
		return o.fail(err)
	}

	// Forecast.
	fc, err := o.engine.Forecast(ctx, o.series, horizonWeeks)
	if err != nil {
		return o.fail(err)
	}

	// Classify.
	level, changeRate, err := domain.Classify(o.series.Last().Value, fc)
	if err != nil {
		return o.fail(err)
	}

	// GenerateInsights, reusing the classified change rate.
	insights := domain.GenerateInsights(level, changeRate, horizonWeeks)

	// Assemble.
	result := domain.NewPredictionResult(fc, domain.DroughtAssessment{
		Level:      level,
		ChangeRate: changeRate,
		Insights:   insights,
	})

	o.metrics.PredictionsTotal.WithLabelValues(level.String()).Inc()
	o.metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	o.logger.Info("prediction completed",
		"horizon_weeks", horizonWeeks,
		"level", level.String(),
		"change_rate", changeRate,
		"forecast_end", fc.Last().Date.Format(time.DateOnly),
	)

	return result, nil
}

func (o *Orchestrator) fail(err error) (domain.PredictionResult, error) {
	kind := errorKind(err)
	o.metrics.PredictionErrors.WithLabelValues(kind).Inc()
	o.logger.Warn("prediction failed", "kind", kind, "error", err)
	return domain.PredictionResult{}, err
}

// errorKind buckets pipeline errors for metrics and logs.
func errorKind(err error) string {
	var mie *domain.ModelInferenceError
	switch {
	case errors.Is(err, domain.ErrInvalidHorizon):
		return "invalid_horizon"
	case errors.Is(err, domain.ErrInvalidSeries):
		return "invalid_series"
	case errors.Is(err, domain.ErrDegenerateInput):
		return "degenerate_input"
	case errors.As(err, &mie):
		return "model_inference"
	default:
		return "internal"
	}
}
