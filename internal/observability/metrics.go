package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// prediction pipeline.
type Metrics struct {
	PredictionsTotal *prometheus.CounterVec // labels: level={Normal,Alert,Alarm,Emergency}
	PredictionErrors *prometheus.CounterVec // labels: kind={invalid_horizon,invalid_series,degenerate_input,model_inference,internal}

	PredictionDuration     prometheus.Histogram
	ModelInferenceDuration prometheus.Histogram

	// BoundClamps counts forecast points whose confidence bounds crossed the
	// mean and were corrected.
	BoundClamps prometheus.Counter

	AlertsPublished    prometheus.Counter
	AlertPublishErrors prometheus.Counter

	HistoricalSeriesPoints prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.PredictionsTotal,
		m.PredictionErrors,
		m.PredictionDuration,
		m.ModelInferenceDuration,
		m.BoundClamps,
		m.AlertsPublished,
		m.AlertPublishErrors,
		m.HistoricalSeriesPoints,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "drought_predictor",
			Name:      "predictions_total",
			Help:      "Completed predictions by classified severity level.",
		}, []string{"level"}),
		PredictionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "drought_predictor",
			Name:      "prediction_errors_total",
			Help:      "Failed predictions by error kind.",
		}, []string{"kind"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "drought_predictor",
			Name:      "prediction_duration_seconds",
			Help:      "Duration of a complete validate-forecast-classify cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		ModelInferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "drought_predictor",
			Name:      "model_inference_duration_seconds",
			Help:      "Duration of the underlying model call.",
			Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		BoundClamps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "drought_predictor",
			Name:      "bound_clamps_total",
			Help:      "Forecast points whose confidence bounds crossed the mean and were clamped.",
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "drought_predictor",
			Name:      "alerts_published_total",
			Help:      "Drought alerts published to the alert topic.",
		}),
		AlertPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "drought_predictor",
			Name:      "alert_publish_errors_total",
			Help:      "Failed alert publish attempts.",
		}),
		HistoricalSeriesPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "drought_predictor",
			Name:      "historical_series_points",
			Help:      "Number of samples in the loaded historical NDVI series.",
		}),
	}
}
