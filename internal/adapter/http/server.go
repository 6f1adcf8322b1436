// Package http exposes the prediction API plus health, readiness, and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rangewatch/drought-predictor/internal/domain"
)

// Predictor runs the forecast pipeline and serves the loaded series.
type Predictor interface {
	Predict(ctx context.Context, horizonWeeks int) (domain.PredictionResult, error)
	Series() domain.HistoricalSeries
	CheckReadiness(ctx context.Context) error
}

// AlertPublisher delivers a drought alert to downstream consumers. Publishing
// is best effort; a failed publish never fails the API request.
type AlertPublisher interface {
	Publish(ctx context.Context, result domain.PredictionResult) error
}

// Server exposes the prediction API over HTTP.
type Server struct {
	httpServer     *http.Server
	predictor      Predictor
	alerts         AlertPublisher
	alertMinLevel  domain.SeverityLevel
	predictTimeout time.Duration
	logger         *slog.Logger
}

// NewServer creates the HTTP server. alerts may be nil when alert publishing
// is disabled; alertMinLevel is the lowest severity that triggers a publish.
func NewServer(addr string, predictor Predictor, alerts AlertPublisher, alertMinLevel domain.SeverityLevel, predictTimeout time.Duration, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		predictor:      predictor,
		alerts:         alerts,
		alertMinLevel:  alertMinLevel,
		predictTimeout: predictTimeout,
		logger:         logger,
	}

	mux.HandleFunc("POST /api/predict", s.handlePredict)
	mux.HandleFunc("GET /api/historical-data", s.handleHistoricalData)
	mux.HandleFunc("GET /api/drought-events", s.handleDroughtEvents)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type predictRequest struct {
	Horizon int `json:"horizon"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.predictTimeout)
	defer cancel()

	result, err := s.predictor.Predict(ctx, req.Horizon)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	s.maybePublishAlert(result)

	writeJSON(w, http.StatusOK, result.Response())
}

// maybePublishAlert fires an alert for severities at or above the configured
// floor. The publish gets its own timeout so a slow broker cannot hold the
// response, and failures are logged rather than surfaced to the caller.
func (s *Server) maybePublishAlert(result domain.PredictionResult) {
	if s.alerts == nil || result.Assessment.Level < s.alertMinLevel {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.alerts.Publish(ctx, result); err != nil {
		s.logger.Warn("alert publish failed",
			"alert_id", result.AlertID(),
			"level", result.Assessment.Level.String(),
			"error", err,
		)
		return
	}

	s.logger.Info("alert published",
		"alert_id", result.AlertID(),
		"level", result.Assessment.Level.String(),
	)
}

type historicalDataPoint struct {
	Date string  `json:"date"`
	NDVI float64 `json:"ndvi"`
}

func (s *Server) handleHistoricalData(w http.ResponseWriter, _ *http.Request) {
	series := s.predictor.Series()
	points := make([]historicalDataPoint, len(series))
	for i, sample := range series {
		points[i] = historicalDataPoint{
			Date: sample.Date.Format(time.DateOnly),
			NDVI: sample.Value,
		}
	}
	writeJSON(w, http.StatusOK, points)
}

type droughtEvent struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// droughtEvents are known Turkana County drought declarations shown as chart
// overlays. Static for now; a registry feed could replace this later.
var droughtEvents = []droughtEvent{
	{Date: "2019-06-15", Description: "Severe drought - Emergency declared"},
	{Date: "2022-03-01", Description: "Moderate drought - Alert issued"},
	{Date: "2023-08-15", Description: "Drought conditions - Alarm level"},
}

func (s *Server) handleDroughtEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, droughtEvents)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.predictor.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// statusFor maps pipeline errors to HTTP statuses. Bad requests and an
// unusable series are client-visible 4xx; a model failure is an upstream 502.
func statusFor(err error) int {
	var mie *domain.ModelInferenceError
	switch {
	case errors.Is(err, domain.ErrInvalidHorizon), errors.Is(err, domain.ErrInvalidSeries):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDegenerateInput):
		return http.StatusUnprocessableEntity
	case errors.As(err, &mie):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
