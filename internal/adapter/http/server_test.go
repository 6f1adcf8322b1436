package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/rangewatch/drought-predictor/internal/adapter/http"
	"github.com/rangewatch/drought-predictor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPredictor struct {
	result   domain.PredictionResult
	err      error
	readyErr error
	series   domain.HistoricalSeries
}

func (m *mockPredictor) Predict(_ context.Context, _ int) (domain.PredictionResult, error) {
	return m.result, m.err
}

func (m *mockPredictor) Series() domain.HistoricalSeries { return m.series }

func (m *mockPredictor) CheckReadiness(_ context.Context) error { return m.readyErr }

type mockPublisher struct {
	err       error
	published []domain.PredictionResult
}

func (m *mockPublisher) Publish(_ context.Context, result domain.PredictionResult) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, result)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func resultWithLevel(level domain.SeverityLevel, changeRate float64) domain.PredictionResult {
	return domain.PredictionResult{
		Forecast: domain.Forecast{{
			Date:  time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC),
			Mean:  0.30,
			Lower: 0.25,
			Upper: 0.35,
		}},
		Assessment: domain.DroughtAssessment{
			Level:      level,
			ChangeRate: changeRate,
			Insights:   []string{"trend line", "action one"},
		},
		GeneratedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
	}
}

func newTestServer(p *mockPredictor, alerts httpadapter.AlertPublisher) *httpadapter.Server {
	return httpadapter.NewServer(":0", p, alerts, domain.SeverityAlert, 5*time.Second, discardLogger())
}

func doPredict(t *testing.T, srv *httpadapter.Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	srv.ServeHTTP(rec, req)
	return rec
}

func TestPredictReturnsForecast(t *testing.T) {
	p := &mockPredictor{result: resultWithLevel(domain.SeverityAlarm, -25.04)}
	rec := doPredict(t, newTestServer(p, nil), `{"horizon": 2}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []any{"2026-02-12"}, body["dates"])
	assert.Equal(t, []any{0.30}, body["ndvi"])
	assert.Equal(t, "Alarm", body["drought_level"])
	assert.Equal(t, -25.0, body["change_rate"])
	assert.Equal(t, "#FFA500", body["color_code"])
	assert.Len(t, body["insights"], 2)
}

func TestPredictRejectsMalformedBody(t *testing.T) {
	rec := doPredict(t, newTestServer(&mockPredictor{}, nil), `{"horizon": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid horizon", fmt.Errorf("%w: 5 weeks", domain.ErrInvalidHorizon), http.StatusBadRequest},
		{"invalid series", fmt.Errorf("%w: empty", domain.ErrInvalidSeries), http.StatusBadRequest},
		{"degenerate input", fmt.Errorf("%w: zero baseline", domain.ErrDegenerateInput), http.StatusUnprocessableEntity},
		{"model inference", &domain.ModelInferenceError{Err: errors.New("boom")}, http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&mockPredictor{err: tt.err}, nil)
			rec := doPredict(t, srv, `{"horizon": 4}`)

			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestPredictPublishesAlertAtOrAboveFloor(t *testing.T) {
	pub := &mockPublisher{}
	p := &mockPredictor{result: resultWithLevel(domain.SeverityAlarm, -25.04)}

	rec := doPredict(t, newTestServer(p, pub), `{"horizon": 2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, pub.published, 1)
	assert.Equal(t, domain.SeverityAlarm, pub.published[0].Assessment.Level)
}

func TestPredictSkipsAlertBelowFloor(t *testing.T) {
	pub := &mockPublisher{}
	p := &mockPredictor{result: resultWithLevel(domain.SeverityNormal, 0.5)}

	rec := doPredict(t, newTestServer(p, pub), `{"horizon": 2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, pub.published)
}

func TestPredictSucceedsWhenPublishFails(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker unreachable")}
	p := &mockPredictor{result: resultWithLevel(domain.SeverityEmergency, -40)}

	rec := doPredict(t, newTestServer(p, pub), `{"horizon": 2}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHistoricalDataEndpoint(t *testing.T) {
	p := &mockPredictor{series: domain.HistoricalSeries{
		{Date: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), Value: 0.38},
		{Date: time.Date(2026, 1, 29, 0, 0, 0, 0, time.UTC), Value: 0.40},
	}}
	srv := newTestServer(p, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/historical-data", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "2026-01-15", body[0]["date"])
	assert.Equal(t, 0.38, body[0]["ndvi"])
}

func TestDroughtEventsEndpoint(t *testing.T) {
	srv := newTestServer(&mockPredictor{}, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drought-events", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 3)
	assert.Equal(t, "2019-06-15", body[0]["date"])
	assert.Contains(t, body[0]["description"], "Emergency")
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(&mockPredictor{}, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyz(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		srv := newTestServer(&mockPredictor{}, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		srv := newTestServer(&mockPredictor{readyErr: errors.New("series not loaded")}, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "not ready", body["status"])
		assert.Equal(t, "series not loaded", body["error"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&mockPredictor{}, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
