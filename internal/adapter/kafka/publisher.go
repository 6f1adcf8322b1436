// Package kafka publishes drought alerts to the alert topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rangewatch/drought-predictor/internal/config"
	"github.com/rangewatch/drought-predictor/internal/domain"
	"github.com/rangewatch/drought-predictor/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces drought alert messages to a Kafka topic.
// It implements http.AlertPublisher.
type Publisher struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a Kafka producer for the configured alert topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger, metrics: metrics}
}

// Publish serializes and writes one alert. The message key is the alert ID,
// so repeated predictions of the same outlook land on the same partition and
// compact to one record.
func (p *Publisher) Publish(ctx context.Context, result domain.PredictionResult) error {
	msg, err := serializeAlert(result)
	if err != nil {
		p.metrics.AlertPublishErrors.Inc()
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.AlertPublishErrors.Inc()
		return fmt.Errorf("write alert to kafka: %w", err)
	}

	p.metrics.AlertsPublished.Inc()
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// alertPayload is the wire form of a drought alert.
type alertPayload struct {
	AlertID         string   `json:"alert_id"`
	DroughtLevel    string   `json:"drought_level"`
	ColorCode       string   `json:"color_code"`
	ChangeRate      float64  `json:"change_rate"`
	HorizonWeeks    int      `json:"horizon_weeks"`
	ForecastEndDate string   `json:"forecast_end_date"`
	ForecastEndNDVI float64  `json:"forecast_end_ndvi"`
	Insights        []string `json:"insights"`
	IssuedAt        string   `json:"issued_at"`
}

// serializeAlert marshals a prediction result into a Kafka alert message.
func serializeAlert(result domain.PredictionResult) (kafkago.Message, error) {
	end := result.Forecast.Last()
	payload := alertPayload{
		AlertID:         result.AlertID(),
		DroughtLevel:    result.Assessment.Level.String(),
		ColorCode:       result.Assessment.Level.ColorCode(),
		ChangeRate:      result.Assessment.ChangeRate,
		HorizonWeeks:    result.HorizonWeeks(),
		ForecastEndDate: end.Date.Format(time.DateOnly),
		ForecastEndNDVI: end.Mean,
		Insights:        result.Assessment.Insights,
		IssuedAt:        result.GeneratedAt.Format(time.RFC3339),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize drought alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(payload.AlertID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "drought_level", Value: []byte(payload.DroughtLevel)},
			{Key: "issued_at", Value: []byte(payload.IssuedAt)},
		},
	}, nil
}
