package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rangewatch/drought-predictor/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	NDVICSVPath  string
	ModelPath    string
	ModelTimeout time.Duration

	// Kafka alert publishing configuration.
	AlertsEnabled   bool
	KafkaBrokers    []string
	KafkaAlertTopic string
	AlertMinLevel   domain.SeverityLevel
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	modelTimeout, err := parseDuration("MODEL_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	alertMinLevel, err := parseAlertMinLevel()
	if err != nil {
		return nil, err
	}

	alertsEnabled := false
	if v := os.Getenv("ALERTS_ENABLED"); v != "" {
		alertsEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		NDVICSVPath:  envOrDefault("NDVI_CSV_PATH", "data/ndvi_biweekly.csv"),
		ModelPath:    envOrDefault("MODEL_PATH", "data/ndvi_seasonal_model.json"),
		ModelTimeout: modelTimeout,

		AlertsEnabled:   alertsEnabled,
		KafkaBrokers:    parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAlertTopic: envOrDefault("KAFKA_ALERT_TOPIC", "drought-alerts"),
		AlertMinLevel:   alertMinLevel,
	}

	if cfg.NDVICSVPath == "" {
		return nil, errors.New("NDVI_CSV_PATH is required")
	}
	if cfg.ModelPath == "" {
		return nil, errors.New("MODEL_PATH is required")
	}
	if cfg.AlertsEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("ALERTS_ENABLED is true but KAFKA_BROKERS is not set")
		}
		if cfg.KafkaAlertTopic == "" {
			return nil, errors.New("ALERTS_ENABLED is true but KAFKA_ALERT_TOPIC is not set")
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseAlertMinLevel() (domain.SeverityLevel, error) {
	s := envOrDefault("ALERT_MIN_LEVEL", "Alert")
	level, err := domain.ParseSeverityLevel(s)
	if err != nil {
		return 0, fmt.Errorf("invalid ALERT_MIN_LEVEL %q", s)
	}
	return level, nil
}
