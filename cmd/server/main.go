package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rangewatch/drought-predictor/internal/adapter/csvdata"
	httpadapter "github.com/rangewatch/drought-predictor/internal/adapter/http"
	kafkaadapter "github.com/rangewatch/drought-predictor/internal/adapter/kafka"
	"github.com/rangewatch/drought-predictor/internal/config"
	"github.com/rangewatch/drought-predictor/internal/forecast"
	"github.com/rangewatch/drought-predictor/internal/observability"
	"github.com/rangewatch/drought-predictor/internal/pipeline"
)

func main() {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	series, err := csvdata.NewLoader(cfg.NDVICSVPath, logger).Load()
	if err != nil {
		logger.Error("failed to load NDVI series", "path", cfg.NDVICSVPath, "error", err)
		os.Exit(1)
	}

	model, err := forecast.LoadSeasonalModel(cfg.ModelPath)
	if err != nil {
		logger.Error("failed to load forecast model", "path", cfg.ModelPath, "error", err)
		os.Exit(1)
	}

	engine := forecast.NewEngine(model, logger, metrics)
	orchestrator := pipeline.New(series, engine, logger, metrics)

	// Alert publishing is feature-flagged via ALERTS_ENABLED.
	var alerts httpadapter.AlertPublisher
	var publisher *kafkaadapter.Publisher
	if cfg.AlertsEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger, metrics)
		alerts = publisher
		logger.Info("alert publishing enabled",
			"topic", cfg.KafkaAlertTopic, "min_level", cfg.AlertMinLevel.String())
	} else {
		logger.Info("alert publishing disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, orchestrator, alerts, cfg.AlertMinLevel, cfg.ModelTimeout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
