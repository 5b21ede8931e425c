package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/landscape-sim-service/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/landscape-sim-service/internal/adapter/kafka"
	"github.com/couchcryptid/landscape-sim-service/internal/config"
	"github.com/couchcryptid/landscape-sim-service/internal/coordinator"
	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/couchcryptid/landscape-sim-service/internal/ledger"
	"github.com/couchcryptid/landscape-sim-service/internal/observability"
	"github.com/couchcryptid/landscape-sim-service/internal/source"
	"github.com/couchcryptid/landscape-sim-service/internal/specialist"
	"github.com/couchcryptid/landscape-sim-service/internal/store"
	"github.com/couchcryptid/landscape-sim-service/internal/synthesis"
	anthropicbackend "github.com/couchcryptid/landscape-sim-service/internal/synthesis/anthropic"
	openaibackend "github.com/couchcryptid/landscape-sim-service/internal/synthesis/openai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	registry := source.NewRegistry(source.Options{
		OpenWeatherKey: cfg.OpenWeatherKey,
		FIRMSKey:       cfg.FIRMSKey,
		WAQIToken:      cfg.WAQIToken,
		AdapterTimeout: cfg.AdapterTimeout,
		CacheSize:      cfg.SourceCacheSize,
	}, logger, metrics)

	// Planner and synthesizer back onto the configured provider; unset means
	// fully rule-based operation.
	var (
		planner synthesis.Planner
		synth   synthesis.Synthesizer
	)
	switch cfg.SynthProvider {
	case "openai":
		var opts []func(o *openaibackend.Options)
		if cfg.SynthModel != "" {
			opts = append(opts, openaibackend.WithModel(cfg.SynthModel))
		}
		client := openaibackend.New(registry, opts...)
		planner, synth = client, client
		logger.Info("synthesis provider enabled", "provider", "openai", "model", cfg.SynthModel)
	case "anthropic":
		var opts []func(o *anthropicbackend.Options)
		if cfg.SynthModel != "" {
			opts = append(opts, anthropicbackend.WithModel(cfg.SynthModel))
		}
		client := anthropicbackend.New(registry, opts...)
		planner, synth = client, client
		logger.Info("synthesis provider enabled", "provider", "anthropic", "model", cfg.SynthModel)
	default:
		rb := synthesis.NewRuleBased()
		planner, synth = rb, nil
		logger.Info("synthesis provider disabled, running rule-based")
	}

	workerCfg := specialist.Config{
		Deadline:        cfg.SpecialistDeadline,
		AdapterTimeout:  cfg.AdapterTimeout,
		SynthTimeout:    cfg.SynthTimeout,
		MinOptionLabels: cfg.MinOptionLabels,
		MaxOptionLabels: cfg.MaxOptionLabels,
	}
	workers := make([]coordinator.Specialist, 0, len(domain.AllSpecialists()))
	for _, specialty := range domain.AllSpecialists() {
		workers = append(workers, specialist.New(specialty, registry, planner, synth, workerCfg, logger, metrics))
	}

	// Optional downstream feed (feature-flagged via KAFKA_ENABLED).
	var (
		pub    coordinator.Publisher
		writer *kafkaadapter.ReportWriter
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewReportWriter(cfg, logger)
		pub = writer
		logger.Info("kafka report publishing enabled", "topic", cfg.KafkaReportTopic)
	} else {
		logger.Info("kafka report publishing disabled")
	}

	ld := ledger.New(clock, logger)
	st := store.New(clock, cfg.CompletedTTL, cfg.SweepInterval, logger)

	coord, err := coordinator.New(coordinator.Config{
		RequestTimeout:  cfg.RequestTimeout,
		PlanTimeout:     cfg.SynthTimeout,
		PublishTimeout:  cfg.ShutdownTimeout,
		MinOptionLabels: cfg.MinOptionLabels,
		MaxOptionLabels: cfg.MaxOptionLabels,
	}, ld, st, planner, workers, pub, clock, logger, metrics)
	if err != nil {
		logger.Error("failed to build coordinator", "error", err)
		os.Exit(1)
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, coord, st, registry, clock, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start completed-report eviction.
	go st.Run(ctx)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
