package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/avalanche-stats/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/avalanche-stats/internal/adapter/kafka"
	"github.com/couchcryptid/avalanche-stats/internal/adapter/source"
	"github.com/couchcryptid/avalanche-stats/internal/config"
	"github.com/couchcryptid/avalanche-stats/internal/observability"
	"github.com/couchcryptid/avalanche-stats/internal/pipeline"
	"github.com/couchcryptid/avalanche-stats/internal/session"
	"github.com/couchcryptid/avalanche-stats/internal/snapshot"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const sessionSweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	var fetcher pipeline.Fetcher
	if cfg.DatasetPath != "" {
		fetcher = source.NewFileFetcher(cfg.DatasetPath)
		logger.Info("dataset source", "path", cfg.DatasetPath)
	} else {
		fetcher = source.NewHTTPFetcher(cfg.DatasetURL, cfg.DatasetTimeout, logger)
		logger.Info("dataset source", "url", cfg.DatasetURL, "timeout", cfg.DatasetTimeout)
	}

	store := snapshot.NewStore()
	opts := []pipeline.Option{pipeline.WithClock(clock)}

	// Kafka is feature-flagged via KAFKA_ENABLED.
	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger, metrics)
		opts = append(opts, pipeline.WithTrigger(reader), pipeline.WithPublisher(writer))
		logger.Info("kafka enabled",
			"brokers", cfg.KafkaBrokers,
			"trigger_topic", cfg.KafkaTriggerTopic,
			"sink_topic", cfg.KafkaSinkTopic,
		)
	} else {
		logger.Info("kafka disabled")
	}

	refresher := pipeline.New(fetcher, store, cfg.RefreshInterval, logger, metrics, opts...)
	sessions := session.NewManager(clock, metrics, cfg.SessionCacheSize, cfg.SessionMax, cfg.SessionTTL)

	srv := httpadapter.NewServer(cfg.HTTPAddr, refresher, httpadapter.Deps{
		Store:    store,
		Sessions: sessions,
		Metrics:  metrics,
		Clock:    clock,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return refresher.Run(gctx)
	})
	g.Go(func() error {
		sessions.Run(gctx, sessionSweepInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
	}

	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
