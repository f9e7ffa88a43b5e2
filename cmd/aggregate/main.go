package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/incident-heatmap-etl/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/incident-heatmap-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/incident-heatmap-etl/internal/adapter/kafka"
	"github.com/couchcryptid/incident-heatmap-etl/internal/config"
	"github.com/couchcryptid/incident-heatmap-etl/internal/observability"
	"github.com/couchcryptid/incident-heatmap-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Announcements are feature-flagged via KAFKA_BROKERS.
	var announcer pipeline.Announcer
	var kafkaAnnouncer *kafkaadapter.Announcer
	if cfg.AnnounceEnabled {
		kafkaAnnouncer = kafkaadapter.NewAnnouncer(cfg, logger)
		announcer = kafkaAnnouncer
		logger.Info("artifact announcements enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAnnounceTopic)
	} else {
		logger.Info("artifact announcements disabled")
	}

	p := pipeline.New(cfg, csvfile.Source{}, announcer, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Ops server is feature-flagged via HTTP_ADDR / -http-addr.
	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	summary, runErr := p.Run(ctx)
	if runErr != nil {
		logger.Error("pipeline failed", "error", runErr)
	} else if srv != nil {
		// Keep serving status and metrics for the finished run until
		// the operator stops us.
		logger.Info("serving run status", "addr", cfg.HTTPAddr, "out", summary.Output)
		<-ctx.Done()
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if kafkaAnnouncer != nil {
		if err := kafkaAnnouncer.Close(); err != nil {
			logger.Error("kafka announcer close error", "error", err)
		}
	}

	if runErr != nil {
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
