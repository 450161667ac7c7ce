// Command export publishes every normalized record in the source CSV to the
// configured Kafka topic, keyed by event ID. Settings come from the same
// environment variables as the map service.
//
// Usage:
//
//	QUAKE_CSV_PATH=data/zishin.csv KAFKA_BROKERS=localhost:9092 go run ./cmd/export
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	kafkaadapter "github.com/couchcryptid/quake-data-etl/internal/adapter/kafka"
	"github.com/couchcryptid/quake-data-etl/internal/config"
	"github.com/couchcryptid/quake-data-etl/internal/observability"
	"github.com/couchcryptid/quake-data-etl/internal/pipeline"
	"github.com/couchcryptid/quake-data-etl/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	csvPath := flag.String("csv", cfg.CSVPath, "path to the seismic event CSV")
	flag.Parse()

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	loader := source.NewLoader(*csvPath, cfg.SourceEncoding, cfg.Location, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	p := pipeline.New(loader, nil, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	published, err := p.Export(ctx, writer, cfg.BatchSize)
	if cerr := writer.Close(); cerr != nil {
		logger.Error("kafka writer close error", "error", cerr)
	}
	if err != nil {
		logger.Error("export failed", "published", published, "error", err)
		os.Exit(1)
	}
	logger.Info("export finished", "topic", cfg.KafkaSinkTopic, "published", published)
}
