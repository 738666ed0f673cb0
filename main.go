package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/dfengine/bqbridge/clients/bigquery"
	"github.com/dfengine/bqbridge/lib/config"
	"github.com/dfengine/bqbridge/lib/gcslib"
	"github.com/dfengine/bqbridge/lib/logger"
	"github.com/dfengine/bqbridge/lib/telemetry/metrics"
)

const usage = `usage:
  bqbridge -c config.yaml query <sql> [standard|legacy]
  bqbridge -c config.yaml load <gs://bucket/path> <project.dataset.table>
  bqbridge -c config.yaml load-local <project.dataset.table> <file> [<file>...]`

func main() {
	settings, args, err := config.LoadSettings(os.Args[1:], true)
	if err != nil {
		logger.Fatal("Failed to load settings", slog.Any("err", err))
	}

	_logger, usingSentry := logger.NewLogger(settings)
	slog.SetDefault(_logger)
	if usingSentry {
		defer sentry.Flush(2 * time.Second)
	}

	ctx := metrics.InjectMetricsClientIntoCtx(context.Background(), metrics.LoadExporter(settings.Config))

	if len(args) == 0 {
		logger.Fatal(usage)
	}

	store, err := bigquery.GetSharedStore(ctx, settings.Config, nil)
	if err != nil {
		logger.Fatal("Failed to create BigQuery client", slog.Any("err", err))
	}

	switch command := args[0]; command {
	case "query":
		if len(args) < 2 {
			logger.Fatal(usage)
		}

		useStandardSQL := len(args) > 2 && args[2] == "standard"
		ref, err := store.ResolveQuery(ctx, args[1], useStandardSQL, bigquery.PriorityInteractive)
		if err != nil {
			logger.Fatal("Query failed", slog.Any("err", err))
		}

		fmt.Println(ref.String())
	case "load":
		if len(args) != 3 {
			logger.Fatal(usage)
		}

		destination, err := bigquery.ParseTableReference(args[2])
		if err != nil {
			logger.Fatal("Invalid destination", slog.Any("err", err))
		}

		if err := store.Load(ctx, args[1], destination, bigquery.WriteDefault, bigquery.CreateDefault); err != nil {
			logger.Fatal("Load failed", slog.Any("err", err))
		}
	case "load-local":
		if len(args) < 3 {
			logger.Fatal(usage)
		}

		destination, err := bigquery.ParseTableReference(args[1])
		if err != nil {
			logger.Fatal("Invalid destination", slog.Any("err", err))
		}

		gcsClient, err := gcslib.NewGCSClient(ctx, settings.Config.BigQuery.PathToCredentials)
		if err != nil {
			logger.Fatal("Failed to create GCS client", slog.Any("err", err))
		}

		if err := store.LoadLocalFiles(ctx, gcsClient, args[2:], destination, bigquery.WriteDefault, bigquery.CreateDefault); err != nil {
			logger.Fatal("Load failed", slog.Any("err", err))
		}
	default:
		logger.Fatal(usage)
	}
}
