package metrics

import (
	"log/slog"

	"github.com/dfengine/bqbridge/lib/config"
)

const datadogProvider = "datadog"

// LoadExporter builds the metrics client from the telemetry section of the config.
// An unknown or missing provider falls back to the null provider.
func LoadExporter(cfg config.Config) Client {
	switch cfg.Telemetry.Metrics.Provider {
	case datadogProvider:
		client, err := NewDatadogClient(cfg.Telemetry.Metrics.Settings)
		if err != nil {
			slog.Warn("Failed to load datadog metrics client, falling back to the null provider", slog.Any("err", err))
			return NullMetricsProvider{}
		}

		slog.Info("Datadog metrics client loaded")
		return client
	default:
		return NullMetricsProvider{}
	}
}
