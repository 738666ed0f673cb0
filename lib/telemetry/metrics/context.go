package metrics

import "context"

type contextKey string

const metricsClientKey contextKey = "_mck"

func InjectMetricsClientIntoCtx(ctx context.Context, metricsClient Client) context.Context {
	return context.WithValue(ctx, metricsClientKey, metricsClient)
}

func FromContext(ctx context.Context) Client {
	metricsClientVal := ctx.Value(metricsClientKey)
	if metricsClientVal == nil {
		return NullMetricsProvider{}
	}

	metricsClient, ok := metricsClientVal.(Client)
	if !ok {
		return NullMetricsProvider{}
	}

	return metricsClient
}
