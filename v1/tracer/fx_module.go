package tracer

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides a *Tracer built from Config and flushes it on stop.
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle shuts the tracer provider down when the application stops.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			tracer.logger.Info("Shutting down tracer", nil)
			if tracer.tracer == nil {
				tracer.logger.Warn("Tracer was nil during shutdown", nil)
				return nil
			}
			return tracer.Shutdown(ctx)
		},
	})
}
