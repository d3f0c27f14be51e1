package triton

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides the Triton client to the Fx container and registers its
// lifecycle hooks.
//
// Dependencies required by this module:
//   - a triton.Config
//   - a triton.Logger
//
// Usage:
//
//	app := fx.New(
//	    triton.FXModule,
//	    fx.Supply(triton.DefaultConfig()),
//	    // other modules...
//	)
var FXModule = fx.Module("triton",
	fx.Provide(NewClient),
	fx.Invoke(RegisterTritonLifecycle),
)

// RegisterTritonLifecycle checks server readiness on start and releases idle
// connections on stop.
//
// An unreachable server is only logged: the server may come up after the
// client, and every inference call reports its own errors.
func RegisterTritonLifecycle(lc fx.Lifecycle, client *Client, logger Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.ServerReady(ctx); err != nil {
				logger.Warn("Triton server is not ready", err, map[string]interface{}{
					"url": client.BaseURL(),
				})
				return nil
			}
			logger.Info("Triton server is ready", nil, map[string]interface{}{
				"url": client.BaseURL(),
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
