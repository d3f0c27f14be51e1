package embedding

import (
	"context"

	"go.uber.org/fx"
)

// FXModule wires the embedding client into Fx.
//
// It provides:
//   - *Client                (NewClient)
//   - Lifecycle hook         (RegisterEmbeddingLifecycle)
//
// Dependencies required by this module:
//   - an embedding.Backend, e.g. *triton.Client
//   - an assetstore.Source
//   - an embedding.Logger
var FXModule = fx.Module(
	"embedding",

	fx.Provide(
		NewClient, // -> *Client
	),

	fx.Invoke(RegisterEmbeddingLifecycle),
)

// -------------------------------------------------------
// Lifecycle hook
// -------------------------------------------------------

// RegisterEmbeddingLifecycle logs the models the client serves once the
// application has started. Profiles are loaded during construction, so a
// broken asset store already fails the Fx graph before OnStart.
func RegisterEmbeddingLifecycle(lc fx.Lifecycle, client *Client, logger Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			models := make([]string, 0, len(client.profiles))
			for _, m := range client.Models() {
				models = append(models, m.String())
			}
			logger.Info("Embedding client ready", nil, map[string]interface{}{
				"models": models,
			})
			return nil
		},
	})
}
