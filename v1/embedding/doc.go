// Package embedding provides a unified, high-level API for computing image
// embeddings with models served behind a KServe v2 / Triton inference
// backend.
//
// # Overview
//
// The package exposes a single public entrypoint, Client, which hides image
// preprocessing, tensor framing and backend calls from the application.
//
// A client is constructed using:
//
//	client, err := embedding.NewClient(backend, assets, log)
//
// NewClient loads the preprocessing profile of every known model from the
// asset store up front. If any profile is missing or malformed, construction
// fails and no client is returned; a successfully constructed client never
// fails because of a missing profile later.
//
// Once created, the client embeds images via:
//
//	result, err := client.EmbedImage(ctx, img, embedding.ImageOptions{
//	    Model:     embedding.ModelBriaAttribution,
//	    Normalize: true,
//	})
//
// or, for encoded image files:
//
//	result, err := client.EmbedImageBytes(ctx, data, embedding.ImageOptions{})
//
// # Models
//
// Model identifiers form a closed set. Each identifier maps to the asset
// directory holding its preprocessing configuration:
//
//   - ModelBriaAttribution ("bria_attribution_model")
//     assets in "bria_attribution_model_client"
//
// An empty ImageOptions.Model selects DefaultModel. Identifiers outside the
// set fail with ErrUnknownModel.
//
// # Call stages
//
// Every EmbedImage call runs through the same stages:
//
//	idle -> preprocessing -> request_built -> awaiting_backend -> decoded -> done
//
// A failure ends the call and is returned as *StageError, which records the
// stage and wraps the originating error:
//
//	var stageErr *embedding.StageError
//	if errors.As(err, &stageErr) && stageErr.Stage == embedding.StageAwaitingBackend {
//	    // the backend call failed
//	}
//	if errors.Is(err, tensor.ErrMissingOutput) {
//	    // the response had no "output__0"
//	}
//
// Each call performs exactly one backend request with batch size 1. There
// are no retries and no client-side timeout; cancellation through ctx is
// honored by the backend. A failed call does not affect later calls.
//
// # Results
//
// Result holds one Embedding per input image. Numeric outputs become
// Embedding.Vector (split along the leading dimension; a 1-D output is a
// single row), BYTES outputs become Embedding.Text. With Normalize set,
// vectors are scaled to unit L2 norm; zero vectors are returned unchanged
// and BYTES outputs fail with ErrNormalizeUnsupported.
//
// # Concurrency
//
// The profile registry is immutable after construction, so EmbedImage is safe
// for concurrent use. WithObserver and WithTracer must be called before the
// client is shared.
//
// # Dependency Injection (Fx)
//
// A ready-to-use Fx module is provided:
//
//	embedding.FXModule
//
// which supplies *embedding.Client from an injected Backend,
// assetstore.Source and Logger:
//
//	app := fx.New(
//	    triton.FXModule,
//	    assetstore.FXModule,
//	    embedding.FXModule,
//	    fx.Invoke(func(c *embedding.Client) {
//	        // Use embeddings
//	    }),
//	)
package embedding
