package embedding

import (
	"context"
	"fmt"
	"sort"

	"github.com/Aleph-Alpha/image-embedder/v1/assetstore"
	"github.com/Aleph-Alpha/image-embedder/v1/observability"
	"github.com/Aleph-Alpha/image-embedder/v1/preprocess"
)

// Client is the public entrypoint for computing image embeddings.
//
// It owns one preprocessing profile per known model, loaded when the client
// is constructed, and forwards preprocessed images to a Backend. The profile
// registry never changes after NewClient returns, so EmbedImage may be
// called from many goroutines without locking.
type Client struct {
	backend  Backend
	profiles map[ModelIdentifier]*preprocess.Profile
	logger   Logger
	observer observability.Observer
	tracer   Tracer
}

// NewClient loads the preprocessing profile of every known model from
// assets and returns a client that sends inference calls to backend.
// Construction fails on the first profile that cannot be loaded; no client
// is returned in that case.
func NewClient(backend Backend, assets assetstore.Source, logger Logger) (*Client, error) {
	return NewClientContext(context.Background(), backend, assets, logger)
}

// NewClientContext is NewClient with a context bounding profile loading.
func NewClientContext(ctx context.Context, backend Backend, assets assetstore.Source, logger Logger) (*Client, error) {
	switch {
	case backend == nil:
		return nil, fmt.Errorf("embedding: backend is required")
	case assets == nil:
		return nil, fmt.Errorf("embedding: asset source is required")
	case logger == nil:
		return nil, fmt.Errorf("embedding: logger is required")
	}

	models := KnownModels()
	profiles := make(map[ModelIdentifier]*preprocess.Profile, len(models))
	for _, model := range models {
		profile, err := preprocess.Load(ctx, assets, model.AssetDir())
		if err != nil {
			logger.Error("Failed to load preprocessing profile", err, map[string]interface{}{
				"model":     model.String(),
				"asset_dir": model.AssetDir(),
			})
			return nil, fmt.Errorf("embedding: model %s: %w", model, err)
		}
		logger.Info("Loaded preprocessing profile", nil, map[string]interface{}{
			"model":     model.String(),
			"asset_dir": model.AssetDir(),
		})
		profiles[model] = profile
	}

	return &Client{
		backend:  backend,
		profiles: profiles,
		logger:   logger,
	}, nil
}

// WithObserver attaches an observer that is notified about every
// EmbedImage call and backend round trip. It must be called before the
// client is used concurrently.
//
// Example:
//
//	client, err := embedding.NewClient(backend, assets, log)
//	if err != nil {
//	    return err
//	}
//	client = client.WithObserver(metricsInstance)
func (c *Client) WithObserver(observer observability.Observer) *Client {
	c.observer = observer
	return c
}

// WithTracer wraps every EmbedImage call in a span.
func (c *Client) WithTracer(tracer Tracer) *Client {
	c.tracer = tracer
	return c
}

// Models returns the identifiers the client has profiles for.
func (c *Client) Models() []ModelIdentifier {
	models := make([]ModelIdentifier, 0, len(c.profiles))
	for m := range c.profiles {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i] < models[j] })
	return models
}

// Profile returns the preprocessing profile loaded for model.
func (c *Client) Profile(model ModelIdentifier) (*preprocess.Profile, bool) {
	p, ok := c.profiles[model]
	return p, ok
}
