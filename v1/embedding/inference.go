package embedding

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/image-embedder/v1/preprocess"
	"github.com/Aleph-Alpha/image-embedder/v1/tensor"
)

// EmbedImage computes the embedding of a single image with the model named
// in opts. The image is preprocessed with the model's profile, sent to the
// backend as one FP32 input with batch size 1, and the output tensor is
// returned as one Embedding.
//
// The call makes exactly one backend request and does not retry. Failures
// are returned as *StageError wrapping the originating error, e.g.
// ErrUnknownModel, preprocess.ErrUnsupportedImage, tensor.ErrMissingOutput
// or the backend's own error. A failed call leaves the client usable.
func (c *Client) EmbedImage(ctx context.Context, img image.Image, opts ImageOptions) (Result, error) {
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	var span trace.Span
	if c.tracer != nil {
		ctx, span = c.tracer.StartSpan(ctx, "embedding.EmbedImage")
		defer span.End()
		c.tracer.SetAttributes(span, map[string]interface{}{
			"embedding.model":     model.String(),
			"embedding.normalize": opts.Normalize,
		})
	}

	start := time.Now()
	result, err := c.embed(ctx, model, img, opts.Normalize)
	c.observeOperation("embed_image", model.String(), time.Since(start), err, map[string]interface{}{
		"normalize": opts.Normalize,
	})
	if err != nil && span != nil {
		c.tracer.RecordErrorOnSpan(span, err)
	}
	return result, err
}

// EmbedImageBytes decodes an encoded image (PNG, JPEG, GIF, BMP, TIFF or
// WebP) and embeds it.
func (c *Client) EmbedImageBytes(ctx context.Context, data []byte, opts ImageOptions) (Result, error) {
	img, _, err := preprocess.DecodeImage(bytes.NewReader(data))
	if err != nil {
		model := opts.Model
		if model == "" {
			model = DefaultModel
		}
		return nil, stageError(StagePreprocessing, model, err)
	}
	return c.EmbedImage(ctx, img, opts)
}

func (c *Client) embed(ctx context.Context, model ModelIdentifier, img image.Image, normalize bool) (Result, error) {
	profile, ok := c.profiles[model]
	if !ok {
		return nil, stageError(StageIdle, model, fmt.Errorf("%w: %q", ErrUnknownModel, string(model)))
	}

	input, err := profile.Preprocess(img)
	if err != nil {
		return nil, stageError(StagePreprocessing, model, err)
	}

	req, err := tensor.BuildRequest([]*tensor.Tensor{input}, tensor.DefaultOutputName, tensor.DefaultDatatype)
	if err != nil {
		return nil, stageError(StageRequestBuilt, model, err)
	}

	start := time.Now()
	resp, err := c.backend.Infer(ctx, model.String(), req)
	elapsed := time.Since(start)
	c.logger.Debug("Backend inference finished", err, map[string]interface{}{
		"model":       model.String(),
		"duration_ms": elapsed.Milliseconds(),
	})
	c.observeOperation("infer", model.String(), elapsed, err, nil)
	if err != nil {
		return nil, stageError(StageAwaitingBackend, model, err)
	}

	out, err := tensor.DecodeResponse(resp, tensor.DefaultOutputName)
	if err != nil {
		return nil, stageError(StageDecoded, model, err)
	}

	result, err := toResult(out, batchSize(input.Shape), normalize)
	if err != nil {
		return nil, stageError(StageDone, model, err)
	}
	return result, nil
}

// batchSize returns the leading dimension of a preprocessed input.
func batchSize(shape []int64) int {
	if len(shape) == 0 {
		return 1
	}
	return int(shape[0])
}
