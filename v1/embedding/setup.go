package embedding

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/image-embedder/v1/tensor"
)

// Logger defines the logging operations used by the embedding client.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=embedding
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Backend performs one inference call for the named model. Implementations
// must be safe for concurrent use; the triton package provides the HTTP
// implementation.
type Backend interface {
	Infer(ctx context.Context, modelName string, req *tensor.InferenceRequest) (*tensor.InferenceResponse, error)
}

// Tracer creates spans around embedding calls. *tracer.Tracer satisfies it.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
	SetAttributes(span trace.Span, attrs map[string]interface{})
}
