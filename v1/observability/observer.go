// Package observability defines the hook through which components report the
// operations they perform, so metrics and tracing can be attached without the
// components depending on a particular backend.
//
// Components expose a WithObserver method and call ObserveOperation once per
// operation:
//
//	client.WithObserver(metricsInstance)
//
// A nil observer disables reporting.
package observability

import "time"

// Observer receives one OperationContext per completed operation.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes a single completed operation.
type OperationContext struct {
	// Component is the reporting package, e.g. "embedding" or "triton".
	Component string

	// Operation is the operation name, e.g. "embed_image" or "infer".
	Operation string

	// Resource is the primary resource, e.g. a model name or a bucket.
	Resource string

	// SubResource is an optional secondary resource, e.g. an object key.
	SubResource string

	// Duration is the wall time the operation took.
	Duration time.Duration

	// Error is the error the operation failed with, or nil.
	Error error

	// Size is an optional payload size in bytes.
	Size int64

	// Metadata carries additional operation specific details.
	Metadata map[string]interface{}
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}
