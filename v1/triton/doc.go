// Package triton implements the HTTP side of the KServe v2 inference protocol
// as served by NVIDIA Triton, including the binary tensor extension.
//
// Client implements embedding.Backend:
//
//	client, err := triton.NewClient(triton.Config{
//	    URL:          "localhost:8000",
//	    ModelVersion: "1",
//	}, log)
//	if err != nil {
//	    return err
//	}
//	resp, err := client.Infer(ctx, "bria_attribution_model", req)
//
// Each call is a POST to
//
//	/v2/models/<model>/versions/<version>/infer
//
// (without the version segment when ModelVersion is empty) whose body is the
// JSON request header followed by the raw input tensors. The header size is
// sent in the Inference-Header-Content-Length header; responses carrying the
// same header are split accordingly, responses without it are parsed as
// plain JSON.
//
// # Errors
//
// Every failure wraps ErrBackend. Non-2xx responses are returned as
// *StatusError with the HTTP status and the server's error message:
//
//	var statusErr *triton.StatusError
//	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
//	    // unknown model
//	}
//
// The client never retries.
//
// # Configuration
//
// With the application prefix EMBEDDER:
//
//	EMBEDDER_TRITON_URL=localhost:8000
//	EMBEDDER_TRITON_MODEL_VERSION=1
//	EMBEDDER_TRITON_TIMEOUT=30s
//
// # Tracing
//
// The HTTP transport is wrapped with otelhttp, so the span active in the
// request context becomes the parent of the server-side trace.
package triton
