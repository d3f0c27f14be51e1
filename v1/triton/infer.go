package triton

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Aleph-Alpha/image-embedder/v1/tensor"
)

// Infer sends req to the model and returns the parsed response.
//
// The request body is the JSON header followed by the raw input tensors;
// its header size travels in the Inference-Header-Content-Length header.
// Failures wrap ErrBackend; non-2xx responses are *StatusError.
func (c *Client) Infer(ctx context.Context, modelName string, req *tensor.InferenceRequest) (*tensor.InferenceResponse, error) {
	start := time.Now()
	resp, size, err := c.infer(ctx, modelName, req)
	c.observeOperation("infer", modelName, c.cfg.ModelVersion, time.Since(start), err, size)
	return resp, err
}

func (c *Client) infer(ctx context.Context, modelName string, req *tensor.InferenceRequest) (*tensor.InferenceResponse, int64, error) {
	if req == nil {
		return nil, 0, fmt.Errorf("%w: nil request", ErrBackend)
	}
	body, headerLength, err := req.Encode()
	if err != nil {
		return nil, 0, fmt.Errorf("triton: encode request: %w", err)
	}

	headers := map[string]string{
		"Content-Type":             "application/octet-stream",
		tensor.HeaderContentLength: strconv.Itoa(headerLength),
	}
	respBody, respHeader, err := c.do(ctx, http.MethodPost, c.inferPath(modelName), body, headers)
	if err != nil {
		return nil, int64(len(body)), err
	}

	respHeaderLength := 0
	if v := respHeader.Get(tensor.HeaderContentLength); v != "" {
		respHeaderLength, err = strconv.Atoi(v)
		if err != nil || respHeaderLength < 0 {
			return nil, int64(len(body)), fmt.Errorf("%w: invalid %s %q", ErrBackend, tensor.HeaderContentLength, v)
		}
	}

	resp, err := tensor.ParseResponse(respBody, respHeaderLength)
	if err != nil {
		return nil, int64(len(body)), fmt.Errorf("%w: %w", ErrBackend, err)
	}

	c.logger.Debug("Triton inference completed", nil, map[string]interface{}{
		"model":         modelName,
		"request_size":  len(body),
		"response_size": len(respBody),
	})
	return resp, int64(len(body)), nil
}

// ServerReady reports whether the server accepts inference requests.
func (c *Client) ServerReady(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodGet, "/v2/health/ready", nil, nil)
	return err
}

// ModelReady reports whether the model is loaded and ready.
func (c *Client) ModelReady(ctx context.Context, modelName string) error {
	_, _, err := c.do(ctx, http.MethodGet, c.modelPath(modelName)+"/ready", nil, nil)
	return err
}

func (c *Client) modelPath(modelName string) string {
	p := "/v2/models/" + url.PathEscape(modelName)
	if c.cfg.ModelVersion != "" {
		p += "/versions/" + url.PathEscape(c.cfg.ModelVersion)
	}
	return p
}

func (c *Client) inferPath(modelName string) string {
	return c.modelPath(modelName) + "/infer"
}
