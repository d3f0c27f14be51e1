package tensor

import (
	"encoding/json"
	"fmt"
)

// Output is one named tensor returned by the inference backend.
type Output struct {
	Name   string
	Tensor *Tensor
}

// InferenceResponse is the decoded result of one inference call.
type InferenceResponse struct {
	ID           string
	ModelName    string
	ModelVersion string
	Outputs      []*Output
}

// Output returns the output registered under name.
func (r *InferenceResponse) Output(name string) (*Output, bool) {
	if r == nil {
		return nil, false
	}
	for _, o := range r.Outputs {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

// DecodeResponse extracts the tensor registered under outputName.
// It returns ErrMissingOutput when the response has no such output; an empty
// tensor is never substituted.
func DecodeResponse(resp *InferenceResponse, outputName string) (*Tensor, error) {
	if outputName == "" {
		outputName = DefaultOutputName
	}
	out, ok := resp.Output(outputName)
	if !ok || out.Tensor == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingOutput, outputName)
	}
	return out.Tensor, nil
}

// ParseResponse decodes a response body. headerLength is the value of the
// HeaderContentLength response header; when it is zero the body is pure JSON
// and every output carries a "data" array.
func ParseResponse(body []byte, headerLength int) (*InferenceResponse, error) {
	js, payload, err := splitBody(body, headerLength)
	if err != nil {
		return nil, err
	}

	var header responseHeader
	if err := json.Unmarshal(js, &header); err != nil {
		return nil, fmt.Errorf("%w: response header: %v", ErrMalformedBody, err)
	}

	resp := &InferenceResponse{
		ID:           header.ID,
		ModelName:    header.ModelName,
		ModelVersion: header.ModelVersion,
		Outputs:      make([]*Output, 0, len(header.Outputs)),
	}
	for _, h := range header.Outputs {
		t, rest, err := readTensor(h, payload)
		if err != nil {
			return nil, err
		}
		payload = rest
		resp.Outputs = append(resp.Outputs, &Output{Name: h.Name, Tensor: t})
	}
	return resp, nil
}

// EncodeResponse is the server-side inverse of ParseResponse. With binary set
// the output data follows the JSON header as raw bytes and headerLength is
// the header size; otherwise data is inlined and headerLength is 0.
func EncodeResponse(resp *InferenceResponse, binary bool) (body []byte, headerLength int, err error) {
	header := responseHeader{
		ID:           resp.ID,
		ModelName:    resp.ModelName,
		ModelVersion: resp.ModelVersion,
		Outputs:      make([]tensorHeader, 0, len(resp.Outputs)),
	}
	var payload []byte

	for _, o := range resp.Outputs {
		dt, err := o.Tensor.Datatype()
		if err != nil {
			return nil, 0, fmt.Errorf("output %q: %w", o.Name, err)
		}
		h := tensorHeader{Name: o.Name, Shape: o.Tensor.Shape, Datatype: dt}
		if binary {
			raw, err := encodeBinary(o.Tensor.Data)
			if err != nil {
				return nil, 0, fmt.Errorf("output %q: %w", o.Name, err)
			}
			size := int64(len(raw))
			h.Parameters = &parameters{BinaryDataSize: &size}
			payload = append(payload, raw...)
		} else {
			h.Data, err = encodeJSONData(o.Tensor.Data)
			if err != nil {
				return nil, 0, fmt.Errorf("output %q: %w", o.Name, err)
			}
		}
		header.Outputs = append(header.Outputs, h)
	}

	js, err := json.Marshal(header)
	if err != nil {
		return nil, 0, fmt.Errorf("encode response header: %w", err)
	}
	if !binary {
		return js, 0, nil
	}
	return append(js, payload...), len(js), nil
}
