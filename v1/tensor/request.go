package tensor

import (
	"encoding/json"
	"fmt"
	"slices"
)

const (
	// DefaultOutputName is the output tensor requested when none is given.
	DefaultOutputName = "output__0"

	// DefaultDatatype is the datatype declared for inputs when none is given.
	DefaultDatatype = FP32

	// HeaderContentLength is the HTTP header carrying the size of the JSON
	// header that precedes the binary tensor payload.
	HeaderContentLength = "Inference-Header-Content-Length"
)

// InputName returns the canonical name of the input tensor at position i.
func InputName(i int) string {
	return fmt.Sprintf("input__%d", i)
}

// InferInput is one named input tensor of an inference request.
type InferInput struct {
	Name     string
	Shape    []int64
	Datatype Datatype

	tensor *Tensor
}

// Tensor returns the tensor backing the input. It is nil for inputs decoded
// with DecodeRequestHeader.
func (in *InferInput) Tensor() *Tensor {
	return in.tensor
}

// RequestedOutput names an output tensor the caller expects in the response.
type RequestedOutput struct {
	Name   string
	Binary bool
}

// InferenceRequest is a backend-agnostic description of one inference call:
// named input tensors plus the names of the requested outputs.
type InferenceRequest struct {
	ID      string
	Inputs  []*InferInput
	Outputs []*RequestedOutput
}

// BuildRequest wraps tensors as named inputs and requests a single output.
//
// The tensor at position i becomes input "input__<i>" with its exact shape
// and the declared datatype. Only shapes and element types are inspected,
// never element values.
//
// Parameters:
//   - tensors: input tensors in order
//   - outputName: the single output to request (DefaultOutputName if empty)
//   - dtype: declared datatype of every input (DefaultDatatype if empty)
//
// Returns ErrShapeMismatch when a tensor's element type does not match dtype.
//
// Example:
//
//	req, err := tensor.BuildRequest([]*tensor.Tensor{pixels}, tensor.DefaultOutputName, tensor.FP32)
func BuildRequest(tensors []*Tensor, outputName string, dtype Datatype) (*InferenceRequest, error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("%w: no input tensors", ErrShapeMismatch)
	}
	if outputName == "" {
		outputName = DefaultOutputName
	}
	if dtype == "" {
		dtype = DefaultDatatype
	}
	if !dtype.Valid() {
		return nil, fmt.Errorf("%w: unsupported datatype %q", ErrShapeMismatch, dtype)
	}

	req := &InferenceRequest{
		Inputs:  make([]*InferInput, 0, len(tensors)),
		Outputs: []*RequestedOutput{{Name: outputName, Binary: true}},
	}

	for i, t := range tensors {
		if t == nil {
			return nil, fmt.Errorf("%w: input %d is nil", ErrShapeMismatch, i)
		}
		actual, err := t.Datatype()
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		if actual != dtype {
			return nil, fmt.Errorf("%w: input %d declared %s but holds %s", ErrShapeMismatch, i, dtype, actual)
		}
		req.Inputs = append(req.Inputs, &InferInput{
			Name:     InputName(i),
			Shape:    slices.Clone(t.Shape),
			Datatype: dtype,
			tensor:   t,
		})
	}

	return req, nil
}

// Encode serializes the request as a JSON header followed by the raw tensor
// bytes of every input, in input order. headerLength is the size of the JSON
// header; it must travel alongside the body (HeaderContentLength) so the
// receiver can read the metadata without touching the payload.
func (r *InferenceRequest) Encode() (body []byte, headerLength int, err error) {
	header := requestHeader{ID: r.ID}
	var payload []byte

	for _, in := range r.Inputs {
		if in.tensor == nil {
			return nil, 0, fmt.Errorf("%w: input %q has no data", ErrShapeMismatch, in.Name)
		}
		raw, err := encodeBinary(in.tensor.Data)
		if err != nil {
			return nil, 0, fmt.Errorf("input %q: %w", in.Name, err)
		}
		size := int64(len(raw))
		header.Inputs = append(header.Inputs, tensorHeader{
			Name:       in.Name,
			Shape:      in.Shape,
			Datatype:   in.Datatype,
			Parameters: &parameters{BinaryDataSize: &size},
		})
		payload = append(payload, raw...)
	}

	for _, out := range r.Outputs {
		h := requestedOutputHeader{Name: out.Name}
		if out.Binary {
			binaryData := true
			h.Parameters = &parameters{BinaryData: &binaryData}
		}
		header.Outputs = append(header.Outputs, h)
	}

	js, err := json.Marshal(header)
	if err != nil {
		return nil, 0, fmt.Errorf("encode request header: %w", err)
	}

	body = make([]byte, 0, len(js)+len(payload))
	body = append(body, js...)
	body = append(body, payload...)
	return body, len(js), nil
}

// DecodeRequestHeader recovers input names, shapes and datatypes and the
// requested outputs from the JSON header alone. The binary payload is not
// parsed and the returned inputs carry no tensor data.
func DecodeRequestHeader(body []byte, headerLength int) (*InferenceRequest, error) {
	req, _, _, err := decodeRequestHeader(body, headerLength)
	return req, err
}

// DecodeRequest parses a full request body, including tensor data.
func DecodeRequest(body []byte, headerLength int) (*InferenceRequest, error) {
	req, header, payload, err := decodeRequestHeader(body, headerLength)
	if err != nil {
		return nil, err
	}

	for i, h := range header.Inputs {
		t, rest, err := readTensor(h, payload)
		if err != nil {
			return nil, err
		}
		payload = rest
		req.Inputs[i].tensor = t
	}
	return req, nil
}

func decodeRequestHeader(body []byte, headerLength int) (*InferenceRequest, requestHeader, []byte, error) {
	var header requestHeader

	js, payload, err := splitBody(body, headerLength)
	if err != nil {
		return nil, header, nil, err
	}
	if err := json.Unmarshal(js, &header); err != nil {
		return nil, header, nil, fmt.Errorf("%w: request header: %v", ErrMalformedBody, err)
	}

	req := &InferenceRequest{ID: header.ID}
	for _, h := range header.Inputs {
		req.Inputs = append(req.Inputs, &InferInput{
			Name:     h.Name,
			Shape:    h.Shape,
			Datatype: h.Datatype,
		})
	}
	for _, o := range header.Outputs {
		req.Outputs = append(req.Outputs, &RequestedOutput{
			Name:   o.Name,
			Binary: o.Parameters != nil && o.Parameters.BinaryData != nil && *o.Parameters.BinaryData,
		})
	}
	return req, header, payload, nil
}
