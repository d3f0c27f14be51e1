// Package tensor translates between in-memory tensors and the request and
// response bodies of the KServe v2 / Triton HTTP inference protocol.
//
// # Overview
//
// A Tensor is a flattened slice plus an explicit shape. BuildRequest turns an
// ordered list of tensors into an InferenceRequest whose inputs are named
// "input__0", "input__1", ... and which asks for exactly one output:
//
//	pixels, _ := tensor.NewFP32([]int64{1, 3, 224, 224}, data)
//	req, err := tensor.BuildRequest([]*tensor.Tensor{pixels}, tensor.DefaultOutputName, tensor.FP32)
//
// The request is then serialized with the binary tensor extension:
//
//	body, headerLength, err := req.Encode()
//
// The body is a JSON header describing every tensor (name, shape, datatype and
// binary_data_size) followed by the raw little-endian tensor bytes.
// headerLength marks where the JSON ends and is sent as the
// Inference-Header-Content-Length HTTP header. Because all metadata lives in
// the header, DecodeRequestHeader can recover names, shapes and datatypes
// without parsing the payload.
//
// # Responses
//
// ParseResponse accepts both pure JSON responses (inline "data" arrays) and
// binary responses. DecodeResponse extracts one output by name and fails with
// ErrMissingOutput when the backend did not return it:
//
//	resp, err := tensor.ParseResponse(body, headerLength)
//	out, err := tensor.DecodeResponse(resp, tensor.DefaultOutputName)
//	vec, err := out.Float32s()
//
// # Errors
//
//   - ErrShapeMismatch: declared datatype or shape disagrees with the data
//   - ErrMissingOutput: the requested output is absent from a response
//   - ErrMalformedBody: a body does not follow the framing
//
// # Thread Safety
//
// All functions are pure. Tensors and requests are not copied on encode and
// must not be mutated while being encoded.
package tensor
