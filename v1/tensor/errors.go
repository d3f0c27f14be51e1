package tensor

import "errors"

var (
	// ErrShapeMismatch is returned when a tensor's declared datatype or shape
	// does not match the data it carries.
	ErrShapeMismatch = errors.New("tensor shape mismatch")

	// ErrMissingOutput is returned when an inference response does not contain
	// the requested output tensor.
	ErrMissingOutput = errors.New("missing output tensor")

	// ErrMalformedBody is returned when a request or response body cannot be
	// parsed according to the binary tensor framing.
	ErrMalformedBody = errors.New("malformed inference body")
)
