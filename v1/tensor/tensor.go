package tensor

import (
	"fmt"
	"math"
	"slices"
)

// Tensor is a multi-dimensional array with an explicit shape. Data holds the
// flattened elements in row-major order as one of the slice types accepted by
// ElementDatatype.
type Tensor struct {
	Shape []int64
	Data  any
}

// NewTensor creates a tensor after checking that data is a supported slice
// type and that its length matches the element count of shape.
//
// Example:
//
//	t, err := tensor.NewTensor([]int64{1, 3, 224, 224}, pixels)
//	if err != nil {
//	    return err
//	}
func NewTensor(shape []int64, data any) (*Tensor, error) {
	if _, err := ElementDatatype(data); err != nil {
		return nil, err
	}

	t := &Tensor{Shape: slices.Clone(shape), Data: data}

	want, err := ElementCount(shape)
	if err != nil {
		return nil, err
	}
	if int64(t.Len()) != want {
		return nil, fmt.Errorf("%w: shape %v needs %d elements, got %d", ErrShapeMismatch, shape, want, t.Len())
	}
	return t, nil
}

// NewFP32 is a shorthand for NewTensor with float32 data.
func NewFP32(shape []int64, data []float32) (*Tensor, error) {
	return NewTensor(shape, data)
}

// ElementCount returns the number of elements described by shape.
// Negative dimensions and products overflowing int64 are rejected.
func ElementCount(shape []int64) (int64, error) {
	n := int64(1)
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("%w: negative dimension in shape %v", ErrShapeMismatch, shape)
		}
		if d != 0 && n > math.MaxInt64/d {
			return 0, fmt.Errorf("%w: element count of shape %v overflows", ErrShapeMismatch, shape)
		}
		n *= d
	}
	return n, nil
}

// Datatype returns the wire datatype matching the tensor's element type.
func (t *Tensor) Datatype() (Datatype, error) {
	return ElementDatatype(t.Data)
}

// Len returns the number of elements held by the tensor.
func (t *Tensor) Len() int {
	switch v := t.Data.(type) {
	case []bool:
		return len(v)
	case []uint8:
		return len(v)
	case []int8:
		return len(v)
	case []int16:
		return len(v)
	case []int32:
		return len(v)
	case []int64:
		return len(v)
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	case [][]byte:
		return len(v)
	default:
		return 0
	}
}

// Float32s returns the elements converted to float32. Integer and FP64 data
// is converted element by element; BOOL and BYTES tensors are rejected.
func (t *Tensor) Float32s() ([]float32, error) {
	switch v := t.Data.(type) {
	case []float32:
		return v, nil
	case []float64:
		return convert(v), nil
	case []uint8:
		return convert(v), nil
	case []int8:
		return convert(v), nil
	case []int16:
		return convert(v), nil
	case []int32:
		return convert(v), nil
	case []int64:
		return convert(v), nil
	default:
		return nil, fmt.Errorf("%w: %T is not numeric", ErrShapeMismatch, t.Data)
	}
}

// Strings returns the elements of a BYTES tensor as strings.
func (t *Tensor) Strings() ([]string, error) {
	v, ok := t.Data.([][]byte)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not BYTES", ErrShapeMismatch, t.Data)
	}
	out := make([]string, len(v))
	for i, b := range v {
		out[i] = string(b)
	}
	return out, nil
}

type number interface {
	~uint8 | ~int8 | ~int16 | ~int32 | ~int64 | ~float64
}

func convert[T number](in []T) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
