package tensor

import "fmt"

// Datatype is the element type name used on the wire by the KServe v2 / Triton
// inference protocol.
type Datatype string

const (
	BOOL  Datatype = "BOOL"
	UINT8 Datatype = "UINT8"
	INT8  Datatype = "INT8"
	INT16 Datatype = "INT16"
	INT32 Datatype = "INT32"
	INT64 Datatype = "INT64"
	FP32  Datatype = "FP32"
	FP64  Datatype = "FP64"
	BYTES Datatype = "BYTES"
)

// ByteSize returns the size in bytes of one element of the datatype.
// BYTES elements are variable-length and report 0.
func (d Datatype) ByteSize() int {
	switch d {
	case BOOL, UINT8, INT8:
		return 1
	case INT16:
		return 2
	case INT32, FP32:
		return 4
	case INT64, FP64:
		return 8
	default:
		return 0
	}
}

// Valid reports whether d is one of the supported datatypes.
func (d Datatype) Valid() bool {
	switch d {
	case BOOL, UINT8, INT8, INT16, INT32, INT64, FP32, FP64, BYTES:
		return true
	}
	return false
}

func (d Datatype) String() string {
	return string(d)
}

// ElementDatatype returns the datatype matching the Go element type of data.
//
// Supported slice types:
//   - []bool    → BOOL
//   - []uint8   → UINT8
//   - []int8    → INT8
//   - []int16   → INT16
//   - []int32   → INT32
//   - []int64   → INT64
//   - []float32 → FP32
//   - []float64 → FP64
//   - [][]byte  → BYTES
func ElementDatatype(data any) (Datatype, error) {
	switch data.(type) {
	case []bool:
		return BOOL, nil
	case []uint8:
		return UINT8, nil
	case []int8:
		return INT8, nil
	case []int16:
		return INT16, nil
	case []int32:
		return INT32, nil
	case []int64:
		return INT64, nil
	case []float32:
		return FP32, nil
	case []float64:
		return FP64, nil
	case [][]byte:
		return BYTES, nil
	default:
		return "", fmt.Errorf("%w: unsupported element type %T", ErrShapeMismatch, data)
	}
}
