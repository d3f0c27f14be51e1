package tensor

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// parameters is the subset of tensor parameters used by the binary tensor
// extension of the inference protocol.
type parameters struct {
	BinaryDataSize *int64 `json:"binary_data_size,omitempty"`
	BinaryData     *bool  `json:"binary_data,omitempty"`
}

// tensorHeader is the JSON metadata of one input or output tensor.
type tensorHeader struct {
	Name       string          `json:"name"`
	Shape      []int64         `json:"shape"`
	Datatype   Datatype        `json:"datatype"`
	Parameters *parameters     `json:"parameters,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

type requestedOutputHeader struct {
	Name       string      `json:"name"`
	Parameters *parameters `json:"parameters,omitempty"`
}

type requestHeader struct {
	ID      string                  `json:"id,omitempty"`
	Inputs  []tensorHeader          `json:"inputs"`
	Outputs []requestedOutputHeader `json:"outputs,omitempty"`
}

type responseHeader struct {
	ID           string         `json:"id,omitempty"`
	ModelName    string         `json:"model_name"`
	ModelVersion string         `json:"model_version,omitempty"`
	Outputs      []tensorHeader `json:"outputs"`
}

// splitBody separates the JSON header from the binary payload.
// A non-positive headerLength means the whole body is JSON.
func splitBody(body []byte, headerLength int) ([]byte, []byte, error) {
	if headerLength <= 0 {
		return body, nil, nil
	}
	if headerLength > len(body) {
		return nil, nil, fmt.Errorf("%w: header length %d exceeds body size %d", ErrMalformedBody, headerLength, len(body))
	}
	return body[:headerLength], body[headerLength:], nil
}

// encodeBinary serializes tensor elements as little-endian raw bytes.
// BYTES elements are each prefixed with a 4-byte little-endian length.
func encodeBinary(data any) ([]byte, error) {
	if v, ok := data.([][]byte); ok {
		var out []byte
		for _, b := range v {
			out = binary.LittleEndian.AppendUint32(out, uint32(len(b)))
			out = append(out, b...)
		}
		return out, nil
	}

	out, err := binary.Append(nil, binary.LittleEndian, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	return out, nil
}

// decodeBinary reads count elements of datatype dt from raw.
func decodeBinary(dt Datatype, count int64, raw []byte) (any, error) {
	if dt == BYTES {
		// every element needs at least its 4-byte length prefix
		if count > int64(len(raw)/4) {
			return nil, fmt.Errorf("%w: BYTES payload of %d bytes cannot hold %d elements", ErrMalformedBody, len(raw), count)
		}
		out := make([][]byte, 0, count)
		for off := 0; off < len(raw); {
			if off+4 > len(raw) {
				return nil, fmt.Errorf("%w: truncated BYTES element length", ErrMalformedBody)
			}
			n := int(binary.LittleEndian.Uint32(raw[off:]))
			off += 4
			if off+n > len(raw) {
				return nil, fmt.Errorf("%w: truncated BYTES element", ErrMalformedBody)
			}
			out = append(out, raw[off:off+n:off+n])
			off += n
		}
		if int64(len(out)) != count {
			return nil, fmt.Errorf("%w: expected %d BYTES elements, got %d", ErrMalformedBody, count, len(out))
		}
		return out, nil
	}

	size := int64(dt.ByteSize())
	if size == 0 {
		return nil, fmt.Errorf("%w: unsupported datatype %q", ErrMalformedBody, dt)
	}
	if count > int64(len(raw))/size || int64(len(raw)) != count*size {
		return nil, fmt.Errorf("%w: %s payload of %d bytes does not hold %d elements", ErrMalformedBody, dt, len(raw), count)
	}

	data := makeSlice(dt, int(count))
	if _, err := binary.Decode(raw, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return data, nil
}

func makeSlice(dt Datatype, n int) any {
	switch dt {
	case BOOL:
		return make([]bool, n)
	case UINT8:
		return make([]uint8, n)
	case INT8:
		return make([]int8, n)
	case INT16:
		return make([]int16, n)
	case INT32:
		return make([]int32, n)
	case INT64:
		return make([]int64, n)
	case FP32:
		return make([]float32, n)
	case FP64:
		return make([]float64, n)
	default:
		return make([][]byte, n)
	}
}

// encodeJSONData renders tensor elements as a flat JSON array. UINT8 and BYTES
// need conversion because encoding/json turns byte slices into base64 strings.
func encodeJSONData(data any) (json.RawMessage, error) {
	switch v := data.(type) {
	case []uint8:
		ints := make([]int, len(v))
		for i, b := range v {
			ints[i] = int(b)
		}
		return json.Marshal(ints)
	case [][]byte:
		strs := make([]string, len(v))
		for i, b := range v {
			strs[i] = string(b)
		}
		return json.Marshal(strs)
	default:
		return json.Marshal(v)
	}
}

// decodeJSONData parses a flat JSON data array into the slice type of dt.
func decodeJSONData(dt Datatype, raw json.RawMessage) (any, error) {
	var err error
	switch dt {
	case BOOL:
		var v []bool
		err = json.Unmarshal(raw, &v)
		return v, wrapJSON(err)
	case FP32:
		var v []float32
		err = json.Unmarshal(raw, &v)
		return v, wrapJSON(err)
	case FP64:
		var v []float64
		err = json.Unmarshal(raw, &v)
		return v, wrapJSON(err)
	case INT64:
		var v []int64
		err = json.Unmarshal(raw, &v)
		return v, wrapJSON(err)
	case UINT8, INT8, INT16, INT32:
		var v []int64
		if err = json.Unmarshal(raw, &v); err != nil {
			return nil, wrapJSON(err)
		}
		return narrowInts(dt, v), nil
	case BYTES:
		var v []string
		if err = json.Unmarshal(raw, &v); err != nil {
			return nil, wrapJSON(err)
		}
		out := make([][]byte, len(v))
		for i, s := range v {
			out[i] = []byte(s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported datatype %q", ErrMalformedBody, dt)
	}
}

func narrowInts(dt Datatype, v []int64) any {
	switch dt {
	case UINT8:
		out := make([]uint8, len(v))
		for i, x := range v {
			out[i] = uint8(x)
		}
		return out
	case INT8:
		out := make([]int8, len(v))
		for i, x := range v {
			out[i] = int8(x)
		}
		return out
	case INT16:
		out := make([]int16, len(v))
		for i, x := range v {
			out[i] = int16(x)
		}
		return out
	default:
		out := make([]int32, len(v))
		for i, x := range v {
			out[i] = int32(x)
		}
		return out
	}
}

func wrapJSON(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrMalformedBody, err)
}

// readTensor materializes the data of one tensor header, taking binary
// payload from the front of payload when binary_data_size is present.
// It returns the remaining payload.
func readTensor(h tensorHeader, payload []byte) (*Tensor, []byte, error) {
	if !h.Datatype.Valid() {
		return nil, nil, fmt.Errorf("%w: tensor %q has unsupported datatype %q", ErrMalformedBody, h.Name, h.Datatype)
	}
	count, err := ElementCount(h.Shape)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: tensor %q: %v", ErrMalformedBody, h.Name, err)
	}

	var data any
	switch {
	case h.Parameters != nil && h.Parameters.BinaryDataSize != nil:
		size := *h.Parameters.BinaryDataSize
		if size < 0 || size > int64(len(payload)) {
			return nil, nil, fmt.Errorf("%w: tensor %q declares %d binary bytes, %d available", ErrMalformedBody, h.Name, size, len(payload))
		}
		data, err = decodeBinary(h.Datatype, count, payload[:size])
		payload = payload[size:]
	case len(h.Data) > 0:
		data, err = decodeJSONData(h.Datatype, h.Data)
	default:
		return nil, nil, fmt.Errorf("%w: tensor %q carries no data", ErrMalformedBody, h.Name)
	}
	if err != nil {
		return nil, nil, err
	}

	t := &Tensor{Shape: h.Shape, Data: data}
	if int64(t.Len()) != count {
		return nil, nil, fmt.Errorf("%w: tensor %q has %d elements, shape %v needs %d", ErrMalformedBody, h.Name, t.Len(), h.Shape, count)
	}
	return t, payload, nil
}
