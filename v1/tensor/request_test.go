package tensor

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pixelTensor(t *testing.T) *Tensor {
	t.Helper()
	data := make([]float32, 1*3*4*4)
	for i := range data {
		data[i] = float32(i) / 10
	}
	tn, err := NewFP32([]int64{1, 3, 4, 4}, data)
	require.NoError(t, err)
	return tn
}

func TestBuildRequest_SingleInput(t *testing.T) {
	pixels := pixelTensor(t)

	req, err := BuildRequest([]*Tensor{pixels}, DefaultOutputName, FP32)
	require.NoError(t, err)

	require.Len(t, req.Inputs, 1)
	assert.Equal(t, "input__0", req.Inputs[0].Name)
	assert.Equal(t, []int64{1, 3, 4, 4}, req.Inputs[0].Shape)
	assert.Equal(t, FP32, req.Inputs[0].Datatype)
	assert.Same(t, pixels, req.Inputs[0].Tensor())

	require.Len(t, req.Outputs, 1)
	assert.Equal(t, "output__0", req.Outputs[0].Name)
	assert.True(t, req.Outputs[0].Binary)
}

func TestBuildRequest_Defaults(t *testing.T) {
	req, err := BuildRequest([]*Tensor{pixelTensor(t)}, "", "")
	require.NoError(t, err)

	assert.Equal(t, DefaultDatatype, req.Inputs[0].Datatype)
	assert.Equal(t, DefaultOutputName, req.Outputs[0].Name)
}

func TestBuildRequest_NamesFollowPosition(t *testing.T) {
	a := pixelTensor(t)
	b, err := NewFP32([]int64{2}, []float32{1, 2})
	require.NoError(t, err)

	req, err := BuildRequest([]*Tensor{a, b}, "embeds", FP32)
	require.NoError(t, err)

	require.Len(t, req.Inputs, 2)
	assert.Equal(t, "input__0", req.Inputs[0].Name)
	assert.Equal(t, "input__1", req.Inputs[1].Name)
	assert.Equal(t, []int64{2}, req.Inputs[1].Shape)
	require.Len(t, req.Outputs, 1)
	assert.Equal(t, "embeds", req.Outputs[0].Name)
}

func TestBuildRequest_ShapeIsCopied(t *testing.T) {
	pixels := pixelTensor(t)
	req, err := BuildRequest([]*Tensor{pixels}, "", FP32)
	require.NoError(t, err)

	pixels.Shape[0] = 7
	assert.Equal(t, int64(1), req.Inputs[0].Shape[0])
}

func TestBuildRequest_DatatypeMismatch(t *testing.T) {
	ints, err := NewTensor([]int64{3}, []int64{1, 2, 3})
	require.NoError(t, err)

	_, err = BuildRequest([]*Tensor{ints}, DefaultOutputName, FP32)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestBuildRequest_RejectsEmptyAndNil(t *testing.T) {
	_, err := BuildRequest(nil, "", FP32)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = BuildRequest([]*Tensor{nil}, "", FP32)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = BuildRequest([]*Tensor{pixelTensor(t)}, "", Datatype("FP16"))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestEncode_Framing(t *testing.T) {
	data := []float32{1.5, -2, 0.25}
	tn, err := NewFP32([]int64{1, 3}, data)
	require.NoError(t, err)
	req, err := BuildRequest([]*Tensor{tn}, DefaultOutputName, FP32)
	require.NoError(t, err)

	body, headerLength, err := req.Encode()
	require.NoError(t, err)
	require.Equal(t, headerLength+len(data)*4, len(body))

	var header map[string]any
	require.NoError(t, json.Unmarshal(body[:headerLength], &header))
	inputs := header["inputs"].([]any)
	require.Len(t, inputs, 1)
	in := inputs[0].(map[string]any)
	assert.Equal(t, "input__0", in["name"])
	assert.Equal(t, "FP32", in["datatype"])
	assert.Equal(t, []any{float64(1), float64(3)}, in["shape"])
	assert.Equal(t, float64(12), in["parameters"].(map[string]any)["binary_data_size"])

	outputs := header["outputs"].([]any)
	require.Len(t, outputs, 1)
	out := outputs[0].(map[string]any)
	assert.Equal(t, "output__0", out["name"])
	assert.Equal(t, true, out["parameters"].(map[string]any)["binary_data"])

	payload := body[headerLength:]
	for i, want := range data {
		got := math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
		assert.Equal(t, want, got)
	}
}

func TestDecodeRequestHeader_RecoversMetadataWithoutPayload(t *testing.T) {
	req, err := BuildRequest([]*Tensor{pixelTensor(t)}, DefaultOutputName, FP32)
	require.NoError(t, err)
	body, headerLength, err := req.Encode()
	require.NoError(t, err)

	// Corrupting the payload must not affect header decoding.
	for i := headerLength; i < len(body); i++ {
		body[i] = 0xff
	}

	decoded, err := DecodeRequestHeader(body, headerLength)
	require.NoError(t, err)
	require.Len(t, decoded.Inputs, 1)
	assert.Equal(t, "input__0", decoded.Inputs[0].Name)
	assert.Equal(t, []int64{1, 3, 4, 4}, decoded.Inputs[0].Shape)
	assert.Equal(t, FP32, decoded.Inputs[0].Datatype)
	assert.Nil(t, decoded.Inputs[0].Tensor())
	require.Len(t, decoded.Outputs, 1)
	assert.Equal(t, DefaultOutputName, decoded.Outputs[0].Name)
}

func TestDecodeRequest_RoundTripsData(t *testing.T) {
	pixels := pixelTensor(t)
	words, err := NewTensor([]int64{2}, [][]byte{[]byte("a cat"), []byte("")})
	require.NoError(t, err)

	req := &InferenceRequest{
		Inputs: []*InferInput{
			{Name: "input__0", Shape: pixels.Shape, Datatype: FP32, tensor: pixels},
			{Name: "input__1", Shape: words.Shape, Datatype: BYTES, tensor: words},
		},
		Outputs: []*RequestedOutput{{Name: DefaultOutputName, Binary: true}},
	}
	body, headerLength, err := req.Encode()
	require.NoError(t, err)

	decoded, err := DecodeRequest(body, headerLength)
	require.NoError(t, err)
	require.Len(t, decoded.Inputs, 2)
	assert.Equal(t, pixels.Data, decoded.Inputs[0].Tensor().Data)
	strs, err := decoded.Inputs[1].Tensor().Strings()
	require.NoError(t, err)
	assert.Equal(t, []string{"a cat", ""}, strs)
}

func TestDecodeRequest_Malformed(t *testing.T) {
	_, err := DecodeRequest([]byte("{}"), 10)
	assert.ErrorIs(t, err, ErrMalformedBody)

	_, err = DecodeRequest([]byte("not json"), 0)
	assert.ErrorIs(t, err, ErrMalformedBody)

	header := `{"inputs":[{"name":"input__0","shape":[2],"datatype":"FP32","parameters":{"binary_data_size":8}}]}`
	_, err = DecodeRequest(append([]byte(header), 0, 0, 0, 0), len(header))
	assert.ErrorIs(t, err, ErrMalformedBody)
}
