package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embeddingResponse(t *testing.T) *InferenceResponse {
	t.Helper()
	vec := make([]float32, 512)
	for i := range vec {
		vec[i] = float32(i%7) - 3
	}
	out, err := NewFP32([]int64{1, 512}, vec)
	require.NoError(t, err)
	return &InferenceResponse{
		ModelName:    "bria_attribution_model",
		ModelVersion: "1",
		Outputs:      []*Output{{Name: DefaultOutputName, Tensor: out}},
	}
}

func TestDecodeResponse_FindsOutput(t *testing.T) {
	resp := embeddingResponse(t)

	out, err := DecodeResponse(resp, DefaultOutputName)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 512}, out.Shape)
	assert.Equal(t, 512, out.Len())
}

func TestDecodeResponse_MissingOutput(t *testing.T) {
	resp := embeddingResponse(t)
	resp.Outputs[0].Name = "logits"

	out, err := DecodeResponse(resp, DefaultOutputName)
	require.ErrorIs(t, err, ErrMissingOutput)
	assert.Nil(t, out)

	_, err = DecodeResponse(&InferenceResponse{}, DefaultOutputName)
	assert.ErrorIs(t, err, ErrMissingOutput)

	_, err = DecodeResponse(nil, DefaultOutputName)
	assert.ErrorIs(t, err, ErrMissingOutput)
}

func TestResponse_BinaryRoundTrip(t *testing.T) {
	resp := embeddingResponse(t)

	body, headerLength, err := EncodeResponse(resp, true)
	require.NoError(t, err)
	require.Greater(t, headerLength, 0)

	parsed, err := ParseResponse(body, headerLength)
	require.NoError(t, err)
	assert.Equal(t, "bria_attribution_model", parsed.ModelName)
	assert.Equal(t, "1", parsed.ModelVersion)

	out, err := DecodeResponse(parsed, DefaultOutputName)
	require.NoError(t, err)
	assert.Equal(t, resp.Outputs[0].Tensor.Data, out.Data)
}

func TestResponse_JSONRoundTrip(t *testing.T) {
	strs, err := NewTensor([]int64{1}, [][]byte{[]byte("AAAAPw==")})
	require.NoError(t, err)
	small, err := NewTensor([]int64{3}, []uint8{0, 128, 255})
	require.NoError(t, err)
	resp := &InferenceResponse{
		ModelName: "m",
		Outputs: []*Output{
			{Name: "output__0", Tensor: strs},
			{Name: "output__1", Tensor: small},
		},
	}

	body, headerLength, err := EncodeResponse(resp, false)
	require.NoError(t, err)
	assert.Equal(t, 0, headerLength)

	parsed, err := ParseResponse(body, headerLength)
	require.NoError(t, err)

	out, err := DecodeResponse(parsed, "output__0")
	require.NoError(t, err)
	got, err := out.Strings()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAAPw=="}, got)

	out, err = DecodeResponse(parsed, "output__1")
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 128, 255}, out.Data)
}

func TestParseResponse_TritonJSON(t *testing.T) {
	body := []byte(`{"model_name":"m","model_version":"1","outputs":[{"name":"output__0","datatype":"FP32","shape":[1,3],"data":[0.5,1.0,-2.0]}]}`)

	parsed, err := ParseResponse(body, 0)
	require.NoError(t, err)
	out, err := DecodeResponse(parsed, DefaultOutputName)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 1, -2}, out.Data)
}

func TestParseResponse_Malformed(t *testing.T) {
	cases := map[string]string{
		"invalid json":       `{"outputs":`,
		"unknown datatype":   `{"outputs":[{"name":"o","datatype":"FP16","shape":[1],"data":[1]}]}`,
		"no data":            `{"outputs":[{"name":"o","datatype":"FP32","shape":[1]}]}`,
		"count mismatch":     `{"outputs":[{"name":"o","datatype":"FP32","shape":[2],"data":[1]}]}`,
		"negative dimension": `{"outputs":[{"name":"o","datatype":"FP32","shape":[-1],"data":[1]}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResponse([]byte(body), 0)
			assert.ErrorIs(t, err, ErrMalformedBody)
		})
	}
}

func TestParseResponse_OversizedShapes(t *testing.T) {
	cases := map[string]string{
		"bytes count beyond payload": `{"outputs":[{"name":"output__0","shape":[1099511627776],"datatype":"BYTES","parameters":{"binary_data_size":0}}]}`,
		"fp32 count beyond payload":  `{"outputs":[{"name":"output__0","shape":[1099511627776],"datatype":"FP32","parameters":{"binary_data_size":0}}]}`,
		"overflowing shape":          `{"outputs":[{"name":"output__0","shape":[4294967296,4294967296],"datatype":"FP32","parameters":{"binary_data_size":0}}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, err := ParseResponse([]byte(body), len(body))
			assert.ErrorIs(t, err, ErrMalformedBody)
			assert.Nil(t, resp)
		})
	}
}
