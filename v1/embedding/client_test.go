package embedding

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/image-embedder/v1/assetstore"
	"github.com/Aleph-Alpha/image-embedder/v1/observability"
	"github.com/Aleph-Alpha/image-embedder/v1/preprocess"
	"github.com/Aleph-Alpha/image-embedder/v1/tensor"
)

const testEmbeddingDim = 512

var testAssetFiles = map[string]string{
	"feature_extractor/preprocessor_config.json": `{
  "crop_size": 224,
  "do_center_crop": true,
  "do_normalize": true,
  "do_resize": true,
  "feature_extractor_type": "CLIPFeatureExtractor",
  "image_mean": [0.5, 0.5, 0.5],
  "image_std": [0.5, 0.5, 0.5],
  "resample": 3,
  "size": 224
}`,
	"tokenizer/tokenizer_config.json": `{"model_max_length": 77, "eos_token": "<|endoftext|>"}`,
	"tokenizer/vocab.json":            `{"a": 0, "b": 1, "<|endoftext|>": 2}`,
	"tokenizer/merges.txt":            "#version: 0.2\na b\n",
}

// writeAssets lays out the preprocessing assets of every known model below a
// temporary directory, skipping the names in omit.
func writeAssets(t *testing.T, omit ...string) assetstore.Source {
	t.Helper()
	root := t.TempDir()
	skip := make(map[string]bool, len(omit))
	for _, name := range omit {
		skip[name] = true
	}
	for _, model := range KnownModels() {
		for name, content := range testAssetFiles {
			if skip[name] {
				continue
			}
			path := filepath.Join(root, model.AssetDir(), filepath.FromSlash(name))
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		}
	}
	src, err := assetstore.NewDirSource(root)
	require.NoError(t, err)
	return src
}

func newTestLogger(ctrl *gomock.Controller) *MockLogger {
	mockLogger := NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	return mockLogger
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 0xff})
		}
	}
	return img
}

func vectorResponse(shape []int64, values []float32) *tensor.InferenceResponse {
	out, err := tensor.NewFP32(shape, values)
	if err != nil {
		panic(err)
	}
	return &tensor.InferenceResponse{
		ModelName: ModelBriaAttribution.String(),
		Outputs:   []*tensor.Output{{Name: tensor.DefaultOutputName, Tensor: out}},
	}
}

func echoVector() *tensor.InferenceResponse {
	values := make([]float32, testEmbeddingDim)
	for i := range values {
		values[i] = float32(i)
	}
	return vectorResponse([]int64{1, testEmbeddingDim}, values)
}

func TestEmbedImage_EndToEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)

	backend.EXPECT().
		Infer(gomock.Any(), "bria_attribution_model", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req *tensor.InferenceRequest) (*tensor.InferenceResponse, error) {
			// Inspect the request as the server sees it on the wire.
			body, headerLength, err := req.Encode()
			require.NoError(t, err)
			decoded, err := tensor.DecodeRequestHeader(body, headerLength)
			require.NoError(t, err)

			require.Len(t, decoded.Inputs, 1)
			assert.Equal(t, "input__0", decoded.Inputs[0].Name)
			assert.Equal(t, []int64{1, 3, 224, 224}, decoded.Inputs[0].Shape)
			assert.Equal(t, tensor.FP32, decoded.Inputs[0].Datatype)
			require.Len(t, decoded.Outputs, 1)
			assert.Equal(t, "output__0", decoded.Outputs[0].Name)
			return echoVector(), nil
		}).
		Times(1)

	client, err := NewClient(backend, writeAssets(t), newTestLogger(ctrl))
	require.NoError(t, err)

	result, err := client.EmbedImage(context.Background(), testImage(), ImageOptions{})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Len(t, result[0].Vector, testEmbeddingDim)
	assert.Equal(t, float32(511), result[0].Vector[511])
	assert.Empty(t, result[0].Text)
	assert.Len(t, result.Vectors(), 1)
}

// translucentImage has the colors of testImage with alpha varying per pixel.
func translucentImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 400, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: uint8((x + y) % 200)})
		}
	}
	return img
}

func TestEmbedImage_AlphaIsDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)

	var pixels [][]float32
	backend.EXPECT().
		Infer(gomock.Any(), "bria_attribution_model", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req *tensor.InferenceRequest) (*tensor.InferenceResponse, error) {
			body, headerLength, err := req.Encode()
			require.NoError(t, err)
			decoded, err := tensor.DecodeRequest(body, headerLength)
			require.NoError(t, err)
			require.Len(t, decoded.Inputs, 1)
			assert.Equal(t, []int64{1, 3, 224, 224}, decoded.Inputs[0].Shape)

			data, err := decoded.Inputs[0].Tensor().Float32s()
			require.NoError(t, err)
			pixels = append(pixels, data)
			return echoVector(), nil
		}).
		Times(2)

	client, err := NewClient(backend, writeAssets(t), newTestLogger(ctrl))
	require.NoError(t, err)

	_, err = client.EmbedImage(context.Background(), testImage(), ImageOptions{})
	require.NoError(t, err)
	_, err = client.EmbedImage(context.Background(), translucentImage(), ImageOptions{})
	require.NoError(t, err)

	require.Len(t, pixels, 2)
	assert.Equal(t, pixels[0], pixels[1])
}

func TestEmbedImage_Normalize(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	backend.EXPECT().Infer(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(vectorResponse([]int64{1, 2}, []float32{3, 4}), nil).Times(2)

	client, err := NewClient(backend, writeAssets(t), newTestLogger(ctrl))
	require.NoError(t, err)

	raw, err := client.EmbedImage(context.Background(), testImage(), ImageOptions{Model: ModelBriaAttribution})
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 4}, raw[0].Vector)

	normalized, err := client.EmbedImage(context.Background(), testImage(), ImageOptions{Normalize: true})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, normalized[0].Vector[0], 1e-6)
	assert.InDelta(t, 0.8, normalized[0].Vector[1], 1e-6)
}

func TestEmbedImage_NormalizeZeroVector(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	backend.EXPECT().Infer(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(vectorResponse([]int64{3}, []float32{0, 0, 0}), nil)

	client, err := NewClient(backend, writeAssets(t), newTestLogger(ctrl))
	require.NoError(t, err)

	result, err := client.EmbedImage(context.Background(), testImage(), ImageOptions{Normalize: true})
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0}, result[0].Vector)
}

func TestEmbedImage_UnknownModel(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)

	client, err := NewClient(backend, writeAssets(t), newTestLogger(ctrl))
	require.NoError(t, err)

	_, err = client.EmbedImage(context.Background(), testImage(), ImageOptions{Model: "unknown_model"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownModel)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageIdle, stageErr.Stage)
	assert.Equal(t, ModelIdentifier("unknown_model"), stageErr.Model)
}

func TestNewClient_FailsFast(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)

	client, err := NewClient(backend, writeAssets(t, "tokenizer/vocab.json", "tokenizer/merges.txt"), newTestLogger(ctrl))
	require.Error(t, err)
	assert.Nil(t, client)
	assert.ErrorIs(t, err, preprocess.ErrProfileLoad)

	client, err = NewClient(backend, writeAssets(t, "feature_extractor/preprocessor_config.json"), newTestLogger(ctrl))
	require.Error(t, err)
	assert.Nil(t, client)
	assert.ErrorIs(t, err, preprocess.ErrProfileLoad)

	_, err = NewClient(nil, writeAssets(t), newTestLogger(ctrl))
	assert.Error(t, err)
}

func TestNewClient_RequiresDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)

	client, err := NewClient(backend, writeAssets(t), nil)
	require.Error(t, err)
	assert.Nil(t, client)

	client, err = NewClient(backend, nil, newTestLogger(ctrl))
	require.Error(t, err)
	assert.Nil(t, client)
}

func TestEmbedImage_MissingOutputKeepsClientUsable(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)

	wrongName := echoVector()
	wrongName.Outputs[0].Name = "output__1"

	gomock.InOrder(
		backend.EXPECT().Infer(gomock.Any(), gomock.Any(), gomock.Any()).Return(wrongName, nil),
		backend.EXPECT().Infer(gomock.Any(), gomock.Any(), gomock.Any()).Return(echoVector(), nil),
	)

	client, err := NewClient(backend, writeAssets(t), newTestLogger(ctrl))
	require.NoError(t, err)

	_, err = client.EmbedImage(context.Background(), testImage(), ImageOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, tensor.ErrMissingOutput)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageDecoded, stageErr.Stage)

	result, err := client.EmbedImage(context.Background(), testImage(), ImageOptions{})
	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestEmbedImage_BackendError(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	boom := errors.New("connection refused")
	backend.EXPECT().Infer(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, boom)

	client, err := NewClient(backend, writeAssets(t), newTestLogger(ctrl))
	require.NoError(t, err)

	_, err = client.EmbedImage(context.Background(), testImage(), ImageOptions{})
	assert.ErrorIs(t, err, boom)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageAwaitingBackend, stageErr.Stage)
}

func TestEmbedImage_BytesOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)

	out, err := tensor.NewTensor([]int64{1, 1}, [][]byte{[]byte("attribution-id")})
	require.NoError(t, err)
	resp := &tensor.InferenceResponse{Outputs: []*tensor.Output{{Name: tensor.DefaultOutputName, Tensor: out}}}
	backend.EXPECT().Infer(gomock.Any(), gomock.Any(), gomock.Any()).Return(resp, nil).Times(2)

	client, err := NewClient(backend, writeAssets(t), newTestLogger(ctrl))
	require.NoError(t, err)

	result, err := client.EmbedImage(context.Background(), testImage(), ImageOptions{})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "attribution-id", result[0].Text)
	assert.Nil(t, result[0].Vector)

	_, err = client.EmbedImage(context.Background(), testImage(), ImageOptions{Normalize: true})
	assert.ErrorIs(t, err, ErrNormalizeUnsupported)
}

func TestEmbedImage_BatchMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	backend.EXPECT().Infer(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(vectorResponse([]int64{2, 2}, []float32{1, 2, 3, 4}), nil)

	client, err := NewClient(backend, writeAssets(t), newTestLogger(ctrl))
	require.NoError(t, err)

	_, err = client.EmbedImage(context.Background(), testImage(), ImageOptions{})
	assert.ErrorIs(t, err, ErrBatchMismatch)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageDone, stageErr.Stage)
}

func TestEmbedImage_UnsupportedImage(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)

	client, err := NewClient(backend, writeAssets(t), newTestLogger(ctrl))
	require.NoError(t, err)

	_, err = client.EmbedImage(context.Background(), nil, ImageOptions{})
	assert.ErrorIs(t, err, preprocess.ErrUnsupportedImage)

	_, err = client.EmbedImageBytes(context.Background(), []byte("GIF89a-truncated"), ImageOptions{})
	assert.ErrorIs(t, err, preprocess.ErrUnsupportedImage)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StagePreprocessing, stageErr.Stage)
}

func TestEmbedImageBytes(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	backend.EXPECT().Infer(gomock.Any(), gomock.Any(), gomock.Any()).Return(echoVector(), nil)

	client, err := NewClient(backend, writeAssets(t), newTestLogger(ctrl))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))

	result, err := client.EmbedImageBytes(context.Background(), buf.Bytes(), ImageOptions{})
	require.NoError(t, err)
	assert.Len(t, result[0].Vector, testEmbeddingDim)
}

func TestEmbedImage_Observer(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	backend.EXPECT().Infer(gomock.Any(), gomock.Any(), gomock.Any()).Return(echoVector(), nil)

	client, err := NewClient(backend, writeAssets(t), newTestLogger(ctrl))
	require.NoError(t, err)

	var ops []observability.OperationContext
	client.WithObserver(observability.ObserverFunc(func(op observability.OperationContext) {
		ops = append(ops, op)
	}))

	_, err = client.EmbedImage(context.Background(), testImage(), ImageOptions{})
	require.NoError(t, err)

	require.Len(t, ops, 2)
	assert.Equal(t, "infer", ops[0].Operation)
	assert.Equal(t, "embed_image", ops[1].Operation)
	for _, op := range ops {
		assert.Equal(t, "embedding", op.Component)
		assert.Equal(t, "bria_attribution_model", op.Resource)
		assert.NoError(t, op.Error)
	}
}

func TestEmbedImage_Concurrent(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	backend.EXPECT().Infer(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, *tensor.InferenceRequest) (*tensor.InferenceResponse, error) {
			return echoVector(), nil
		}).Times(8)

	client, err := NewClient(backend, writeAssets(t), newTestLogger(ctrl))
	require.NoError(t, err)

	img := testImage()
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.EmbedImage(context.Background(), img, ImageOptions{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestParseModelIdentifier(t *testing.T) {
	m, err := ParseModelIdentifier("bria_attribution_model")
	require.NoError(t, err)
	assert.Equal(t, ModelBriaAttribution, m)
	assert.Equal(t, "bria_attribution_model_client", m.AssetDir())
	assert.Equal(t, DefaultModel, m)

	_, err = ParseModelIdentifier("clip")
	assert.ErrorIs(t, err, ErrUnknownModel)

	assert.Equal(t, []ModelIdentifier{ModelBriaAttribution}, KnownModels())
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "awaiting_backend", StageAwaitingBackend.String())
	assert.Equal(t, "stage(42)", Stage(42).String())
}

func TestFXModule(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	src := writeAssets(t)
	mockLogger := newTestLogger(ctrl)

	var client *Client
	app := fxtest.New(t,
		FXModule,
		fx.Provide(
			func() Backend { return backend },
			func() assetstore.Source { return src },
			func() Logger { return mockLogger },
		),
		fx.Populate(&client),
	)
	app.RequireStart()
	require.NotNil(t, client)
	assert.Equal(t, []ModelIdentifier{ModelBriaAttribution}, client.Models())
	app.RequireStop()
}
