package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/image-embedder/v1/embedding"
	"github.com/Aleph-Alpha/image-embedder/v1/logger"
	"github.com/Aleph-Alpha/image-embedder/v1/metrics"
	"github.com/Aleph-Alpha/image-embedder/v1/preprocess"
	"github.com/Aleph-Alpha/image-embedder/v1/tensor"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 20), G: uint8(y * 20), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

// writeAssets lays out a minimal preprocessing profile for every known model.
func writeAssets(t *testing.T, base string) {
	t.Helper()
	for _, m := range embedding.KnownModels() {
		fe := filepath.Join(base, m.AssetDir(), preprocess.FeatureExtractorDir)
		tok := filepath.Join(base, m.AssetDir(), preprocess.TokenizerDir)
		require.NoError(t, os.MkdirAll(fe, 0o755))
		require.NoError(t, os.MkdirAll(tok, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(fe, preprocess.PreprocessorConfigFile),
			[]byte(`{"size": 8, "crop_size": 8}`), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(tok, preprocess.VocabFile),
			[]byte(`{"a": 0, "b": 1, "ab</w>": 2}`), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(tok, preprocess.MergesFile),
			[]byte("#version: 0.2\na b</w>\n"), 0o600))
	}
}

// tritonStub answers every inference call with the embedding [3, 4],
// which normalizes to [0.6, 0.8].
func tritonStub(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusOK)
			return
		}
		calls.Add(1)
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		headerLength, _ := strconv.Atoi(r.Header.Get(tensor.HeaderContentLength))
		req, err := tensor.DecodeRequest(body, headerLength)
		if err != nil || len(req.Inputs) != 1 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		out, _ := tensor.NewFP32([]int64{1, 2}, []float32{3, 4})
		respBody, respHeaderLength, err := tensor.EncodeResponse(&tensor.InferenceResponse{
			ModelName: string(embedding.DefaultModel),
			Outputs:   []*tensor.Output{{Name: tensor.DefaultOutputName, Tensor: out}},
		}, true)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set(tensor.HeaderContentLength, strconv.Itoa(respHeaderLength))
		_, _ = w.Write(respBody)
	}))
	t.Cleanup(server.Close)
	return server
}

func decodeLines(t *testing.T, out []byte) []embedLine {
	t.Helper()
	var lines []embedLine
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		var line embedLine
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
		lines = append(lines, line)
	}
	return lines
}

func TestEmbedCmd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	assets := filepath.Join(dir, "assets")
	writeAssets(t, assets)
	writePNG(t, filepath.Join(dir, "a.png"), 12, 10)
	writePNG(t, filepath.Join(dir, "b.png"), 6, 9)

	var calls atomic.Int32
	server := tritonStub(t, &calls)

	var stdout bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetArgs([]string{
		"embed",
		"--triton-url", server.URL,
		"--assets-dir", assets,
		"--log-level", "error",
		"--normalize",
		"-j", "2",
		"a.png", "b.png",
	})
	require.NoError(t, root.Execute())

	assert.Equal(t, int32(2), calls.Load())
	lines := decodeLines(t, stdout.Bytes())
	require.Len(t, lines, 2)
	assert.Equal(t, "a.png", lines[0].Path)
	assert.Equal(t, "b.png", lines[1].Path)
	for _, line := range lines {
		assert.Equal(t, embedding.DefaultModel.String(), line.Model)
		require.Len(t, line.Embeddings, 1)
		assert.InDeltaSlice(t, []float32{0.6, 0.8}, line.Embeddings[0].Vector, 1e-6)
	}
}

func TestEmbedCmd_MissingAssets(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writePNG(t, filepath.Join(dir, "a.png"), 4, 4)

	var calls atomic.Int32
	server := tritonStub(t, &calls)

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"embed", "--triton-url", server.URL, "--assets-dir", dir, "--log-level", "error", "a.png"})

	assert.Error(t, root.Execute())
	assert.Zero(t, calls.Load())
}

func TestEmbedCmd_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown model", args: []string{"embed", "--model", "resnet", "a.png"}},
		{name: "zero concurrency", args: []string{"embed", "-j", "0", "a.png"}},
		{name: "no images", args: []string{"embed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewRootCmd()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(tt.args)
			assert.Error(t, root.Execute())
		})
	}
}

func TestModelsCmd(t *testing.T) {
	var stdout bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetArgs([]string{"models"})
	require.NoError(t, root.Execute())

	assert.Contains(t, stdout.String(), "bria_attribution_model (default)")
	assert.Contains(t, stdout.String(), "bria_attribution_model_client")
}

type fakeEmbedder struct {
	fail map[string]bool
}

func (f fakeEmbedder) EmbedImageBytes(_ context.Context, data []byte, opts embedding.ImageOptions) (embedding.Result, error) {
	if f.fail[string(data)] {
		return nil, errors.New("backend unavailable")
	}
	v := []float32{float32(len(data)), 0}
	if opts.Normalize {
		v[0] = 1
	}
	return embedding.Result{{Vector: v}}, nil
}

func TestEmbedder_Run(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, content := range []string{"one", "three", "fifteen"} {
		p := filepath.Join(dir, content)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		paths = append(paths, p)
	}

	m := metrics.NewMetrics(metrics.Config{})
	e := newEmbedder(fakeEmbedder{}, m, &logger.Logger{Zap: zap.NewNop()})

	var out bytes.Buffer
	err := e.run(context.Background(), paths, embedding.ImageOptions{Model: embedding.DefaultModel}, 1, &out)
	require.NoError(t, err)

	lines := decodeLines(t, out.Bytes())
	require.Len(t, lines, 3)
	for i, line := range lines {
		assert.Equal(t, paths[i], line.Path)
		assert.Equal(t, float32(len(filepath.Base(paths[i]))), line.Embeddings[0].Vector[0])
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(e.files.WithLabelValues(metrics.StatusSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(e.files.WithLabelValues(metrics.StatusError)))
	assert.Equal(t, 1, testutil.CollectAndCount(e.imageBytes))
}

func TestEmbedder_RunFailure(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good")
	bad := filepath.Join(dir, "bad")
	require.NoError(t, os.WriteFile(good, []byte("good"), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte("bad"), 0o600))

	e := newEmbedder(fakeEmbedder{fail: map[string]bool{"bad": true}},
		metrics.NewMetrics(metrics.Config{}), &logger.Logger{Zap: zap.NewNop()})

	var out bytes.Buffer
	err := e.run(context.Background(), []string{good, bad, filepath.Join(dir, "missing")}, embedding.ImageOptions{}, 2, &out)
	require.Error(t, err)
	assert.Empty(t, out.String())
	assert.GreaterOrEqual(t, testutil.ToFloat64(e.files.WithLabelValues(metrics.StatusError)), 1.0)
}

type fakeChecker struct {
	serverErr error
	modelErr  error
}

func (f fakeChecker) ServerReady(context.Context) error { return f.serverErr }
func (f fakeChecker) ModelReady(context.Context, string) error { return f.modelErr }

func TestCheckHealth(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, checkHealth(context.Background(), fakeChecker{}, &out))
	assert.Contains(t, out.String(), "server\tREADY")
	assert.Contains(t, out.String(), "bria_attribution_model\tREADY")

	out.Reset()
	err := checkHealth(context.Background(), fakeChecker{modelErr: errors.New("404")}, &out)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "NOT READY")

	out.Reset()
	err = checkHealth(context.Background(), fakeChecker{serverErr: errors.New("refused")}, &out)
	assert.Error(t, err)
	assert.NotContains(t, out.String(), "bria_attribution_model")
}
