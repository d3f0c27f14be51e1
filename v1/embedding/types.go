package embedding

import (
	"fmt"
	"sort"
)

// ModelIdentifier names an embedding model served by the inference backend.
// The set of identifiers is closed; every identifier has a preprocessing
// asset directory.
type ModelIdentifier string

const (
	// ModelBriaAttribution is the BRIA attribution image embedding model.
	ModelBriaAttribution ModelIdentifier = "bria_attribution_model"

	// DefaultModel is used when ImageOptions.Model is empty.
	DefaultModel = ModelBriaAttribution
)

var modelAssetDirs = map[ModelIdentifier]string{
	ModelBriaAttribution: "bria_attribution_model_client",
}

// KnownModels returns every supported identifier in lexical order.
func KnownModels() []ModelIdentifier {
	models := make([]ModelIdentifier, 0, len(modelAssetDirs))
	for m := range modelAssetDirs {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i] < models[j] })
	return models
}

// ParseModelIdentifier validates s against the known identifiers.
func ParseModelIdentifier(s string) (ModelIdentifier, error) {
	m := ModelIdentifier(s)
	if _, ok := modelAssetDirs[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, s)
	}
	return m, nil
}

// AssetDir returns the directory holding the model's preprocessing assets,
// relative to the asset store's base location.
func (m ModelIdentifier) AssetDir() string {
	return modelAssetDirs[m]
}

func (m ModelIdentifier) String() string {
	return string(m)
}

// ImageOptions controls a single EmbedImage call.
type ImageOptions struct {
	// Model selects the model; empty means DefaultModel.
	Model ModelIdentifier

	// Normalize scales every returned vector to unit L2 norm.
	Normalize bool
}

// Embedding is the model output for one input image. Numeric outputs fill
// Vector, BYTES outputs fill Text.
type Embedding struct {
	Text   string    `json:"text,omitempty"`
	Vector []float32 `json:"vector,omitempty"`
}

// Result holds one Embedding per input image, in input order.
type Result []Embedding

// Vectors returns the numeric embeddings of the result.
func (r Result) Vectors() [][]float32 {
	out := make([][]float32, 0, len(r))
	for _, e := range r {
		if e.Vector != nil {
			out = append(out, e.Vector)
		}
	}
	return out
}
