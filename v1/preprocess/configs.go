package preprocess

import (
	"encoding/json"
	"fmt"
	"math"
)

// CLIP defaults, applied to every field the feature extractor config omits.
var (
	defaultImageMean = []float64{0.48145466, 0.4578275, 0.40821073}
	defaultImageStd  = []float64{0.26862954, 0.26130258, 0.27577711}
)

// PIL resampling filter codes as stored in "resample".
const (
	ResampleNearest  = 0
	ResampleLanczos  = 1
	ResampleBilinear = 2
	ResampleBicubic  = 3
	ResampleBox      = 4
	ResampleHamming  = 5
)

// Size is a spatial size as written by Hugging Face image processors. It is
// either a plain integer (stored in ShortestEdge), {"shortest_edge": n} or
// {"height": h, "width": w}.
type Size struct {
	ShortestEdge int `json:"shortest_edge,omitempty"`
	Height       int `json:"height,omitempty"`
	Width        int `json:"width,omitempty"`
}

// UnmarshalJSON accepts the integer and the object forms.
func (s *Size) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*s = Size{ShortestEdge: n}
		return nil
	}
	type plain Size
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("size must be an integer or an object: %w", err)
	}
	*s = Size(p)
	return nil
}

// exact reports whether the size names both height and width.
func (s Size) exact() bool {
	return s.Height > 0 && s.Width > 0
}

// box returns the size as height and width; a plain integer is square.
func (s Size) box() (int, int) {
	if s.exact() {
		return s.Height, s.Width
	}
	return s.ShortestEdge, s.ShortestEdge
}

// FeatureExtractorConfig holds the image preprocessing parameters read from
// preprocessor_config.json.
type FeatureExtractorConfig struct {
	FeatureExtractorType string    `json:"feature_extractor_type,omitempty"`
	ImageProcessorType   string    `json:"image_processor_type,omitempty"`
	DoResize             bool      `json:"do_resize"`
	Size                 Size      `json:"size"`
	Resample             int       `json:"resample"`
	DoCenterCrop         bool      `json:"do_center_crop"`
	CropSize             Size      `json:"crop_size"`
	DoRescale            bool      `json:"do_rescale"`
	RescaleFactor        float64   `json:"rescale_factor"`
	DoNormalize          bool      `json:"do_normalize"`
	ImageMean            []float64 `json:"image_mean"`
	ImageStd             []float64 `json:"image_std"`
	DoConvertRGB         bool      `json:"do_convert_rgb"`
}

// DefaultFeatureExtractorConfig returns the CLIP ViT preprocessing defaults:
// bicubic resize of the shortest edge to 224, 224x224 center crop, rescale
// by 1/255 and normalization with the OpenAI CLIP mean and std.
func DefaultFeatureExtractorConfig() FeatureExtractorConfig {
	return FeatureExtractorConfig{
		DoResize:      true,
		Size:          Size{ShortestEdge: 224},
		Resample:      ResampleBicubic,
		DoCenterCrop:  true,
		CropSize:      Size{Height: 224, Width: 224},
		DoRescale:     true,
		RescaleFactor: 1.0 / 255.0,
		DoNormalize:   true,
		ImageMean:     append([]float64(nil), defaultImageMean...),
		ImageStd:      append([]float64(nil), defaultImageStd...),
		DoConvertRGB:  true,
	}
}

// ParseFeatureExtractorConfig parses preprocessor_config.json on top of the
// defaults and validates the result.
func ParseFeatureExtractorConfig(data []byte) (FeatureExtractorConfig, error) {
	cfg := DefaultFeatureExtractorConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return FeatureExtractorConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return FeatureExtractorConfig{}, err
	}
	return cfg, nil
}

// Validate checks that the enabled steps have usable parameters.
func (c FeatureExtractorConfig) Validate() error {
	if c.DoResize {
		if c.Size.exact() {
			if c.Size.Height <= 0 || c.Size.Width <= 0 {
				return fmt.Errorf("size must be positive, got %+v", c.Size)
			}
		} else if c.Size.ShortestEdge <= 0 {
			return fmt.Errorf("size must be positive, got %+v", c.Size)
		}
	}
	if c.DoCenterCrop {
		h, w := c.CropSize.box()
		if h <= 0 || w <= 0 {
			return fmt.Errorf("crop_size must be positive, got %+v", c.CropSize)
		}
	}
	if !c.DoResize && !c.DoCenterCrop {
		return fmt.Errorf("either do_resize or do_center_crop is required for a fixed output size")
	}
	if c.DoRescale && (c.RescaleFactor <= 0 || math.IsInf(c.RescaleFactor, 0) || math.IsNaN(c.RescaleFactor)) {
		return fmt.Errorf("rescale_factor must be positive, got %v", c.RescaleFactor)
	}
	if c.DoNormalize {
		if len(c.ImageMean) != 3 || len(c.ImageStd) != 3 {
			return fmt.Errorf("image_mean and image_std need 3 values, got %d and %d", len(c.ImageMean), len(c.ImageStd))
		}
		for i, s := range c.ImageStd {
			if s == 0 {
				return fmt.Errorf("image_std[%d] is zero", i)
			}
		}
	}
	switch c.Resample {
	case ResampleNearest, ResampleLanczos, ResampleBilinear, ResampleBicubic, ResampleBox, ResampleHamming:
	default:
		return fmt.Errorf("unsupported resample filter %d", c.Resample)
	}
	return nil
}

// Token is a special token, written either as a plain string or as an
// added-token object with a "content" field.
type Token string

// UnmarshalJSON accepts both token forms; null leaves the token empty.
func (t *Token) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Token(s)
		return nil
	}
	var obj struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("token must be a string or an object: %w", err)
	}
	*t = Token(obj.Content)
	return nil
}

// SpecialTokens lists the special tokens of a tokenizer.
type SpecialTokens struct {
	Bos Token `json:"bos_token"`
	Eos Token `json:"eos_token"`
	Unk Token `json:"unk_token"`
	Pad Token `json:"pad_token"`
}

// TokenizerConfig is the text tokenization configuration that ships with a
// preprocessing profile. The image path does not use it.
type TokenizerConfig struct {
	// ModelMaxLength is the maximum sequence length, 0 when unbounded.
	ModelMaxLength int
	DoLowerCase    bool
	Special        SpecialTokens
	Vocab          map[string]int
	Merges         []string
}

// VocabSize returns the number of entries in the vocabulary.
func (t TokenizerConfig) VocabSize() int {
	return len(t.Vocab)
}

type tokenizerConfigFile struct {
	ModelMaxLength float64 `json:"model_max_length"`
	DoLowerCase    bool    `json:"do_lower_case"`
	SpecialTokens
}

func (f tokenizerConfigFile) maxLength() int {
	if f.ModelMaxLength <= 0 || f.ModelMaxLength > math.MaxInt32 {
		return 0
	}
	return int(f.ModelMaxLength)
}
