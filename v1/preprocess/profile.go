package preprocess

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/Aleph-Alpha/image-embedder/v1/assetstore"
)

var (
	// ErrProfileLoad is returned when the preprocessing assets of a model are
	// missing or malformed.
	ErrProfileLoad = errors.New("failed to load preprocessing profile")

	// ErrUnsupportedImage is returned for images that cannot be decoded or
	// have no pixels.
	ErrUnsupportedImage = errors.New("unsupported image")
)

// Asset locations relative to a model's client directory.
const (
	FeatureExtractorDir     = "feature_extractor"
	TokenizerDir            = "tokenizer"
	PreprocessorConfigFile  = "preprocessor_config.json"
	TokenizerConfigFile     = "tokenizer_config.json"
	SpecialTokensMapFile    = "special_tokens_map.json"
	VocabFile               = "vocab.json"
	MergesFile              = "merges.txt"
	mergesVersionLinePrefix = "#version"
)

// Profile is the loaded preprocessing configuration of one model. A Profile
// is immutable after Load and safe for concurrent use.
type Profile struct {
	clientDir        string
	featureExtractor FeatureExtractorConfig
	tokenizer        TokenizerConfig
}

// NewProfile builds a Profile from an already parsed feature extractor
// config. The tokenizer part is optional.
func NewProfile(clientDir string, fe FeatureExtractorConfig, tok TokenizerConfig) (*Profile, error) {
	if err := fe.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrProfileLoad, clientDir, err)
	}
	return &Profile{clientDir: clientDir, featureExtractor: fe.clone(), tokenizer: tok.clone()}, nil
}

// Load reads the feature extractor and tokenizer assets below clientDir.
// Every missing or malformed required file fails the load with
// ErrProfileLoad.
func Load(ctx context.Context, src assetstore.Source, clientDir string) (*Profile, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no asset source", ErrProfileLoad)
	}
	clientDir = strings.Trim(clientDir, "/")

	raw, err := src.ReadFile(ctx, path.Join(clientDir, FeatureExtractorDir, PreprocessorConfigFile))
	if err != nil {
		return nil, loadError(clientDir, PreprocessorConfigFile, err)
	}
	fe, err := ParseFeatureExtractorConfig(raw)
	if err != nil {
		return nil, loadError(clientDir, PreprocessorConfigFile, err)
	}

	tok, err := loadTokenizer(ctx, src, path.Join(clientDir, TokenizerDir))
	if err != nil {
		return nil, loadError(clientDir, TokenizerDir, err)
	}

	return &Profile{clientDir: clientDir, featureExtractor: fe.clone(), tokenizer: tok.clone()}, nil
}

func loadError(clientDir, what string, err error) error {
	return fmt.Errorf("%w: %s/%s: %w", ErrProfileLoad, clientDir, what, err)
}

func loadTokenizer(ctx context.Context, src assetstore.Source, dir string) (TokenizerConfig, error) {
	var tok TokenizerConfig

	vocab, err := src.ReadFile(ctx, path.Join(dir, VocabFile))
	if err != nil {
		return tok, err
	}
	if err := json.Unmarshal(vocab, &tok.Vocab); err != nil {
		return tok, fmt.Errorf("%s: %w", VocabFile, err)
	}
	if len(tok.Vocab) == 0 {
		return tok, fmt.Errorf("%s: empty vocabulary", VocabFile)
	}

	merges, err := src.ReadFile(ctx, path.Join(dir, MergesFile))
	if err != nil {
		return tok, err
	}
	if tok.Merges, err = parseMerges(merges); err != nil {
		return tok, fmt.Errorf("%s: %w", MergesFile, err)
	}

	// tokenizer_config.json and special_tokens_map.json are optional; the
	// latter overrides the special tokens of the former.
	if raw, err := src.ReadFile(ctx, path.Join(dir, TokenizerConfigFile)); err == nil {
		var f tokenizerConfigFile
		if err := json.Unmarshal(raw, &f); err != nil {
			return tok, fmt.Errorf("%s: %w", TokenizerConfigFile, err)
		}
		tok.ModelMaxLength = f.maxLength()
		tok.DoLowerCase = f.DoLowerCase
		tok.Special = f.SpecialTokens
	} else if !errors.Is(err, assetstore.ErrNotFound) {
		return tok, err
	}

	if raw, err := src.ReadFile(ctx, path.Join(dir, SpecialTokensMapFile)); err == nil {
		var special SpecialTokens
		if err := json.Unmarshal(raw, &special); err != nil {
			return tok, fmt.Errorf("%s: %w", SpecialTokensMapFile, err)
		}
		tok.Special = mergeSpecial(tok.Special, special)
	} else if !errors.Is(err, assetstore.ErrNotFound) {
		return tok, err
	}

	return tok, nil
}

// parseMerges returns the BPE merge rules, one "a b" pair per line.
func parseMerges(data []byte) ([]string, error) {
	var merges []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || (line == 1 && strings.HasPrefix(text, mergesVersionLinePrefix)) {
			continue
		}
		if len(strings.Fields(text)) != 2 {
			return nil, fmt.Errorf("line %d: expected a pair, got %q", line, text)
		}
		merges = append(merges, text)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return merges, nil
}

func mergeSpecial(base, override SpecialTokens) SpecialTokens {
	if override.Bos != "" {
		base.Bos = override.Bos
	}
	if override.Eos != "" {
		base.Eos = override.Eos
	}
	if override.Unk != "" {
		base.Unk = override.Unk
	}
	if override.Pad != "" {
		base.Pad = override.Pad
	}
	return base
}

// ClientDir returns the asset directory the profile was loaded from.
func (p *Profile) ClientDir() string {
	return p.clientDir
}

// FeatureExtractor returns a copy of the image preprocessing configuration.
func (p *Profile) FeatureExtractor() FeatureExtractorConfig {
	return p.featureExtractor.clone()
}

// Tokenizer returns a copy of the text tokenization configuration.
func (p *Profile) Tokenizer() TokenizerConfig {
	return p.tokenizer.clone()
}

func (fe FeatureExtractorConfig) clone() FeatureExtractorConfig {
	fe.ImageMean = slices.Clone(fe.ImageMean)
	fe.ImageStd = slices.Clone(fe.ImageStd)
	return fe
}

func (tok TokenizerConfig) clone() TokenizerConfig {
	tok.Vocab = maps.Clone(tok.Vocab)
	tok.Merges = slices.Clone(tok.Merges)
	return tok
}

// OutputShape returns the tensor shape Preprocess produces for an image of
// the given size: (1, 3, H, W).
func (p *Profile) OutputShape(width, height int) []int64 {
	h, w := p.outputSize(width, height)
	return []int64{1, 3, int64(h), int64(w)}
}

func (p *Profile) outputSize(width, height int) (int, int) {
	fe := p.featureExtractor
	if fe.DoCenterCrop {
		return fe.CropSize.box()
	}
	w, h := resizedSize(fe.Size, width, height)
	return h, w
}
