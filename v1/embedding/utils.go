package embedding

import (
	"fmt"
	"math"

	"github.com/Aleph-Alpha/image-embedder/v1/tensor"
)

// toResult splits the output tensor into one Embedding per input row.
//
// Numeric outputs are split along the leading dimension; a 0-D or 1-D
// output counts as a single row. BYTES outputs carry one element per row.
func toResult(out *tensor.Tensor, rows int, normalize bool) (Result, error) {
	dt, err := out.Datatype()
	if err != nil {
		return nil, err
	}

	if dt == tensor.BYTES {
		if normalize {
			return nil, ErrNormalizeUnsupported
		}
		texts, err := out.Strings()
		if err != nil {
			return nil, err
		}
		if len(texts) != rows {
			return nil, fmt.Errorf("%w: %d elements for %d images", ErrBatchMismatch, len(texts), rows)
		}
		result := make(Result, rows)
		for i, s := range texts {
			result[i] = Embedding{Text: s}
		}
		return result, nil
	}

	values, err := out.Float32s()
	if err != nil {
		return nil, err
	}
	batch := 1
	if len(out.Shape) > 1 {
		batch = int(out.Shape[0])
	}
	if batch != rows || batch <= 0 {
		return nil, fmt.Errorf("%w: output shape %v for %d images", ErrBatchMismatch, out.Shape, rows)
	}

	dim := len(values) / batch
	result := make(Result, batch)
	for i := range result {
		vec := make([]float32, dim)
		copy(vec, values[i*dim:(i+1)*dim])
		if normalize {
			l2Normalize(vec)
		}
		result[i] = Embedding{Vector: vec}
	}
	return result, nil
}

// l2Normalize scales v in place to unit Euclidean norm. Zero vectors are
// left unchanged.
func l2Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		v[i] = float32(float64(x) / norm)
	}
}
