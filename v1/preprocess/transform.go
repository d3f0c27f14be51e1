package preprocess

import (
	"fmt"
	"image"

	"github.com/nfnt/resize"

	"github.com/Aleph-Alpha/image-embedder/v1/tensor"
)

// Preprocess turns img into the model input tensor: RGB coercion, resize,
// center crop, rescale and normalize, laid out channel-first with shape
// (1, 3, H, W). The result depends only on img and the profile.
func (p *Profile) Preprocess(img image.Image) (*tensor.Tensor, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrUnsupportedImage)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", ErrUnsupportedImage)
	}
	fe := p.featureExtractor

	// PIL-style conversion is required for anything that is not already
	// three-channel, independent of do_convert_rgb.
	var src image.Image = img
	if ColorMode(img).Channels != 3 {
		src = ToRGB(img)
	}

	if fe.DoResize {
		w, h := resizedSize(fe.Size, src.Bounds().Dx(), src.Bounds().Dy())
		src = resize.Resize(uint(w), uint(h), src, interpolation(fe.Resample))
	}

	b := src.Bounds()
	outH, outW := b.Dy(), b.Dx()
	offX, offY := 0, 0
	if fe.DoCenterCrop {
		outH, outW = fe.CropSize.box()
		offX = cropOffset(b.Dx(), outW)
		offY = cropOffset(b.Dy(), outH)
	}

	scale := [3]float32{1, 1, 1}
	shift := [3]float32{}
	for c := 0; c < 3; c++ {
		if fe.DoRescale {
			scale[c] = float32(fe.RescaleFactor)
		}
		if fe.DoNormalize {
			std := float32(fe.ImageStd[c])
			scale[c] /= std
			shift[c] = -float32(fe.ImageMean[c]) / std
		}
	}

	plane := outH * outW
	data := make([]float32, 3*plane)
	for y := 0; y < outH; y++ {
		sy := y + offY
		for x := 0; x < outW; x++ {
			sx := x + offX
			var px [3]float32
			if sx >= 0 && sx < b.Dx() && sy >= 0 && sy < b.Dy() {
				r, g, bl := rgb8(src.At(b.Min.X+sx, b.Min.Y+sy))
				px = [3]float32{float32(r), float32(g), float32(bl)}
			}
			i := y*outW + x
			for c := 0; c < 3; c++ {
				data[c*plane+i] = px[c]*scale[c] + shift[c]
			}
		}
	}

	return tensor.NewFP32([]int64{1, 3, int64(outH), int64(outW)}, data)
}

// resizedSize returns the target width and height. A shortest-edge size
// keeps the aspect ratio and truncates the long edge.
func resizedSize(s Size, width, height int) (int, int) {
	if s.exact() {
		return s.Width, s.Height
	}
	short, long := width, height
	if width > height {
		short, long = height, width
	}
	newShort := s.ShortestEdge
	newLong := int(float64(newShort) * float64(long) / float64(short))
	if newLong < 1 {
		newLong = 1
	}
	if width <= height {
		return newShort, newLong
	}
	return newLong, newShort
}

// cropOffset returns the source offset of the first cropped pixel along one
// axis. Images smaller than the crop are centered in zero padding, with the
// extra padding pixel on the leading side.
func cropOffset(size, crop int) int {
	if size >= crop {
		return (size - crop) / 2
	}
	return -((crop - size + 1) / 2)
}

// interpolation maps a PIL resample code to the closest nfnt filter.
func interpolation(resample int) resize.InterpolationFunction {
	switch resample {
	case ResampleNearest:
		return resize.NearestNeighbor
	case ResampleLanczos:
		return resize.Lanczos3
	case ResampleBilinear, ResampleBox, ResampleHamming:
		return resize.Bilinear
	default:
		return resize.Bicubic
	}
}
