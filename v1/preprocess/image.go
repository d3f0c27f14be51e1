package preprocess

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Mode names the PIL-equivalent color mode of an image together with its
// channel count.
type Mode struct {
	Name     string
	Channels int
}

// ColorMode reports the mode of img. Only images with exactly three channels
// are fed to the resize step untouched; everything else is coerced to RGB.
func ColorMode(img image.Image) Mode {
	switch img.(type) {
	case *image.YCbCr:
		return Mode{Name: "YCbCr", Channels: 3}
	case *image.NYCbCrA:
		return Mode{Name: "YCbCrA", Channels: 4}
	case *image.RGBA, *image.NRGBA:
		return Mode{Name: "RGBA", Channels: 4}
	case *image.RGBA64, *image.NRGBA64:
		return Mode{Name: "RGBA;16", Channels: 4}
	case *image.Gray:
		return Mode{Name: "L", Channels: 1}
	case *image.Gray16:
		return Mode{Name: "I;16", Channels: 1}
	case *image.Paletted:
		return Mode{Name: "P", Channels: 1}
	case *image.CMYK:
		return Mode{Name: "CMYK", Channels: 4}
	case *image.Alpha, *image.Alpha16:
		return Mode{Name: "A", Channels: 1}
	}

	switch img.ColorModel() {
	case color.YCbCrModel:
		return Mode{Name: "YCbCr", Channels: 3}
	case color.GrayModel, color.Gray16Model:
		return Mode{Name: "L", Channels: 1}
	case color.CMYKModel:
		return Mode{Name: "CMYK", Channels: 4}
	}
	if _, ok := img.ColorModel().(color.Palette); ok {
		return Mode{Name: "P", Channels: 1}
	}
	return Mode{Name: "RGBA", Channels: 4}
}

// ToRGB converts img to an opaque RGB image. Alpha is dropped without
// compositing, gray is replicated, palettes are expanded and CMYK is
// converted.
func ToRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl := rgb8(img.At(x, y))
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: r, G: g, B: bl, A: 0xff})
		}
	}
	return dst
}

// rgb8 returns the straight (non-premultiplied) 8-bit RGB of c.
func rgb8(c color.Color) (uint8, uint8, uint8) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n.R, n.G, n.B
}

// DecodeImage decodes a PNG, JPEG, GIF, BMP, TIFF or WebP image and returns
// it with its format name.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}
	if img.Bounds().Empty() {
		return nil, format, fmt.Errorf("%w: empty %s image", ErrUnsupportedImage, format)
	}
	return img, format, nil
}
