/**
 * Preprocessor (C2)
 *
 * Produces a small, fixed family of derived bitmaps from an input image for
 * OCR retries. Variants are cheap and regenerated per file — no caching.
 */

package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
)

// Variant is one named derived bitmap, encoded as PNG bytes ready for OCR.
type Variant struct {
	Name string
	PNG  []byte
}

// Standard produces the five-variant family named in §4.2: grayscale,
// grayscale with contrast x2.5, auto-contrast, sharpened high-contrast, and
// inverted.
func Standard(src image.Image) ([]Variant, error) {
	gray := imaging.Grayscale(src)

	variants := []struct {
		name string
		img  image.Image
	}{
		{"grayscale", gray},
		{"grayscale_contrast", imaging.AdjustContrast(gray, 2.5)},
		{"auto_contrast", autoContrast(src)},
		{"sharpened_high_contrast", imaging.Sharpen(imaging.AdjustContrast(gray, 2.5), 1.5)},
		{"inverted", imaging.Invert(src)},
	}

	out := make([]Variant, 0, len(variants))
	for _, v := range variants {
		data, err := encodePNG(v.img)
		if err != nil {
			return nil, err
		}
		out = append(out, Variant{Name: v.name, PNG: data})
	}
	return out, nil
}

// Mild produces the milder variant §4.2 names for the standard extractor:
// contrast x1.5, brightness x1.2, then a sharpen pass.
func Mild(src image.Image) (Variant, error) {
	img := imaging.AdjustContrast(src, 1.5)
	img = imaging.AdjustBrightness(img, 1.2)
	img = imaging.Sharpen(img, 1.0)

	data, err := encodePNG(img)
	if err != nil {
		return Variant{}, err
	}
	return Variant{Name: "mild", PNG: data}, nil
}

// GrayscaleFirstPage produces just the grayscale variant, the only image the
// hybrid extractor's step B config sweep runs on.
func GrayscaleFirstPage(src image.Image) image.Image {
	return imaging.Grayscale(src)
}

// HandwrittenFieldVariants produces the five crop-level variants §4.5a
// names: original, high-contrast grayscale, auto-contrast, sharpened, and
// inverted.
func HandwrittenFieldVariants(crop image.Image) ([]Variant, error) {
	gray := imaging.Grayscale(crop)

	variants := []struct {
		name string
		img  image.Image
	}{
		{"original", crop},
		{"high_contrast_grayscale", imaging.AdjustContrast(gray, 2.0)},
		{"auto_contrast", autoContrast(crop)},
		{"sharpened", imaging.Sharpen(crop, 1.5)},
		{"inverted", imaging.Invert(crop)},
	}

	out := make([]Variant, 0, len(variants))
	for _, v := range variants {
		data, err := encodePNG(v.img)
		if err != nil {
			return nil, err
		}
		out = append(out, Variant{Name: v.name, PNG: data})
	}
	return out, nil
}

// BoxedFieldPrep converts a single character/digit box crop to grayscale and
// amplifies contrast x2.5, per §4.5b step 5.
func BoxedFieldPrep(crop image.Image) ([]byte, error) {
	gray := imaging.Grayscale(crop)
	contrasted := imaging.AdjustContrast(gray, 2.5)
	return encodePNG(contrasted)
}

// autoContrast stretches the luminance histogram so the darkest pixel maps
// to black and the lightest maps to white. disintegration/imaging has no
// auto-contrast operation of its own, so this is a small stdlib-only
// histogram-stretch kept local to this file (see DESIGN.md).
func autoContrast(src image.Image) image.Image {
	bounds := src.Bounds()
	lo, hi := uint8(255), uint8(0)

	lum := func(x, y int) uint8 {
		r, g, b, _ := src.At(x, y).RGBA()
		return color.GrayModel.Convert(color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: 0xffff}).(color.Gray).Y
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := lum(x, y)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}

	if hi <= lo {
		return src
	}

	scale := 255.0 / float64(hi-lo)
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := src.At(x, y).RGBA()
			stretch := func(c uint32) uint8 {
				v := float64(uint8(c>>8)) - float64(lo)
				if v < 0 {
					v = 0
				}
				v *= scale
				if v > 255 {
					v = 255
				}
				return uint8(v)
			}
			out.Set(x, y, color.RGBA{R: stretch(r), G: stretch(g), B: stretch(b), A: uint8(a >> 8)})
		}
	}
	return out
}

// EncodePNG exposes the PNG encoder used throughout this package so callers
// outside it (the hybrid extractor's grayscale first-page pass) can reuse the same
// encoding path.
func EncodePNG(img image.Image) ([]byte, error) {
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
