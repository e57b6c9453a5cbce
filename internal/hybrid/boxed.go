/**
 * Boxed-field reader (§4.5b).
 *
 * Handles forms where each digit/letter occupies its own printed box: binarize
 * the crop, find each box's bounding rectangle by connected-component
 * labeling, OCR each box independently, and concatenate in reading order.
 *
 * No contour/connected-component library exists anywhere in the reference
 * pack (grep for "contour"/"gocv"/"opencv" across every retrieved repo turns
 * up nothing), so the binarization and connected-component labeling here are
 * built directly on the standard image package rather than a third-party
 * dependency; grayscale conversion and cropping still use imaging — see
 * DESIGN.md.
 */

package hybrid

import (
	"image"
	"image/color"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/adverant/intake-router/internal/ocr"
	"github.com/adverant/intake-router/internal/preprocess"
)

// ReadBoxedField implements §4.5b. Returns false if fewer than two boxes
// survive filtering, or if the assembled string is shorter than 3
// characters.
func ReadBoxedField(crop image.Image, fieldName string, engine *ocr.Engine) (string, bool) {
	gray := toGray(imaging.Grayscale(crop))
	equalized := localContrastEqualize(gray)
	threshold := otsuThreshold(equalized)
	boxes := connectedComponents(equalized, threshold)
	boxes = filterBoxes(boxes)

	if len(boxes) < 2 {
		return "", false
	}

	sort.Slice(boxes, func(i, j int) bool { return boxes[i].Min.X < boxes[j].Min.X })

	assembled := ""
	for _, box := range boxes {
		padded := image.Rect(box.Min.X-2, box.Min.Y-2, box.Max.X+2, box.Max.Y+2).Intersect(crop.Bounds())
		if padded.Empty() {
			continue
		}
		boxCrop := imaging.Crop(crop, padded)

		prepped, err := preprocess.BoxedFieldPrep(boxCrop)
		if err != nil {
			continue
		}

		best, bestScore := "", -1.0
		for _, cfg := range ocr.BoxedFieldConfigSweep {
			res, err := engine.RecognizeBytes(prepped, cfg)
			if err != nil {
				continue
			}
			stripped := nonWord.ReplaceAllString(res.Text, "")
			if len(stripped) == 0 || len(stripped) > 3 {
				continue
			}
			score := boxedCharConfidence(stripped, fieldName)
			if score > bestScore {
				best, bestScore = stripped, score
			}
		}
		assembled += best
	}

	if len(assembled) < 3 {
		return "", false
	}
	return assembled, true
}

// boxedCharConfidence scores a single box's candidate string per §4.5b
// step 5: length weight, shape-match bonus, and a small bonus for
// crossed-out box markers (a lone "x"/"X" glyph some forms use to void a
// cell).
func boxedCharConfidence(s string, fieldName string) float64 {
	score := 10 * float64(len(s))
	if isAccountLike(fieldName) && isDigits(s) {
		score += 20
	}
	if isNameField(fieldName) && onlyLetters(s) {
		score += 20
	}
	if s == "x" || s == "X" {
		score += 10
	} else if containsRune(s, 'x') || containsRune(s, 'X') {
		score += 5
	}
	return score
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	g := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g.Set(x, y, img.At(x, y))
		}
	}
	return g
}

// localContrastEqualize is a simplified CLAHE-style equalization: it
// stretches contrast independently within fixed-size tiles, avoiding the
// global auto-contrast pass washing out low-contrast boxes near high-
// contrast ones.
func localContrastEqualize(gray *image.Gray) *image.Gray {
	const tile = 32
	bounds := gray.Bounds()
	out := image.NewGray(bounds)

	for ty := bounds.Min.Y; ty < bounds.Max.Y; ty += tile {
		for tx := bounds.Min.X; tx < bounds.Max.X; tx += tile {
			rect := image.Rect(tx, ty, min(tx+tile, bounds.Max.X), min(ty+tile, bounds.Max.Y))
			lo, hi := uint8(255), uint8(0)
			for y := rect.Min.Y; y < rect.Max.Y; y++ {
				for x := rect.Min.X; x < rect.Max.X; x++ {
					v := gray.GrayAt(x, y).Y
					if v < lo {
						lo = v
					}
					if v > hi {
						hi = v
					}
				}
			}
			if hi <= lo {
				for y := rect.Min.Y; y < rect.Max.Y; y++ {
					for x := rect.Min.X; x < rect.Max.X; x++ {
						out.SetGray(x, y, gray.GrayAt(x, y))
					}
				}
				continue
			}
			scale := 255.0 / float64(hi-lo)
			for y := rect.Min.Y; y < rect.Max.Y; y++ {
				for x := rect.Min.X; x < rect.Max.X; x++ {
					v := float64(gray.GrayAt(x, y).Y-lo) * scale
					if v > 255 {
						v = 255
					}
					out.SetGray(x, y, color.Gray{Y: uint8(v)})
				}
			}
		}
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
