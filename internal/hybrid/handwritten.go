/**
 * Handwritten field extractor (§4.5a).
 *
 * Given a cropped region and a field name, tries the boxed-field reader
 * first for account-like fields, then falls back to a scored sweep of
 * preprocessing variants x OCR configs.
 */

package hybrid

import (
	"image"
	"regexp"
	"strings"

	"github.com/adverant/intake-router/internal/ocr"
	"github.com/adverant/intake-router/internal/preprocess"
)

var nonWord = regexp.MustCompile(`[^A-Za-z0-9]`)

// ExtractHandwrittenField implements §4.5a: boxed-reader-first for
// account-like fields large enough to contain individual boxes, else a
// scored five-variant x eight-config sweep.
func ExtractHandwrittenField(crop image.Image, fieldName string, engine *ocr.Engine) (string, bool) {
	if isAccountLike(fieldName) {
		bounds := crop.Bounds()
		if bounds.Dx() >= 20 && bounds.Dy() >= 10 {
			if value, ok := ReadBoxedField(crop, fieldName, engine); ok && len(value) >= 4 {
				return value, true
			}
		}
	}

	variants, err := preprocess.HandwrittenFieldVariants(crop)
	if err != nil {
		return "", false
	}

	type candidate struct {
		text  string
		score float64
	}

	var best candidate
	haveBest := false

	for _, variant := range variants {
		for _, cfg := range ocr.HandwrittenFieldConfigSweep {
			res, err := engine.RecognizeBytes(variant.PNG, cfg)
			if err != nil {
				continue
			}
			cleaned := strings.TrimSpace(res.Text)
			if cleaned == "" {
				continue
			}
			score := localConfidence(cleaned, fieldName)
			if !haveBest || score > best.score {
				best = candidate{text: cleaned, score: score}
				haveBest = true
			}
		}
	}

	if !haveBest || len(best.text) < 2 {
		return "", false
	}
	return best.text, true
}

func isAccountLike(fieldName string) bool {
	f := strings.ToLower(fieldName)
	return strings.Contains(f, "account") || strings.Contains(f, "id") || strings.Contains(f, "number")
}

func isNameField(fieldName string) bool {
	f := strings.ToLower(fieldName)
	return strings.Contains(f, "name") || strings.Contains(f, "surname")
}

// localConfidence scores a candidate (result, variant, config) triple per
// §4.5a's lightweight local heuristic.
func localConfidence(text, fieldName string) float64 {
	score := float64(len(text))
	if score > 20 {
		score = 20
	}

	hasAlnum := false
	hasDigit := false
	special := 0
	spaceRun := 0
	maxSpaceRun := 0
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			hasAlnum = true
			hasDigit = true
			spaceRun = 0
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasAlnum = true
			spaceRun = 0
		case r == ' ':
			spaceRun++
			if spaceRun > maxSpaceRun {
				maxSpaceRun = spaceRun
			}
		default:
			special++
			spaceRun = 0
		}
	}

	if hasAlnum {
		score += 10
	}
	score -= 2 * float64(special)
	if maxSpaceRun >= 3 {
		score -= 5
	}

	shapeOK := false
	if isAccountLike(fieldName) && hasDigit {
		shapeOK = true
	}
	if isNameField(fieldName) && onlyLetters(text) {
		shapeOK = true
	}
	if shapeOK {
		score += 15
	}

	return score
}

func onlyLetters(text string) bool {
	for _, r := range text {
		if r == ' ' {
			continue
		}
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}
