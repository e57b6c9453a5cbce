/**
 * Hybrid Extractor (C5) — PDF-only augmentation of the standard extractor.
 *
 * Produces a set of text variants concatenated into the final text corpus
 * before parsing, giving the field parser multiple chances (§4.5).
 */

package hybrid

import (
	"bytes"
	"image"
	_ "image/png"
	"strings"

	"github.com/adverant/intake-router/internal/ocr"
	"github.com/adverant/intake-router/internal/preprocess"
)

// labelSpec is one known printed label the label-anchoring step (§4.5 step
// C) scans word-level OCR output for. Words is the label split into its
// constituent tokens so multi-word labels can be matched as a sliding
// window over consecutive OCR words.
type labelSpec struct {
	words     []string
	fieldName string
}

var knownLabels = []labelSpec{
	{[]string{"surname"}, "surname"},
	{[]string{"other", "names"}, "other_names"},
	{[]string{"other", "name"}, "other_names"},
	{[]string{"first", "name"}, "first_name"},
	{[]string{"id", "number"}, "id_number"},
	{[]string{"account", "number"}, "account_number"},
	{[]string{"bank", "account"}, "bank_account"},
}

// Extract augments the standard extractor for PDF inputs. It never
// replaces the standard OCR pass — it returns additional text to append to
// the corpus the field parser runs against.
func Extract(pdfPath string, engine *ocr.Engine, rasterizer *ocr.Rasterizer) (string, error) {
	var corpus strings.Builder

	pageBytes, err := rasterizer.RasterizeFirstPage(pdfPath)
	if err != nil {
		return "", err
	}

	// Step A: baseline single-page OCR at 300 DPI (the rasterizer's
	// configured DPI already defaults to 300 per §4.5).
	baseline, baselineErr := engine.RecognizeBytes(pageBytes, ocr.ConfigDefault)
	if baselineErr == nil && baseline.Text != "" {
		corpus.WriteString(baseline.Text)
		corpus.WriteString("\n")
	}

	img, _, decodeErr := image.Decode(bytes.NewReader(pageBytes))
	if decodeErr != nil {
		// Nothing further to do without a decoded image; steps B and C both
		// need pixel data.
		return corpus.String(), nil
	}

	// Step B: the three HybridConfigSweep engine configs on the grayscale
	// first page (no further preprocessing variants).
	gray := preprocess.GrayscaleFirstPage(img)
	if grayPNG, err := preprocess.EncodePNG(gray); err == nil {
		for _, cfg := range ocr.HybridConfigSweep {
			res, err := engine.RecognizeBytes(grayPNG, cfg)
			if err == nil && res.Text != "" {
				corpus.WriteString(res.Text)
				corpus.WriteString("\n")
			}
		}
	}

	// Step C: label-anchored extraction over the baseline's word boxes.
	if baselineErr == nil {
		for _, hit := range findLabelHits(baseline.Words) {
			for _, crop := range candidateCrops(img, hit) {
				value, ok := ExtractHandwrittenField(crop, hit.fieldName, engine)
				if !ok {
					continue
				}
				corpus.WriteString(hit.label())
				corpus.WriteString(": ")
				corpus.WriteString(value)
				corpus.WriteString("\n")
			}
		}
	}

	return corpus.String(), nil
}

type labelHit struct {
	fieldName string
	words     []string
	box       ocr.BoundingBox
}

func (h labelHit) label() string {
	return strings.Join(h.words, " ")
}

// findLabelHits scans consecutive OCR words for a 1- or 2-word match
// against any known label, case-insensitively.
func findLabelHits(words []ocr.Word) []labelHit {
	var hits []labelHit
	for i := range words {
		for _, lbl := range knownLabels {
			if i+len(lbl.words) > len(words) {
				continue
			}
			if !matchesWords(words[i:i+len(lbl.words)], lbl.words) {
				continue
			}
			hits = append(hits, labelHit{
				fieldName: lbl.fieldName,
				words:     lbl.words,
				box:       unionBoxes(words[i : i+len(lbl.words)]),
			})
		}
	}
	return hits
}

func matchesWords(tokens []ocr.Word, want []string) bool {
	for i, w := range want {
		if strings.ToLower(strings.TrimSpace(tokens[i].Text)) != w {
			return false
		}
	}
	return true
}

func unionBoxes(words []ocr.Word) ocr.BoundingBox {
	b := words[0].BoundingBox
	minX, minY := b.X, b.Y
	maxX, maxY := b.X+b.Width, b.Y+b.Height
	for _, w := range words[1:] {
		wb := w.BoundingBox
		if wb.X < minX {
			minX = wb.X
		}
		if wb.Y < minY {
			minY = wb.Y
		}
		if wb.X+wb.Width > maxX {
			maxX = wb.X + wb.Width
		}
		if wb.Y+wb.Height > maxY {
			maxY = wb.Y + wb.Height
		}
	}
	return ocr.BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// candidateCrops computes the two crops §4.5 step C names: immediately to
// the right of the label, and immediately below it.
func candidateCrops(page image.Image, hit labelHit) []image.Image {
	right := hit.box.Right(300)
	below := hit.box.Below(400, 50)

	var out []image.Image
	if c := cropClamped(page, right); c != nil {
		out = append(out, c)
	}
	if c := cropClamped(page, below); c != nil {
		out = append(out, c)
	}
	return out
}

func cropClamped(img image.Image, box ocr.BoundingBox) image.Image {
	bounds := img.Bounds()
	rect := image.Rect(box.X, box.Y, box.X+box.Width, box.Y+box.Height).Intersect(bounds)
	if rect.Empty() {
		return nil
	}
	return cropRect(img, rect)
}
