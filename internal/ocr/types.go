/**
 * OCR Types - shared data structures for OCR operations
 */

package ocr

import "time"

// Result is the outcome of OCRing a single page or image.
type Result struct {
	Text       string
	Confidence float64
	Words      []Word
	Duration   time.Duration
}

// Word is a single recognized token with its bounding box, used by the
// hybrid extractor's label-anchoring step (§4.5).
type Word struct {
	Text        string
	Confidence  float64
	BoundingBox BoundingBox
}

// BoundingBox is an axis-aligned pixel rectangle.
type BoundingBox struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Right returns the rectangle immediately to the right of this box, per
// §4.5 step C's first candidate crop: width capped, height = label height
// + 30px, shifted up 5px to catch ascenders.
func (b BoundingBox) Right(maxWidth int) BoundingBox {
	return BoundingBox{
		X:      b.X + b.Width,
		Y:      b.Y - 5,
		Width:  maxWidth,
		Height: b.Height + 30,
	}
}

// Below returns the rectangle immediately below this box, per §4.5 step C's
// second candidate crop.
func (b BoundingBox) Below(maxWidth, maxHeight int) BoundingBox {
	return BoundingBox{
		X:      b.X,
		Y:      b.Y + b.Height,
		Width:  maxWidth,
		Height: maxHeight,
	}
}
