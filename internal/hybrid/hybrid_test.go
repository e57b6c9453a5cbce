package hybrid

import (
	"image"
	"testing"

	"github.com/adverant/intake-router/internal/ocr"
)

func word(text string, x, y, w, h int) ocr.Word {
	return ocr.Word{Text: text, BoundingBox: ocr.BoundingBox{X: x, Y: y, Width: w, Height: h}}
}

func TestFindLabelHits_MatchesMultiWordLabel(t *testing.T) {
	words := []ocr.Word{
		word("Account", 0, 0, 50, 10),
		word("Number", 55, 0, 50, 10),
		word("12345", 0, 20, 50, 10),
	}
	hits := findLabelHits(words)
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1: %+v", len(hits), hits)
	}
	if hits[0].fieldName != "account_number" {
		t.Errorf("fieldName = %q, want account_number", hits[0].fieldName)
	}
}

func TestFindLabelHits_CaseInsensitive(t *testing.T) {
	words := []ocr.Word{word("SURNAME", 0, 0, 50, 10)}
	hits := findLabelHits(words)
	if len(hits) != 1 || hits[0].fieldName != "surname" {
		t.Fatalf("got %+v, want one surname hit", hits)
	}
}

func TestUnionBoxes_SpansAllWords(t *testing.T) {
	words := []ocr.Word{word("a", 10, 10, 20, 5), word("b", 40, 8, 10, 10)}
	box := unionBoxes(words)
	if box.X != 10 || box.Y != 8 {
		t.Errorf("origin = (%d,%d), want (10,8)", box.X, box.Y)
	}
	if box.X+box.Width != 50 || box.Y+box.Height != 18 {
		t.Errorf("extent = (%d,%d), want (50,18)", box.X+box.Width, box.Y+box.Height)
	}
}

func TestOtsuThreshold_SeparatesBimodalHistogram(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			v := uint8(20)
			if x >= 10 {
				v = 220
			}
			gray.Pix[gray.PixOffset(x, y)] = v
		}
	}

	threshold := otsuThreshold(gray)
	if threshold < 50 || threshold > 200 {
		t.Errorf("threshold = %d, want a value separating 20 and 220", threshold)
	}
}

func TestConnectedComponents_FindsDarkBlobs(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range gray.Pix {
		gray.Pix[i] = 255
	}
	for y := 2; y < 5; y++ {
		for x := 2; x < 5; x++ {
			gray.Pix[gray.PixOffset(x, y)] = 0
		}
	}

	rects := connectedComponents(gray, 128)
	if len(rects) != 1 {
		t.Fatalf("got %d components, want 1: %+v", len(rects), rects)
	}
	r := rects[0]
	if r.Min.X != 2 || r.Min.Y != 2 || r.Max.X != 5 || r.Max.Y != 5 {
		t.Errorf("rect = %v, want (2,2)-(5,5)", r)
	}
}

func TestFilterBoxes_KeepsOnlyPlausibleSizes(t *testing.T) {
	rects := []image.Rectangle{
		image.Rect(0, 0, 20, 20),  // plausible
		image.Rect(0, 0, 5, 5),    // too small
		image.Rect(0, 0, 200, 20), // too wide / aspect out of range
	}
	out := filterBoxes(rects)
	if len(out) != 1 {
		t.Fatalf("got %d boxes, want 1: %+v", len(out), out)
	}
}
