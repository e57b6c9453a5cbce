package preprocess

import (
	"image"
	"image/color"
	"testing"
)

func sampleImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			v := uint8((x + y) * 6)
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestStandard_ProducesFiveVariants(t *testing.T) {
	variants, err := Standard(sampleImage())
	if err != nil {
		t.Fatalf("Standard: %v", err)
	}
	if len(variants) != 5 {
		t.Fatalf("got %d variants, want 5", len(variants))
	}
	names := map[string]bool{}
	for _, v := range variants {
		if len(v.PNG) == 0 {
			t.Errorf("variant %q has empty PNG", v.Name)
		}
		names[v.Name] = true
	}
	for _, want := range []string{"grayscale", "grayscale_contrast", "auto_contrast", "sharpened_high_contrast", "inverted"} {
		if !names[want] {
			t.Errorf("missing variant %q", want)
		}
	}
}

func TestMild_ProducesOneVariant(t *testing.T) {
	v, err := Mild(sampleImage())
	if err != nil {
		t.Fatalf("Mild: %v", err)
	}
	if v.Name != "mild" || len(v.PNG) == 0 {
		t.Errorf("unexpected mild variant: %+v", v)
	}
}

func TestHandwrittenFieldVariants_ProducesFiveVariants(t *testing.T) {
	variants, err := HandwrittenFieldVariants(sampleImage())
	if err != nil {
		t.Fatalf("HandwrittenFieldVariants: %v", err)
	}
	if len(variants) != 5 {
		t.Fatalf("got %d variants, want 5", len(variants))
	}
}

func TestBoxedFieldPrep_ProducesPNG(t *testing.T) {
	data, err := BoxedFieldPrep(sampleImage())
	if err != nil {
		t.Fatalf("BoxedFieldPrep: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty PNG output")
	}
}
