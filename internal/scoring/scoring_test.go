package scoring

import "testing"

func TestScore_Empty(t *testing.T) {
	if got := Score(""); got != 0 {
		t.Errorf("Score(\"\") = %v, want 0", got)
	}
}

func TestScore_LabelsPresentBonus(t *testing.T) {
	withAllLabels := "Surname: SMITH\nFirst Name: JOHN\nOther Names: K"
	withOneLabel := "Surname: SMITH"

	if Score(withAllLabels) <= Score(withOneLabel) {
		t.Errorf("text with all three labels should score higher than text with one")
	}
}

func TestScore_NoisePenalizesLowerScore(t *testing.T) {
	clean := "Surname: SMITH Account Number: 12345"
	noisy := "S%u^r&n*a(m)e: S#M@I!T~H Acc`ount N|umber: 1{2}3[4]5"

	if Score(noisy) >= Score(clean) {
		t.Errorf("noisy text should score lower than clean text: noisy=%v clean=%v", Score(noisy), Score(clean))
	}
}

func TestBest_PicksHighestScore(t *testing.T) {
	texts := []string{"lorem ipsum", "Surname: SMITH\nFirst Name: JOHN\nOther Names: K\nAccount Number: 12345"}
	best, _, idx := Best(texts)
	if idx != 1 {
		t.Errorf("expected index 1 to win, got %d (text=%q)", idx, best)
	}
}

func TestBest_TiesBreakByInsertionOrder(t *testing.T) {
	texts := []string{"lorem ipsum", "lorem ipsum"}
	_, _, idx := Best(texts)
	if idx != 0 {
		t.Errorf("expected earliest candidate to win a tie, got index %d", idx)
	}
}

func TestBest_EmptyInput(t *testing.T) {
	_, _, idx := Best(nil)
	if idx != -1 {
		t.Errorf("expected -1 for empty input, got %d", idx)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		confidence float64
		want       string
	}{
		{0.1, "handwriting"},
		{0.49, "handwriting"},
		{0.5, "mixed"},
		{0.79, "mixed"},
		{0.8, "print"},
		{0.99, "print"},
	}
	for _, c := range cases {
		if got := Classify(c.confidence); got != c.want {
			t.Errorf("Classify(%v) = %q, want %q", c.confidence, got, c.want)
		}
	}
}
