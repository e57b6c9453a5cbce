package model

import "testing"

func sp(s string) *string { return &s }

func TestDecide_Monotonicity(t *testing.T) {
	cases := []struct {
		name   string
		fields ExtractedFields
		want   RoutingDecision
	}{
		{"both", ExtractedFields{Surname: sp("SMITH"), Account: sp("123")}, DecisionFull},
		{"name only", ExtractedFields{Surname: sp("SMITH")}, DecisionPartial},
		{"account only", ExtractedFields{Account: sp("123")}, DecisionPartial},
		{"neither", ExtractedFields{}, DecisionFailed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Decide(c.fields); got != c.want {
				t.Errorf("Decide(%+v) = %v, want %v", c.fields, got, c.want)
			}
		})
	}
}

func TestBucketFor(t *testing.T) {
	cases := map[RoutingDecision]DestinationBucket{
		DecisionFull:    BucketFullyIndexed,
		DecisionPartial: BucketPartiallyIndexed,
		DecisionFailed:  BucketFailed,
	}
	for decision, want := range cases {
		if got := BucketFor(decision); got != want {
			t.Errorf("BucketFor(%v) = %v, want %v", decision, got, want)
		}
	}
}

func TestName_OrderAndSkipsEmpty(t *testing.T) {
	f := ExtractedFields{Surname: sp("SMITH"), OtherNames: sp("K")}
	got := f.Name()
	want := "SMITH K"
	if got == nil || *got != want {
		t.Errorf("Name() = %v, want %q", got, want)
	}
}

func TestName_NilWhenNoIndividualField(t *testing.T) {
	f := ExtractedFields{Account: sp("123")}
	if f.Name() != nil {
		t.Errorf("expected nil Name(), got %q", *f.Name())
	}
}

func TestHasAccount(t *testing.T) {
	if (ExtractedFields{}).HasAccount() {
		t.Errorf("expected HasAccount false for empty fields")
	}
	if (ExtractedFields{Account: sp("")}).HasAccount() {
		t.Errorf("expected HasAccount false for empty-string account")
	}
	if !(ExtractedFields{Account: sp("123")}).HasAccount() {
		t.Errorf("expected HasAccount true")
	}
}
