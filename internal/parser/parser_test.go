package parser

import "testing"

func strPtrEq(t *testing.T, name string, got *string, want string) {
	t.Helper()
	if got == nil {
		t.Errorf("%s: got nil, want %q", name, want)
		return
	}
	if *got != want {
		t.Errorf("%s: got %q, want %q", name, *got, want)
	}
}

func TestParse_S1_FullIndexPDF(t *testing.T) {
	text := "SURNAME: SMITH\nFirst Name: JOHN\nOther Names: K\nAccount Number: 34007802837"
	fields := Parse(text)

	strPtrEq(t, "surname", fields.Surname, "SMITH")
	strPtrEq(t, "first_name", fields.FirstName, "JOHN")
	strPtrEq(t, "other_names", fields.OtherNames, "K")
	strPtrEq(t, "account", fields.Account, "34007802837")

	name := fields.Name()
	strPtrEq(t, "derived name", name, "SMITH JOHN K")
}

func TestParse_S2_PartialNameOnly(t *testing.T) {
	fields := Parse("surname (individual): DOE")
	strPtrEq(t, "surname", fields.Surname, "DOE")
	if fields.Account != nil {
		t.Errorf("expected no account, got %q", *fields.Account)
	}
}

func TestParse_S3_NoExtraction(t *testing.T) {
	fields := Parse("lorem ipsum")
	if fields.Surname != nil || fields.FirstName != nil || fields.OtherNames != nil || fields.Account != nil {
		t.Errorf("expected all fields empty, got %+v", fields)
	}
}

func TestParse_S6_CorporateEntity(t *testing.T) {
	fields := Parse("Name of Account Holder (corporate entities): ACME TRADING LTD")
	strPtrEq(t, "surname/corporate", fields.Surname, "ACME TRADING LTD")
	if !fields.IsCorporate {
		t.Errorf("expected IsCorporate true")
	}
	if fields.FirstName != nil {
		t.Errorf("expected first_name nil, got %q", *fields.FirstName)
	}
	if fields.OtherNames != nil {
		t.Errorf("expected other_names nil, got %q", *fields.OtherNames)
	}
}

func TestParse_CorporateDoesNotFireWhenIndividualPresent(t *testing.T) {
	text := "Surname: SMITH\nName of Account Holder (corporate entities): ACME TRADING LTD"
	fields := Parse(text)
	strPtrEq(t, "surname", fields.Surname, "SMITH")
	if fields.IsCorporate {
		t.Errorf("corporate branch should not fire once an individual field is present")
	}
}

// Property 4 (preamble part): with every label on its own line, adding a
// preamble before the labelled lines does not change extracted values.
func TestParse_OrderIndependenceWithPreamble(t *testing.T) {
	text := "Surname: SMITH\nFirst Name: JOHN"
	withPreamble := "SOME SCANNER HEADER\n\n" + text

	base := Parse(text)
	preambled := Parse(withPreamble)

	strPtrEq(t, "base surname", base.Surname, "SMITH")
	strPtrEq(t, "preambled surname", preambled.Surname, "SMITH")
	strPtrEq(t, "base first_name", base.FirstName, "JOHN")
	strPtrEq(t, "preambled first_name", preambled.FirstName, "JOHN")
}

func TestParse_NameFallbackOnlyWhenNoIndividualField(t *testing.T) {
	fields := Parse("Name: JANE ROE")
	strPtrEq(t, "fallback surname", fields.Surname, "JANE ROE")
}

func TestParse_NameFallbackNotAdditive(t *testing.T) {
	text := "Surname: SMITH\nName: JANE ROE"
	fields := Parse(text)
	// The fallback must not fire (and so must not overwrite) once any
	// individual name field already matched.
	strPtrEq(t, "surname", fields.Surname, "SMITH")
}

func TestParse_DenylistRejectsOCRArtifacts(t *testing.T) {
	fields := Parse("Account Number: number")
	if fields.Account != nil {
		t.Errorf("expected denylisted capture to be rejected, got %q", *fields.Account)
	}
}

func TestParse_AccountStripsInternalWhitespace(t *testing.T) {
	fields := Parse("Account Number: 3400 7802 837")
	strPtrEq(t, "account", fields.Account, "34007802837")
}

func TestParse_TrailingFillerStripped(t *testing.T) {
	fields := Parse("Surname: SMITH___")
	strPtrEq(t, "surname", fields.Surname, "SMITH")
}
