/**
 * Field Parser (C4) — rule table.
 *
 * Each rule names a target field, a scope (line-local or whole-text), an
 * ordinal priority, and a compiled pattern. The matcher in parser.go walks
 * this table rather than a linear chain of conditionals, per §9's redesign
 * note ("regex soup" -> table-driven matcher).
 */

package parser

import "regexp"

// Field identifies which ExtractedFields slot a rule fills.
type Field int

const (
	FieldSurname Field = iota
	FieldFirstName
	FieldOtherNames
	FieldCorporate // fills Surname, sets IsCorporate
	FieldAccount
)

// Scope says whether a rule runs per-line (Pass 1) or against the whole text
// (Pass 2 fallback).
type Scope int

const (
	ScopeLine Scope = iota
	ScopeGlobal
)

// Rule is one named, ordered pattern in the table-driven matcher.
type Rule struct {
	Name     string
	Target   Field
	Scope    Scope
	Pattern  *regexp.Regexp
	Priority int

	// RequiresNoIndividualYet gates the corporate-entity rule: it only
	// fires while surname/first_name/other_names are all still empty (§4.4).
	RequiresNoIndividualYet bool
}

// denylist rejects OCR-artifact captures that happen to match a pattern's
// shape but are not real field values (§4.4).
var denylist = map[string]bool{
	"rr":          true,
	"te":          true,
	"nanny":       true,
	"application": true,
	"form":        true,
	"account":     true,
	"number":      true,
}

func mustCompile(p string) *regexp.Regexp {
	return regexp.MustCompile(p)
}

// Pass1Rules is the ordered, line-oriented rule table §4.4 describes.
// Priority order matches the listing order in the spec: surname variants,
// first-name variants, other-names variants, corporate entity, account
// variants.
var Pass1Rules = []Rule{
	// Surname
	{Name: "surname_individual", Target: FieldSurname, Scope: ScopeLine, Priority: 10,
		Pattern: mustCompile(`(?i)surname\s*\(\s*individual\s*\)\s*:\s*(.+)`)},
	{Name: "surname_numbered", Target: FieldSurname, Scope: ScopeLine, Priority: 11,
		Pattern: mustCompile(`(?i)\d+\s*\.\s*surname(?:\s*\(\s*individual\s*\))?\s*:\s*(.+)`)},
	{Name: "surname_csd_handwritten", Target: FieldSurname, Scope: ScopeLine, Priority: 12,
		Pattern: mustCompile(`(?i)sumame\s*/\s*company\s*name\s*:\s*(.+)`)},
	{Name: "surname_plain", Target: FieldSurname, Scope: ScopeLine, Priority: 13,
		Pattern: mustCompile(`(?i)surname\s*:\s*(.+)`)},

	// First name
	{Name: "first_name_label", Target: FieldFirstName, Scope: ScopeLine, Priority: 20,
		Pattern: mustCompile(`(?i)first\s*name\s*:\s*(.+)`)},
	{Name: "first_name_simple_field", Target: FieldFirstName, Scope: ScopeLine, Priority: 21,
		Pattern: mustCompile(`(?i)first_name\s*:\s*(.+)`)},

	// Other names
	{Name: "other_names_label", Target: FieldOtherNames, Scope: ScopeLine, Priority: 30,
		Pattern: mustCompile(`(?i)other\s*name\s*\(s\)\s*:\s*(.+)`)},
	{Name: "other_names_upper", Target: FieldOtherNames, Scope: ScopeLine, Priority: 31,
		Pattern: mustCompile(`(?i)other\s*names\s*:\s*(.+)`)},
	{Name: "other_names_simple_field", Target: FieldOtherNames, Scope: ScopeLine, Priority: 32,
		Pattern: mustCompile(`(?i)other_names\s*:\s*(.+)`)},

	// Corporate entity — only while no individual field has matched yet
	{Name: "corporate_entity", Target: FieldCorporate, Scope: ScopeLine, Priority: 40,
		Pattern: mustCompile(`(?i)name\s*of\s*account\s*holder\s*\(\s*corporate\s*entities\s*\)\s*:\s*(.+)`),
		RequiresNoIndividualYet: true},

	// Account
	{Name: "csd_number", Target: FieldAccount, Scope: ScopeLine, Priority: 50,
		Pattern: mustCompile(`(?i)csd\s*number\s*:\s*(.+)`)},
	{Name: "account_no", Target: FieldAccount, Scope: ScopeLine, Priority: 51,
		Pattern: mustCompile(`(?i)account\s*no\s*:\s*(.+)`)},
	{Name: "account_number", Target: FieldAccount, Scope: ScopeLine, Priority: 52,
		Pattern: mustCompile(`(?i)account\s*number\s*:\s*(.+)`)},
	{Name: "id_number_numbered", Target: FieldAccount, Scope: ScopeLine, Priority: 53,
		Pattern: mustCompile(`(?i)\d+\s*\.\s*id\s*number\s*:\s*(.+)`)},
	{Name: "client_csd_securities_account", Target: FieldAccount, Scope: ScopeLine, Priority: 54,
		Pattern: mustCompile(`(?i)client\s*csd\s*securities\s*account\s*:\s*(.+)`)},
	{Name: "account_simple_field", Target: FieldAccount, Scope: ScopeLine, Priority: 55,
		Pattern: mustCompile(`(?i)(?:id_number|account_number|bank_account)\s*:\s*(.+)`)},
	{Name: "account_handwritten_digit_run", Target: FieldAccount, Scope: ScopeLine, Priority: 56,
		Pattern: mustCompile(`(?i)number\b[^0-9]{0,20}([0-9][0-9A-Za-z. ]{2,})`)},
}

// Pass2Rules mirror the name-field rules from Pass1Rules but run against
// the whole text (not line-scoped), accepting the first match >= 2 chars
// (§4.4 Pass 2). Only surname/first_name/other_names participate, per the
// spec's literal wording.
var Pass2Rules = []Rule{
	{Name: "surname_global", Target: FieldSurname, Scope: ScopeGlobal, Priority: 10,
		Pattern: mustCompile(`(?i)surname(?:\s*\(\s*individual\s*\))?\s*:\s*(.+)`)},
	{Name: "first_name_global", Target: FieldFirstName, Scope: ScopeGlobal, Priority: 20,
		Pattern: mustCompile(`(?i)first\s*name\s*:\s*(.+)`)},
	{Name: "other_names_global", Target: FieldOtherNames, Scope: ScopeGlobal, Priority: 30,
		Pattern: mustCompile(`(?i)other\s*names?(?:\s*\(s\))?\s*:\s*(.+)`)},
}

// NameFallbackRule is the "NAME:" simple fallback (§9 open question,
// resolved as fallback-only, never additive): it only runs when surname,
// first_name, and other_names are ALL still empty after Pass 1 and Pass 2.
var NameFallbackRule = Rule{
	Name: "name_fallback", Target: FieldSurname, Scope: ScopeGlobal, Priority: 99,
	Pattern: mustCompile(`(?i)\bname\s*:\s*(.+)`),
}
