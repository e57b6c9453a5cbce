/**
 * Field Parser (C4) — two-pass matcher.
 *
 * Pass 1 walks each line of the OCR text against the ordered rule table,
 * filling one field per line from the first unfilled-target rule that
 * matches. Pass 2 runs the name-field rules again against the whole text
 * for any field Pass 1 left empty. A last "NAME:" fallback only fires when
 * no individual name field has been found at all (§9 open question,
 * resolved as fallback-only, never additive).
 */

package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/adverant/intake-router/internal/model"
)

var (
	trailingFiller = regexp.MustCompile(`[-_]+$`)
	collapseWS     = regexp.MustCompile(`\s+`)
	accountShape   = regexp.MustCompile(`^[A-Za-z0-9.\-]+$`)
	onlyNonLetters = regexp.MustCompile(`^[^A-Za-z]+$`)
)

// Parse runs the two-pass matcher over a single OCR text corpus and returns
// the fields it could extract.
func Parse(text string) model.ExtractedFields {
	var fields model.ExtractedFields

	pass1 := sortedRules(Pass1Rules)
	for _, line := range strings.Split(text, "\n") {
		applyLine(&fields, line, pass1)
	}

	pass2 := sortedRules(Pass2Rules)
	for _, rule := range pass2 {
		if filled(&fields, rule.Target) {
			continue
		}
		applyGlobal(&fields, text, rule, 2)
	}

	if fields.Surname == nil && fields.FirstName == nil && fields.OtherNames == nil {
		applyGlobal(&fields, text, NameFallbackRule, 2)
	}

	return fields
}

func applyLine(fields *model.ExtractedFields, line string, rules []Rule) {
	for _, rule := range rules {
		if filled(fields, rule.Target) {
			continue
		}
		if rule.RequiresNoIndividualYet && hasAnyIndividual(fields) {
			continue
		}
		m := rule.Pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		// Pass 1 accepts any non-empty cleaned capture; the >=2-char
		// threshold in §4.4 applies only to Pass 2's global fallback.
		cleaned, ok := clean(m[len(m)-1], rule.Target == FieldAccount, 1)
		if !ok {
			continue
		}
		setField(fields, rule.Target, cleaned)
		return
	}
}

func applyGlobal(fields *model.ExtractedFields, text string, rule Rule, minLen int) {
	m := rule.Pattern.FindStringSubmatch(text)
	if m == nil {
		return
	}
	cleaned, ok := clean(m[len(m)-1], rule.Target == FieldAccount, minLen)
	if !ok {
		return
	}
	setField(fields, rule.Target, cleaned)
}

func sortedRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

func filled(f *model.ExtractedFields, target Field) bool {
	switch target {
	case FieldSurname, FieldCorporate:
		return f.Surname != nil
	case FieldFirstName:
		return f.FirstName != nil
	case FieldOtherNames:
		return f.OtherNames != nil
	case FieldAccount:
		return f.Account != nil
	}
	return false
}

func hasAnyIndividual(f *model.ExtractedFields) bool {
	return f.Surname != nil || f.FirstName != nil || f.OtherNames != nil
}

func setField(f *model.ExtractedFields, target Field, value string) {
	v := value
	switch target {
	case FieldSurname:
		f.Surname = &v
	case FieldCorporate:
		f.Surname = &v
		f.IsCorporate = true
	case FieldFirstName:
		f.FirstName = &v
	case FieldOtherNames:
		f.OtherNames = &v
	case FieldAccount:
		f.Account = &v
	}
}

// clean implements §4.4's cleaning rules: trim, collapse whitespace, strip
// trailing underscore/dash fillers, then (for account captures) strip
// internal whitespace; reject empty, too-short, denylisted, or
// wrong-shaped captures.
func clean(raw string, isAccount bool, minLen int) (string, bool) {
	s := strings.TrimSpace(raw)
	s = collapseWS.ReplaceAllString(s, " ")
	s = trailingFiller.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if isAccount {
		s = strings.ReplaceAll(s, " ", "")
	}

	if s == "" || len(s) < minLen {
		return "", false
	}

	if denylist[strings.ToLower(s)] {
		return "", false
	}

	if isAccount {
		if !accountShape.MatchString(s) {
			return "", false
		}
	} else if onlyNonLetters.MatchString(s) {
		return "", false
	}

	return s, true
}
