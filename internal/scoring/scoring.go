/**
 * Text-Quality Scorer (C3)
 *
 * A pure function rating an OCR candidate on completeness of the target
 * fields and noise level, so the multi-attempt OCR loop can pick a
 * winner deterministically (§4.3).
 */

package scoring

import (
	"regexp"
	"strings"
)

var (
	surnameLabel    = regexp.MustCompile(`(?i)surname`)
	firstNameLabel  = regexp.MustCompile(`(?i)first\s*name`)
	otherNamesLabel = regexp.MustCompile(`(?i)other\s*names?`)
	accountKeyword  = regexp.MustCompile(`(?i)account|number|csd`)
	letterRun       = regexp.MustCompile(`[A-Za-z]{3,}`)
	digitRun        = regexp.MustCompile(`\d{3,}`)
	punctRune       = regexp.MustCompile(`[.,;:'"()/\\-]`)
)

// Score rates a candidate OCR text per §4.3's additive rules.
func Score(text string) float64 {
	if text == "" {
		return 0
	}

	var score float64

	lengthTerm := float64(len(text)) / 50
	if lengthTerm > 2 {
		lengthTerm = 2
	}
	score += lengthTerm

	labelsPresent := 0
	if surnameLabel.MatchString(text) {
		score += 5
		labelsPresent++
	}
	if firstNameLabel.MatchString(text) {
		score += 3
		labelsPresent++
	}
	if otherNamesLabel.MatchString(text) {
		score += 4
		labelsPresent++
	}
	if labelsPresent >= 2 {
		score += 10
	}
	if labelsPresent == 3 {
		score += 15
	}

	if accountKeyword.MatchString(text) {
		score += 3
	}

	if letterRun.MatchString(text) {
		score += 1
	}
	if digitRun.MatchString(text) {
		score += 1
	}

	score -= 2 * noiseFraction(text)

	return score
}

// noiseFraction is the fraction of characters that are neither alphanumeric,
// whitespace, nor ordinary punctuation — §4.3's noise penalty term.
func noiseFraction(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	noisy := 0
	total := 0
	for _, r := range text {
		total++
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			continue
		case r == ' ', r == '\t', r == '\n', r == '\r':
			continue
		case punctRune.MatchString(string(r)):
			continue
		default:
			noisy++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(noisy) / float64(total)
}

// Classify is a logging-only helper distinguishing likely handwritten from
// likely printed text by confidence thresholds sourced from
// original_source/ocr/handwriting_config.py's HANDWRITING_DETECTION block.
// It never influences the routing decision (§9).
func Classify(confidence float64) string {
	switch {
	case confidence < 0.5:
		return "handwriting"
	case confidence >= 0.8:
		return "print"
	default:
		return "mixed"
	}
}

// Best picks the highest-scoring candidate from an ordered list of texts,
// breaking ties by insertion order (the earliest-inserted attempt wins),
// per §4.3's determinism requirement.
func Best(texts []string) (text string, score float64, index int) {
	bestIdx := -1
	bestScore := -1.0
	for i, t := range texts {
		s := Score(t)
		if bestIdx == -1 || s > bestScore {
			bestScore = s
			bestIdx = i
		}
	}
	if bestIdx == -1 {
		return "", 0, -1
	}
	return texts[bestIdx], bestScore, bestIdx
}

// TrimmedWordCount is a small helper used by callers that want a quick noise
// sanity check outside the scoring formula itself.
func TrimmedWordCount(text string) int {
	return len(strings.Fields(text))
}
