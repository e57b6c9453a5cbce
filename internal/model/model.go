// Package model holds the data types shared across the ingest-and-routing
// pipeline: the file observed by the watcher, the fields extracted from it,
// the routing decision derived from those fields, and the event emitted once
// a terminal decision is reached.
package model

import "time"

// IntakeFile is a file observed in the intake directory.
type IntakeFile struct {
	Path         string
	Extension    string // one of "pdf", "png", "jpg", "jpeg" (lowercase, no dot)
	Size         int64
	ModifiedTime time.Time
}

// IsImage reports whether the file's extension is one of the bitmap formats.
func (f IntakeFile) IsImage() bool {
	switch f.Extension {
	case "png", "jpg", "jpeg":
		return true
	default:
		return false
	}
}

// OcrAttempt is one (preprocessing variant, engine config, raw text, quality
// score) tuple produced while extracting a single file. Transient: it lives
// only for the duration of that file's extraction.
type OcrAttempt struct {
	Variant string // preprocessor variant name, e.g. "grayscale", "inverted"
	Config  string // engine config label, e.g. "oem1-psm6"
	Text    string
	Score   float64
	Seq     int // insertion order, used to break score ties deterministically
}

// ExtractedFields holds the surname/first-name/other-names/account fields
// the parser pulled out of an OCR text corpus.
type ExtractedFields struct {
	Surname     *string
	FirstName   *string
	OtherNames  *string
	Account     *string
	IsCorporate bool // true when the corporate-entity branch (§4.4) populated Surname
}

// Name derives the space-joined name per §3: surname, first_name,
// other_names in that fixed order, skipping any that are absent. Returns
// nil if none of the three is present. In the corporate-entity case Surname
// alone holds the corporate string, so that string is the name returned.
func (f ExtractedFields) Name() *string {
	parts := make([]string, 0, 3)
	for _, p := range []*string{f.Surname, f.FirstName, f.OtherNames} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	joined := joinSpace(parts)
	return &joined
}

func joinSpace(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += " " + p
	}
	return out
}

// HasName reports whether a name can be derived from the extracted fields.
func (f ExtractedFields) HasName() bool {
	return f.Name() != nil
}

// HasAccount reports whether an account/ID was extracted.
func (f ExtractedFields) HasAccount() bool {
	return f.Account != nil && *f.Account != ""
}

// RoutingDecision is the terminal classification for one file.
type RoutingDecision string

const (
	DecisionFull    RoutingDecision = "full"
	DecisionPartial RoutingDecision = "partial"
	DecisionFailed  RoutingDecision = "failed"
)

// Decide implements the decision-monotonicity rule (§3/§8.3): both fields
// present -> Full, exactly one -> Partial, neither -> Failed.
func Decide(f ExtractedFields) RoutingDecision {
	switch {
	case f.HasName() && f.HasAccount():
		return DecisionFull
	case f.HasName() || f.HasAccount():
		return DecisionPartial
	default:
		return DecisionFailed
	}
}

// DestinationBucket is one of the three output directories.
type DestinationBucket string

const (
	BucketFullyIndexed     DestinationBucket = "fully_indexed"
	BucketPartiallyIndexed DestinationBucket = "partially_indexed"
	BucketFailed           DestinationBucket = "failed"
)

// BucketFor maps a routing decision to its destination bucket.
func BucketFor(d RoutingDecision) DestinationBucket {
	switch d {
	case DecisionFull:
		return BucketFullyIndexed
	case DecisionPartial:
		return BucketPartiallyIndexed
	default:
		return BucketFailed
	}
}

// ProcessingEvent is emitted exactly once per terminal outcome per file.
type ProcessingEvent struct {
	OriginalFilename string     `json:"original_filename"`
	FinalFilename    *string    `json:"final_filename,omitempty"`
	FileSize         int64      `json:"file_size"`
	Status           string     `json:"status"`
	ExtractedName    *string    `json:"extracted_name,omitempty"`
	ExtractedAccount *string    `json:"extracted_account,omitempty"`
	DestinationPath  *string    `json:"destination_path,omitempty"`
	ErrorMessage     *string    `json:"error_message,omitempty"`
	Timestamp        time.Time  `json:"timestamp"`
}
