package domain

import "errors"

// SkipReason explains why the pipeline did not store an item.
type SkipReason string

const (
	SkipTooShort      SkipReason = "too_short"
	SkipWrongLanguage SkipReason = "wrong_language"
	SkipEmptyContent  SkipReason = "empty_content"
)

// Outcome is the terminal state of one item in a crawl run.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("not found")
