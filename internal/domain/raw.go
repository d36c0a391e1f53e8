package domain

import "strings"

// RawContent is what a source produces for one URL, before any pipeline stage runs.
type RawContent struct {
	URL         string
	Title       string
	Body        string
	Platform    string
	Category    string
	ContentType ContentType
	// Source is the provenance tag, e.g. "helpcenter" or "reddit".
	Source string
	// Multilingual disables the language gate for this record.
	Multilingual bool
}

// Text returns the title and body joined the way they are stored. It is the
// text fingerprinted for duplicate detection, so one answer filed under two
// different questions yields two distinct fingerprints.
func (r *RawContent) Text() string {
	return strings.TrimSpace(r.Title + "\n\n" + r.Body)
}
