// Package normalize canonicalizes scraped text before fingerprinting.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	keptPunctuation = ".,!?-"
	maxPasses       = 4
)

// Normalize lowercases text, drops punctuation other than . , ! ? -,
// collapses whitespace runs to a single space and trims the result.
// Compatibility forms are folded with NFKC so visually identical text hashes
// identically. Normalize is idempotent.
func Normalize(text string) string {
	out := pass(text)

	// Dropping runes can bring composable runes together, so repeat until stable.
	for range maxPasses {
		next := pass(out)
		if next == out {
			break
		}
		out = next
	}

	return out
}

func pass(text string) string {
	text = norm.NFKC.String(strings.ToLower(norm.NFKC.String(text)))

	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r), strings.ContainsRune(keptPunctuation, r):
		default:
			continue
		}

		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}

	return b.String()
}
