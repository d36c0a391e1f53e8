// Package slug derives unique URL slugs for articles.
package slug

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxBaseLength bounds the readable part of a slug.
	MaxBaseLength = 60
	// SuffixAttempts is how many random suffixes are tried before falling back.
	SuffixAttempts = 5

	suffixBytes   = 3
	fallbackBytes = 6
	fallbackBase  = "article"
)

// ErrExhausted is returned when no unique slug could be produced.
var ErrExhausted = errors.New("slug: no unique candidate found")

// Checker reports whether a slug is already taken.
type Checker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// Allocator produces slugs that are unique according to its Checker.
type Allocator struct {
	checker Checker
	random  io.Reader
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithRandom replaces the source of suffix randomness.
func WithRandom(r io.Reader) Option {
	return func(a *Allocator) { a.random = r }
}

// NewAllocator creates an Allocator.
func NewAllocator(checker Checker, opts ...Option) *Allocator {
	a := &Allocator{checker: checker, random: rand.Reader}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Base returns the lowercase hyphenated form of title, with diacritics
// folded. Whitespace and hyphens separate words; every other character that
// is not an ASCII letter or digit is dropped without splitting the word. The
// result is at most MaxBaseLength characters and never ends in a hyphen.
func Base(title string) string {
	folded, _, err := transform.String(foldDiacritics(), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			pendingHyphen = true
		}
	}

	s := b.String()
	if len(s) > MaxBaseLength {
		s = strings.TrimRight(s[:MaxBaseLength], "-")
	}
	return s
}

// Allocate returns a slug for title that the Checker reports as free. A
// taken base gets a random hex suffix; after SuffixAttempts collisions, or
// when the title has no usable characters, a random "article-<hex>" slug is used.
func (a *Allocator) Allocate(ctx context.Context, title string) (string, error) {
	base := Base(title)
	if base != "" {
		candidate, found, err := a.tryBase(ctx, base)
		if err != nil {
			return "", err
		}
		if found {
			return candidate, nil
		}
	}

	for range SuffixAttempts {
		suffix, suffixErr := a.randomHex(fallbackBytes)
		if suffixErr != nil {
			return "", suffixErr
		}

		candidate := fallbackBase + "-" + suffix
		free, err := a.isFree(ctx, candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}

	return "", ErrExhausted
}

// tryBase checks base and up to SuffixAttempts suffixed variants of it.
func (a *Allocator) tryBase(ctx context.Context, base string) (string, bool, error) {
	free, err := a.isFree(ctx, base)
	if err != nil || free {
		return base, free, err
	}

	for range SuffixAttempts {
		suffix, suffixErr := a.randomHex(suffixBytes)
		if suffixErr != nil {
			return "", false, suffixErr
		}

		candidate := base + "-" + suffix
		free, err = a.isFree(ctx, candidate)
		if err != nil || free {
			return candidate, free, err
		}
	}

	return "", false, nil
}

func (a *Allocator) isFree(ctx context.Context, candidate string) (bool, error) {
	exists, err := a.checker.SlugExists(ctx, candidate)
	if err != nil {
		return false, fmt.Errorf("check slug %q: %w", candidate, err)
	}
	return !exists, nil
}

func (a *Allocator) randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(a.random, buf); err != nil {
		return "", fmt.Errorf("read random suffix: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func foldDiacritics() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
