// Package language provides a heuristic, offline language classifier.
package language

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonesrussell/faqhub/internal/normalize"
)

const (
	// DefaultTarget is the language content is expected to be in.
	DefaultTarget = "en"
	// DefaultMinLength is the shortest input that is classified at all.
	DefaultMinLength = 20
	// DefaultReliabilityThreshold is the confidence above which a detection is trusted.
	DefaultReliabilityThreshold = 0.5

	// scriptDominance is the share of letters a non-Latin script needs to decide the language.
	scriptDominance = 0.5
	// fullCoverage is the stopword share at which coverage no longer discounts confidence.
	fullCoverage = 0.15
)

// Detection is the result of classifying one text.
type Detection struct {
	// Language is an ISO 639-1 code.
	Language   string
	Confidence float64
	IsReliable bool
}

// Detector classifies text by script and stopword frequency.
type Detector struct {
	target    string
	minLength int
	threshold float64
}

// NewDetector creates a Detector. Zero values fall back to defaults.
func NewDetector(target string, minLength int, threshold float64) *Detector {
	if target == "" {
		target = DefaultTarget
	}
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	if threshold <= 0 {
		threshold = DefaultReliabilityThreshold
	}
	return &Detector{target: target, minLength: minLength, threshold: threshold}
}

// Target returns the configured target language.
func (d *Detector) Target() string {
	return d.target
}

// Detect classifies text. Input shorter than the minimum length is reported
// as the target language with IsReliable false.
func (d *Detector) Detect(text string) Detection {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < d.minLength {
		return Detection{Language: d.target, Confidence: 1}
	}

	if lang, share, ok := dominantScript(text); ok {
		return d.detection(lang, share)
	}

	lang, confidence := classifyByStopwords(text)
	if lang == "" {
		return Detection{Language: d.target}
	}
	return d.detection(lang, confidence)
}

// Accepts applies the ingestion policy: reliable detections of another
// language are rejected unless multilingual capture was requested.
func (d *Detector) Accepts(det Detection, multilingual bool) bool {
	if multilingual || !det.IsReliable {
		return true
	}
	return det.Language == d.target
}

func (d *Detector) detection(lang string, confidence float64) Detection {
	return Detection{
		Language:   lang,
		Confidence: confidence,
		IsReliable: confidence >= d.threshold,
	}
}

// dominantScript reports a language implied by a non-Latin script covering
// most letters of text.
func dominantScript(text string) (string, float64, bool) {
	counts := make(map[string]int)
	letters := 0

	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for _, s := range scripts {
			if unicode.Is(s.table, r) {
				counts[s.lang]++
				break
			}
		}
	}

	if letters == 0 {
		return "", 0, false
	}

	// Japanese text mixes kana with Han; any kana decides for Japanese.
	if counts["ja"] > 0 {
		counts["ja"] += counts["zh"]
		delete(counts, "zh")
	}

	best, bestCount := "", 0
	for lang, n := range counts {
		if n > bestCount || (n == bestCount && lang < best) {
			best, bestCount = lang, n
		}
	}

	share := float64(bestCount) / float64(letters)
	if share < scriptDominance {
		return "", 0, false
	}
	return best, share, true
}

func classifyByStopwords(text string) (string, float64) {
	words := strings.Fields(normalize.Normalize(text))
	if len(words) == 0 {
		return "", 0
	}

	scores := make(map[string]int, len(stopwords))
	for _, w := range words {
		w = strings.Trim(w, ".,!?-")
		for lang, set := range stopwords {
			if _, ok := set[w]; ok {
				scores[lang]++
			}
		}
	}

	if len(scores) == 0 {
		return "", 0
	}

	best, bestScore, second := "", 0, 0
	for lang, n := range scores {
		switch {
		case n > bestScore || (n == bestScore && lang < best):
			if best != "" {
				second = max(second, bestScore)
			}
			best, bestScore = lang, n
		case n > second:
			second = n
		}
	}

	// Many stopwords are shared between languages, so confidence is the margin
	// over the runner-up, discounted when few words are stopwords at all.
	margin := float64(bestScore) / float64(bestScore+second)
	coverage := min(1, float64(bestScore)/float64(len(words))/fullCoverage)

	return best, margin * coverage
}
