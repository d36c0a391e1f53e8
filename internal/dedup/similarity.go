package dedup

import (
	"strings"

	"github.com/jonesrussell/faqhub/internal/normalize"
)

// JaccardSimilarity returns the word-set Jaccard index of a and b in [0, 1].
// It is meant for offline near-duplicate analysis; ingestion only rejects exact fingerprints.
func JaccardSimilarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(normalize.Normalize(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w = strings.Trim(w, ".,!?-"); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}
