// Package quality scores scraped articles with a bag-of-indicators heuristic.
package quality

import (
	"strings"
	"unicode/utf8"

	"github.com/jonesrussell/faqhub/internal/domain"
)

const (
	// DefaultMinLength is the absolute content length below which an article is rejected.
	DefaultMinLength = 150

	highThreshold      = 3
	maxHitsPerKeyword  = 3
	promotionalWeight  = 2
	structureBonus     = 1
	minStructuredParas = 3
	maxVoteBonus       = 5
)

var helpfulIndicators = []string{
	"how do", "how to", "how can", "why ", "what ", "when ", "problem", "issue", "question",
	"help", "can i", "cannot", "can't", "error", "refund", "cancel", "step", "policy",
	"contact", "support", "account", "payment",
}

var promotionalIndicators = []string{
	"buy now", "limited time", "discount code", "promo code", "sponsored", "click here",
	"best deal", "subscribe", "affiliate", "exclusive offer", "book now", "don't miss",
	"sign up today", "% off",
}

var baseVotes = map[domain.QualityTier]int{
	domain.QualityLow:    0,
	domain.QualityMedium: 5,
	domain.QualityHigh:   10,
}

// Assessment is the result of scoring one article.
type Assessment struct {
	Tier     domain.QualityTier
	Score    int
	Helpful  int
	Promo    int
	Rejected bool
}

// Votes maps the assessment to the stored votes field.
func (a Assessment) Votes() int {
	return baseVotes[a.Tier] + min(a.Helpful, maxVoteBonus)
}

// Scorer computes quality assessments.
type Scorer struct {
	minLength int
}

// NewScorer creates a Scorer. A non-positive minLength uses DefaultMinLength.
func NewScorer(minLength int) *Scorer {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return &Scorer{minLength: minLength}
}

// Score rates title and content. Content shorter than the minimum length is
// rejected whatever its indicators say.
func (s *Scorer) Score(title, content string) Assessment {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) < s.minLength {
		return Assessment{Tier: domain.QualityLow, Rejected: true}
	}

	text := strings.ToLower(title + "\n" + content)

	a := Assessment{
		Helpful: countIndicators(text, helpfulIndicators),
		Promo:   countIndicators(text, promotionalIndicators),
	}
	a.Score = a.Helpful - promotionalWeight*a.Promo
	if strings.Contains(title, "?") {
		a.Score++
	}
	if paragraphCount(content) >= minStructuredParas {
		a.Score += structureBonus
	}

	switch {
	case a.Score >= highThreshold:
		a.Tier = domain.QualityHigh
	case a.Score < 0:
		a.Tier = domain.QualityLow
	default:
		a.Tier = domain.QualityMedium
	}

	return a
}

func countIndicators(text string, indicators []string) int {
	total := 0
	for _, ind := range indicators {
		total += min(strings.Count(text, ind), maxHitsPerKeyword)
	}
	return total
}

func paragraphCount(content string) int {
	n := 0
	for _, p := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}
