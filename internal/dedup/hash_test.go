package dedup_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/faqhub/internal/dedup"
	"github.com/jonesrussell/faqhub/internal/normalize"
)

const refundsAnswer = "Refunds are issued to the original payment method once the host approves the " +
	"cancellation. Most banks process the refund within five to ten business days, depending on your card."

func TestHasher_Hash_Deterministic(t *testing.T) {
	t.Parallel()

	h := dedup.NewHasher(true, 100)
	first := h.Hash(refundsAnswer)

	assert.Len(t, first, 64)
	assert.Equal(t, first, h.Hash(refundsAnswer))
}

func TestHasher_Hash_EquivalentUnderNormalization(t *testing.T) {
	t.Parallel()

	h := dedup.NewHasher(true, 100)
	variant := "  " + strings.ToUpper(refundsAnswer[:20]) + refundsAnswer[20:] + " \n\n "

	assert.Equal(t, normalize.Normalize(refundsAnswer), normalize.Normalize(variant))
	assert.Equal(t, h.Hash(refundsAnswer), h.Hash(variant))
}

func TestHasher_Hash_DifferentContentDiffers(t *testing.T) {
	t.Parallel()

	h := dedup.NewHasher(true, 100)
	assert.NotEqual(t, h.Hash(refundsAnswer), h.Hash(refundsAnswer+" Contact support if it takes longer."))
}

func TestHasher_Hash_ShortContentIsEmpty(t *testing.T) {
	t.Parallel()

	h := dedup.NewHasher(true, 100)
	assert.Empty(t, h.Hash("Too short to be worth fingerprinting."))
	// Padding that normalization removes does not count towards the minimum.
	assert.Empty(t, h.Hash("short"+strings.Repeat("   ###", 40)))
}

func TestHasher_Hash_DisabledIsEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, dedup.NewHasher(false, 100).Hash(refundsAnswer))
}

func TestJaccardSimilarity(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, dedup.JaccardSimilarity("Hello World", "hello   world!"), 1e-9)
	assert.InDelta(t, 0.0, dedup.JaccardSimilarity("alpha beta", "gamma delta"), 1e-9)
	assert.InDelta(t, 1.0/3.0, dedup.JaccardSimilarity("a b", "b c"), 1e-9)
	assert.InDelta(t, 1.0, dedup.JaccardSimilarity("", ""), 1e-9)
}
