package quality_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/faqhub/internal/domain"
	"github.com/jonesrussell/faqhub/internal/quality"
)

func TestScore_RejectsShortContent(t *testing.T) {
	t.Parallel()

	a := quality.NewScorer(150).Score("How do refunds work?", strings.Repeat("x", 40))

	assert.True(t, a.Rejected)
	assert.Equal(t, domain.QualityLow, a.Tier)
}

func TestScore_HelpfulContentIsHigh(t *testing.T) {
	t.Parallel()

	content := "If you need to cancel a reservation, follow these steps to request a refund.\n\n" +
		"Step 1: open your account and find the booking.\n\n" +
		"Step 2: choose cancel. If you cannot see the option, contact support for help."

	a := quality.NewScorer(150).Score("How do I cancel and get a refund?", content)

	assert.False(t, a.Rejected)
	assert.Equal(t, domain.QualityHigh, a.Tier)
	assert.GreaterOrEqual(t, a.Votes(), 10)
}

func TestScore_PromotionalContentIsLow(t *testing.T) {
	t.Parallel()

	content := "Limited time offer! Buy now and use promo code SUMMER for the best deal on hotels. " +
		"Click here to subscribe and get an exclusive offer. Book now, don't miss 50% off every stay this month."

	a := quality.NewScorer(150).Score("Summer hotel deals", content)

	assert.False(t, a.Rejected)
	assert.Equal(t, domain.QualityLow, a.Tier)
	assert.Equal(t, 0, a.Votes())
}

func TestScore_NeutralContentIsMedium(t *testing.T) {
	t.Parallel()

	content := "The museum district sits along the river and is a short walk from the old town. " +
		"Most galleries open at nine and close in the early evening during the summer season."

	a := quality.NewScorer(150).Score("Museum district", content)

	assert.Equal(t, domain.QualityMedium, a.Tier)
	assert.Equal(t, 5, a.Votes())
}
