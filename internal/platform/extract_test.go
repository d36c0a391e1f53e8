package platform_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/faqhub/internal/platform"
)

const articleHTML = `<html><head><title>Refunds | Help</title><script>var x = 1;</script></head>
<body>
<nav><a href="/">Home</a></nav>
<span class="crumb">Payments</span>
<article class="article-body">
  <h1>How do refunds work?</h1>
  <p>Refunds are issued to the original payment method.</p>
  <ul><li>Cards take 5 to 10 days.</li><li>Wallets are instant.</li></ul>
  <div class="related">Related articles</div>
</article>
<footer>Copyright</footer>
</body></html>`

func TestExtractPage_Selectors(t *testing.T) {
	t.Parallel()

	page, err := platform.ExtractPage([]byte(articleHTML), "https://help.example.com/a/1", platform.Selectors{
		Title:    []string{"h1"},
		Body:     []string{".article-body"},
		Exclude:  []string{".related"},
		Category: ".crumb",
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, "How do refunds work?", page.Title)
	assert.Equal(t, "Payments", page.Category)
	assert.Contains(t, page.Body, "Refunds are issued to the original payment method.")
	assert.Contains(t, page.Body, "Cards take 5 to 10 days.\n\nWallets are instant.")
	assert.NotContains(t, page.Body, "Related articles")
	assert.NotContains(t, page.Body, "Copyright")
	assert.NotContains(t, page.Body, "var x")
}

func TestExtractPage_DefaultSelectors(t *testing.T) {
	t.Parallel()

	page, err := platform.ExtractPage([]byte(articleHTML), "https://help.example.com/a/1", platform.Selectors{}, 0)
	require.NoError(t, err)

	assert.Equal(t, "How do refunds work?", page.Title)
	assert.Empty(t, page.Category)
	assert.Contains(t, page.Body, "original payment method")
}

func TestExtractPage_ReadabilityFallback(t *testing.T) {
	t.Parallel()

	para := strings.Repeat("Travellers can cancel a booking up to a day before the activity starts. ", 6)
	html := `<html><head><title>Cancellation policy</title></head><body>
<div class="wrapper"><div class="content">
<p>` + para + `</p>
<p>` + para + `</p>
</div></div></body></html>`

	page, err := platform.ExtractPage([]byte(html), "https://help.example.com/cancel", platform.Selectors{
		Body: []string{".missing"},
	}, 200)
	require.NoError(t, err)

	assert.Contains(t, page.Body, "Travellers can cancel a booking")
	assert.Greater(t, len(page.Body), 200)
}

func TestHTMLToText(t *testing.T) {
	t.Parallel()

	got := platform.HTMLToText("<p>First  line.</p><p>Second <b>line</b>.</p>")
	assert.Equal(t, "First line.\n\nSecond line.", got)
	assert.Empty(t, platform.HTMLToText(""))
}
