package normalize_test

import (
	"testing"

	"github.com/jonesrussell/faqhub/internal/normalize"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"lowercases and trims", "  How Do Refunds WORK?  ", "how do refunds work?"},
		{"collapses whitespace", "a \n\n\t b", "a b"},
		{"keeps allowed punctuation", "Wait... really?! Yes - no, ok.", "wait... really?! yes - no, ok."},
		{"strips other punctuation", "Fees: $20 (approx.) #travel @host", "fees 20 approx. travel host"},
		{"drops symbol between spaces", "a & b", "a b"},
		{"unicode letters kept", "Café Übernachtung", "café übernachtung"},
		{"compatibility forms folded", "ｆｕｌｌｗｉｄｔｈ", "fullwidth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := normalize.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"  Mixed CASE\ttext with  (brackets) and emoji 🎉 !! ",
		"İstanbul ΣΟΦΙΑ straße",
		"ﬁ ligature and ½ fraction",
		"- leading hyphen, trailing dot .",
		" non-breaking spaces​",
	}

	for _, in := range inputs {
		once := normalize.Normalize(in)
		if twice := normalize.Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
