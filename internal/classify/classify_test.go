package classify_test

import (
	"articlebench/internal/classify"
	"strings"
	"testing"
)

func TestSignatureClassifier(t *testing.T) {
	c := classify.NewSignatureClassifier(classify.DefaultSignatures(), 200)

	longArticle := strings.Repeat("The council voted on the new budget today. ", 20)

	tests := []struct {
		name string
		text string
		want classify.Result
	}{
		{"empty body", "   ", classify.Restricted},
		{"javascript banner", "Please enable JavaScript to view this page.", classify.Restricted},
		{"cookie wall", "We use cookies. Accept cookies to continue.", classify.Restricted},
		{"plain article", longArticle, classify.OK},
		{"banner on long article", "We use cookies. " + longArticle, classify.Unknown},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := c.Classify("", test.text); got != test.want {
				t.Fatalf("unexpected result: got %s want %s", got, test.want)
			}
		})
	}
}

func TestSignatureClassifierCustomSignatures(t *testing.T) {
	c := classify.NewSignatureClassifier([]string{" Paywall ", ""}, 0)

	if got := c.Classify("", "Subscribe: PAYWALL ahead"); got != classify.Restricted {
		t.Fatalf("expected custom signature to match, got %s", got)
	}

	if got := c.Classify("", "Please enable JavaScript"); got != classify.OK {
		t.Fatalf("expected default signatures to be replaced, got %s", got)
	}
}
