package inference_test

import (
	"articlebench/internal/inference"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"think block",
			"<think>\nThe user wants a summary.\n</think>\n\nBank cuts rates - inflation eases - markets rally",
			"Bank cuts rates - inflation eases - markets rally",
		},
		{
			"done thinking marker",
			"Thinking...\nthink... done thinking. Bank cuts rates",
			"Bank cuts rates",
		},
		{
			"echoed prefix and quotes",
			`Summary: "Bank cuts rates - inflation eases - markets rally"`,
			"Bank cuts rates - inflation eases - markets rally",
		},
		{
			"here is prefix",
			"Here is the 257-character summary: Bank cuts rates",
			"Bank cuts rates",
		},
		{
			"bracketed segments",
			"[Bank cuts rates] - [inflation eases] - [markets rally]",
			"Bank cuts rates - inflation eases - markets rally",
		},
		{
			"template labels",
			"Main Event: Bank cuts rates - Key Detail: inflation eases - Outcome: markets rally",
			"Bank cuts rates - inflation eases - markets rally",
		},
		{
			"placeholders",
			"[Main Event] - Bank cuts rates",
			"Bank cuts rates",
		},
		{
			"plain text untouched",
			"X - Y - Z",
			"X - Y - Z",
		},
		{
			"empty",
			"",
			"",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := inference.CleanText(test.in); got != test.want {
				t.Fatalf("unexpected cleaned text: got %q want %q", got, test.want)
			}
		})
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"192.168.0.10:11434", "http://192.168.0.10:11434"},
		{"https://llm.example.com/", "https://llm.example.com"},
		{"", "http://localhost:11434"},
	}

	for _, test := range tests {
		if got := inference.BaseURL(test.host); got != test.want {
			t.Fatalf("unexpected base URL for %q: got %q want %q", test.host, got, test.want)
		}
	}
}
