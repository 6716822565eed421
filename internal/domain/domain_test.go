package domain_test

import (
	"articlebench/internal/domain"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.Mode
	}{
		{"REPEATED", domain.ModeRepeated},
		{"repeated", domain.ModeRepeated},
		{" Cached ", domain.ModeCached},
	}

	for _, test := range tests {
		got, err := domain.ParseMode(test.raw)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", test.raw, err)
		}
		if got != test.want {
			t.Fatalf("unexpected mode for %q: got %q want %q", test.raw, got, test.want)
		}
	}
}

func TestParseModeRejectsUnknown(t *testing.T) {
	if _, err := domain.ParseMode("sometimes"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
