package bench

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MaxModels = 100
	MaxURLs   = 50

	DefaultRepetitions   = 3
	DefaultSummaryLength = 257
)

var ErrInvalidPlan = errors.New("invalid plan")

// Plan is the cross product of models and URLs to benchmark.
type Plan struct {
	Models        []string `yaml:"models"`
	URLs          []string `yaml:"urls"`
	SummaryLength int      `yaml:"summary_length"`
	Repetitions   int      `yaml:"repetitions"`
}

// Normalize trims entries, drops blanks and removes duplicates keeping the
// first occurrence.
func (p Plan) Normalize() Plan {
	p.Models = dedupe(p.Models)
	p.URLs = dedupe(p.URLs)

	return p
}

func (p Plan) Validate() error {
	var errs []error

	if n := len(p.Models); n < 1 || n > MaxModels {
		errs = append(errs, fmt.Errorf("models: got %d, want 1..%d", n, MaxModels))
	}

	if n := len(p.URLs); n < 1 || n > MaxURLs {
		errs = append(errs, fmt.Errorf("urls: got %d, want 1..%d", n, MaxURLs))
	}

	if p.Repetitions < 1 {
		errs = append(errs, fmt.Errorf("repetitions: got %d, want >= 1", p.Repetitions))
	}

	if p.SummaryLength < 1 {
		errs = append(errs, fmt.Errorf("summary length: got %d, want >= 1", p.SummaryLength))
	}

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrInvalidPlan, errors.Join(errs...))
}

// Pairs returns the number of (model, URL) pairs in the plan.
func (p Plan) Pairs() int {
	return len(p.Models) * len(p.URLs)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		if _, ok := seen[item]; ok {
			continue
		}

		seen[item] = struct{}{}
		out = append(out, item)
	}

	return out
}
