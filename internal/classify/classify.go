// Package classify decides whether fetched page content is readable or gated
// behind JavaScript or cookie consent.
package classify

import (
	"strings"
	"unicode/utf8"
)

type Result int

const (
	OK Result = iota
	Restricted
	Unknown
)

func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case Restricted:
		return "restricted"
	default:
		return "unknown"
	}
}

// DefaultMaxGatedTextLen is the extracted text length above which a page that
// matches a signature is considered readable anyway (banner on a real article).
const DefaultMaxGatedTextLen = 1500

// Classifier maps raw HTML and its extracted text to a Result.
type Classifier interface {
	Classify(html string, text string) Result
}

// SignatureClassifier matches case-insensitive substrings. The signature list
// is heuristic and intentionally replaceable.
type SignatureClassifier struct {
	signatures      []string
	maxGatedTextLen int
}

func DefaultSignatures() []string {
	return []string{
		"enable javascript",
		"javascript is disabled",
		"javascript is required",
		"requires javascript",
		"you need to enable javascript",
		"please enable cookies",
		"cookies are disabled",
		"enable cookies",
		"accept cookies",
		"cookie consent",
		"we use cookies",
		"checking your browser",
		"verify you are human",
	}
}

func NewSignatureClassifier(signatures []string, maxGatedTextLen int) *SignatureClassifier {
	normalized := make([]string, 0, len(signatures))
	for _, s := range signatures {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		normalized = append(normalized, s)
	}

	if maxGatedTextLen <= 0 {
		maxGatedTextLen = DefaultMaxGatedTextLen
	}

	return &SignatureClassifier{
		signatures:      normalized,
		maxGatedTextLen: maxGatedTextLen,
	}
}

// Classify returns Restricted for an empty body or a short body matching a
// signature, and Unknown when a signature matches a long body.
func (c *SignatureClassifier) Classify(_ string, text string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Restricted
	}

	lower := strings.ToLower(text)
	matched := false
	for _, s := range c.signatures {
		if strings.Contains(lower, s) {
			matched = true
			break
		}
	}

	if !matched {
		return OK
	}

	if utf8.RuneCountInString(text) <= c.maxGatedTextLen {
		return Restricted
	}

	return Unknown
}
