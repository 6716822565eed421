package summarizer

import (
	"fmt"
	"strings"
)

const (
	SummaryTemplate = "[Main Event] - [Key Detail] - [Outcome]"

	promptTemplate = `Respond ONLY with the %[1]d-character summary. No thinking output.

Provide a strictly %[1]d-character summary of the article below.
Structure: %[2]s.
Example: "Central bank cuts rates by half a point; inflation cooled for third month while markets rallied to record highs."

Rules:
1. At most %[1]d characters (count precisely).
2. No incomplete words.
3. No sources, dates or author names.
4. If over the limit, rewrite shorter.`
)

// BuildPrompt renders the summarization prompt followed by the article text.
func BuildPrompt(maxLength int, content string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf(promptTemplate, maxLength, SummaryTemplate))
	b.WriteString("\n\nArticle:\n")
	b.WriteString(strings.TrimSpace(content))

	return b.String()
}

// Truncate shortens text to at most maxLength runes, cutting at the last
// word boundary when there is one.
func Truncate(text string, maxLength int) string {
	text = strings.TrimSpace(text)

	runes := []rune(text)
	if maxLength <= 0 || len(runes) <= maxLength {
		return text
	}

	cut := runes[:maxLength]
	if runes[maxLength] != ' ' {
		if i := lastSpace(cut); i > 0 {
			cut = cut[:i]
		}
	}

	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(string(cut)), ",;:-"))
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}

	return -1
}
