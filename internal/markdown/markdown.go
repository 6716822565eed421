// Package markdown formats text for Telegram MarkdownV2 messages.
package markdown

import (
	"strings"
	"unicode/utf8"
)

// Reserved characters per https://core.telegram.org/bots/api#markdownv2-style.
const (
	reservedV2   = "_*[]()~`>#+-=|{}.!\\"
	reservedCode = "`\\"
)

var (
	v2Lookup   = lookup(reservedV2)
	codeLookup = lookup(reservedCode)
)

// EscapeV2 escapes text for use outside of entities.
func EscapeV2(text string) string {
	return escape(text, &v2Lookup)
}

// EscapeCode escapes text for use inside pre and code entities.
func EscapeCode(text string) string {
	return escape(text, &codeLookup)
}

// Bold wraps already escaped text in a bold entity.
func Bold(escaped string) string {
	return "*" + escaped + "*"
}

// Pre wraps raw text in a preformatted block.
func Pre(text string) string {
	return "```\n" + EscapeCode(text) + "\n```"
}

// Split breaks text into chunks of at most limit bytes, preferring line
// boundaries and never cutting an escape sequence or a UTF-8 rune.
func Split(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var chunks []string

	for len(text) > limit {
		cut := strings.LastIndexByte(text[:limit], '\n')
		if cut <= 0 {
			cut = safeCut(text, limit)
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}

	if text != "" {
		chunks = append(chunks, text)
	}

	return chunks
}

func safeCut(text string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	backslashes := 0
	for i := cut - 1; i >= 0 && text[i] == '\\'; i-- {
		backslashes++
	}
	if backslashes%2 == 1 {
		cut--
	}

	if cut <= 0 {
		return limit
	}

	return cut
}

func escape(text string, table *[256]bool) string {
	n := 0
	for i := 0; i < len(text); i++ {
		if table[text[i]] {
			n++
		}
	}
	if n == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + n)

	for i := 0; i < len(text); i++ {
		if table[text[i]] {
			b.WriteByte('\\')
		}
		b.WriteByte(text[i])
	}

	return b.String()
}

func lookup(chars string) [256]bool {
	var t [256]bool
	for i := 0; i < len(chars); i++ {
		t[chars[i]] = true
	}

	return t
}
