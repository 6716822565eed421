package inference

import (
	"regexp"
	"strings"
)

var (
	thinkBlockRe    = regexp.MustCompile(`(?is)<\s*think\s*>.*?<\s*/\s*think\s*>`)
	thinkDoneRe     = regexp.MustCompile(`(?i)think[.\s]*\.+\s*done thinking\.`)
	thinkingLineRe  = regexp.MustCompile(`(?im)^[ \t]*thinking[. \t]*$`)
	echoPrefixRe    = regexp.MustCompile(`(?i)^(?:here(?:'s| is)[^:\n]{0,80}:|summary\s*:|\d+-character summary\s*:)\s*`)
	templateLabelRe = regexp.MustCompile(`(?i)\b(?:main event|key detail|outcome)\s*:\s*`)
	placeholderRe   = regexp.MustCompile(`(?i)\[\s*(?:main event|key detail|outcome)\s*\]\s*-?\s*`)
	bracketRe       = regexp.MustCompile(`\[([^\[\]]*)\]`)
)

// CleanText removes reasoning blocks, prompt echoes, template brackets and
// redundant whitespace from generated text.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = thinkBlockRe.ReplaceAllString(text, "")
	text = thinkDoneRe.ReplaceAllString(text, "")
	text = thinkingLineRe.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")

	for {
		stripped := echoPrefixRe.ReplaceAllString(text, "")
		stripped = strings.TrimSpace(trimWrapping(stripped))
		if stripped == text {
			break
		}
		text = stripped
	}

	text = placeholderRe.ReplaceAllString(text, "")
	text = templateLabelRe.ReplaceAllString(text, "")
	text = bracketRe.ReplaceAllString(text, "$1")
	text = trimWrapping(text)

	return strings.Join(strings.Fields(text), " ")
}

func trimWrapping(text string) string {
	text = strings.TrimSpace(text)

	for _, pair := range [][2]string{{`"`, `"`}, {"“", "”"}, {"**", "**"}, {"'", "'"}} {
		if len(text) >= len(pair[0])+len(pair[1]) &&
			strings.HasPrefix(text, pair[0]) &&
			strings.HasSuffix(text, pair[1]) {
			text = strings.TrimSpace(text[len(pair[0]) : len(text)-len(pair[1])])
		}
	}

	return text
}
