package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
)

// NormalizeURL trims the URL, lowercases scheme and host and drops the
// fragment. Unparsable input is returned trimmed.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	return u.String()
}

// ContentKey is the content cache key for a page URL.
func ContentKey(rawURL string) string {
	return digest(NormalizeURL(rawURL))
}

// SummaryKey is the summary cache key for a (URL, model, length) triple.
func SummaryKey(rawURL string, model string, maxLength int) string {
	return digest(
		NormalizeURL(rawURL),
		strings.TrimSpace(model),
		strconv.Itoa(maxLength),
	)
}

func digest(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		// Length prefixes keep ("ab", "c") and ("a", "bc") apart.
		h.Write([]byte(strconv.Itoa(len(p))))
		h.Write([]byte{':'})
		h.Write([]byte(p))
	}

	return hex.EncodeToString(h.Sum(nil))
}
