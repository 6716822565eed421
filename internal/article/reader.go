package article

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const noiseSelector = "script, style, noscript, template, svg, iframe, head"

// Reader turns raw HTML into plain text.
type Reader interface {
	Text(rawHTML string) (string, error)
}

// GoqueryReader extracts visible text, preferring the <article> or <main>
// element when the page has one.
type GoqueryReader struct{}

func NewGoqueryReader() *GoqueryReader {
	return &GoqueryReader{}
}

func (r *GoqueryReader) Text(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("create document from reader: %w", err)
	}

	doc.Find(noiseSelector).Remove()

	root := doc.Find("article").First()
	if NormalizeSpace(root.Text()) == "" {
		root = doc.Find("main").First()
	}
	if NormalizeSpace(root.Text()) == "" {
		root = doc.Selection
	}

	var b strings.Builder
	for _, n := range root.Nodes {
		collectText(n, &b)
	}

	return NormalizeSpace(b.String()), nil
}

// NormalizeSpace collapses runs of whitespace into single spaces.
func NormalizeSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')

		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
