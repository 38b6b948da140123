// Package htmltext extracts readable text from HTML fragments, such
// as Confluence storage bodies and Stack Exchange post bodies.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// skipElements are containers whose text content is never readable.
var skipElements = map[string]bool{
	"script": true,
	"style":  true,
	"head":   true,
}

// blockElements get a newline appended so extracted text keeps rough
// paragraph structure.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"pre": true, "blockquote": true, "table": true,
}

// Extract returns the visible text of an HTML fragment. Malformed
// markup is tolerated; the tokenizer recovers the way browsers do.
func Extract(fragment string) string {
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		// html.Parse only fails on reader errors, not bad markup.
		return strings.TrimSpace(fragment)
	}

	var b strings.Builder
	walk(root, &b)
	return collapse(b.String())
}

func walk(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && skipElements[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, b)
	}

	if n.Type == html.ElementNode && blockElements[n.Data] {
		b.WriteString("\n")
	}
}

// collapse trims each line and drops runs of blank lines.
func collapse(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
