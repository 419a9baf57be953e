// Package preview prepares chunk text for the dashboard's card and
// drawer views. Chunk text arrives either as markdown (prose, merged
// tables re-serialized as pipe tables) or as raw HTML table markup.
package preview

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

// MarkdownHTML renders markdown chunk text to HTML.
func MarkdownHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// HTMLText extracts plain text from HTML chunk content, dropping
// script/style subtrees and collapsing whitespace.
func HTMLText(s string) (string, error) {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(buf.String()), " "), nil
}

// LooksLikeHTML reports whether chunk text is HTML markup rather than
// markdown. Table chunks commonly carry <table> fragments verbatim.
func LooksLikeHTML(s string) bool {
	t := strings.TrimSpace(strings.ToLower(s))
	for _, tag := range []string{"<table", "<tr", "<td", "<th", "<div", "<p>", "<span", "<html", "<body"} {
		if strings.Contains(t, tag) {
			return true
		}
	}
	return false
}

// Excerpt truncates s to at most n runes, cutting at a word boundary
// when one is close, with an ellipsis marker.
func Excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	cut := n
	for i := n; i > n-20 && i > 0; i-- {
		if unicode.IsSpace(runes[i-1]) {
			cut = i - 1
			break
		}
	}
	return strings.TrimRight(string(runes[:cut]), " ") + "…"
}
