package reader

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// StripMarkup removes HTML tags from a feed snippet and collapses the
// remaining text. Adjacent elements are separated by a space so that
// "<b>Lockdown</b>at" does not fuse into one word.
func StripMarkup(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	if !strings.ContainsAny(raw, "<&") {
		return CleanText(raw)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return CleanText(raw)
	}

	var parts []string
	for _, node := range doc.Nodes {
		collectText(node, &parts)
	}
	return CleanText(strings.Join(parts, " "))
}

func collectText(node *html.Node, parts *[]string) {
	switch node.Type {
	case html.TextNode:
		*parts = append(*parts, node.Data)
		return
	case html.ElementNode:
		switch node.Data {
		case "script", "style":
			return
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, parts)
	}
}
