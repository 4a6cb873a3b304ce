package ingest

import (
	"context"
	"strings"

	"golang.org/x/net/html"
)

// HTMLImporter handles .html and .htm files, keeping visible text only
type HTMLImporter struct{}

// blockElements end a paragraph in the extracted text
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "td": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "blockquote": true, "pre": true,
	"ul": true, "ol": true, "table": true, "hr": true, "dd": true, "dt": true,
}

// Name returns the format name
func (h *HTMLImporter) Name() string { return "html" }

// CanHandle returns true for HTML file extensions
func (h *HTMLImporter) CanHandle(path string) bool {
	return hasExt(path, ".html", ".htm")
}

// Import extracts the title and visible text, one paragraph per block element
func (h *HTMLImporter) Import(ctx context.Context, path string, data []byte) (Source, error) {
	root, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return Source{}, err
	}

	title, text := visibleText(root)
	doc := documentWithText(text)
	doc.Title = title
	return Source{Document: doc}, nil
}

// visibleText extracts text nodes, skipping scripts and styles
func visibleText(n *html.Node) (string, string) {
	var title string
	var paragraphs []string
	var cur strings.Builder

	flush := func() {
		if p := strings.Join(strings.Fields(cur.String()), " "); p != "" {
			paragraphs = append(paragraphs, p)
		}
		cur.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template":
				return
			case "title":
				if title == "" {
					title = strings.Join(strings.Fields(textContent(n)), " ")
				}
				return
			}
			if blockElements[n.Data] {
				flush()
			}
		}

		if n.Type == html.TextNode {
			cur.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			flush()
		}
	}

	walk(n)
	flush()
	return title, strings.Join(paragraphs, "\n\n")
}

func textContent(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
