package render

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "h1": true, "h2": true, "h3": true,
	"li": true, "tr": true, "header": true, "footer": true, "title": true,
}

var skipTags = map[string]bool{"script": true, "style": true, "head": true}

// HTMLToText flattens a rendered receipt for printers that only take raw text.
// Block elements become lines, images are replaced by their alt text.
func HTMLToText(doc []byte) (string, error) {
	d, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return "", err
	}

	w := &textWriter{}
	d.Find("body").Each(func(_ int, body *goquery.Selection) {
		for _, n := range body.Nodes {
			w.walk(n)
		}
	})
	w.newline()

	return strings.TrimSpace(w.String()) + "\n", nil
}

type textWriter struct {
	lines   []string
	current strings.Builder
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if words := strings.Fields(n.Data); len(words) > 0 {
			if w.current.Len() > 0 {
				w.current.WriteByte(' ')
			}
			w.current.WriteString(strings.Join(words, " "))
		}
		return
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if skipTags[tag] {
			return
		}
		switch tag {
		case "br":
			w.newline()
			return
		case "img":
			for _, attr := range n.Attr {
				if attr.Key == "alt" && strings.TrimSpace(attr.Val) != "" {
					w.current.WriteString("[" + strings.TrimSpace(attr.Val) + "]")
				}
			}
			return
		}
		if blockTags[tag] {
			w.newline()
			defer w.newline()
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *textWriter) newline() {
	if w.current.Len() == 0 {
		return
	}
	w.lines = append(w.lines, w.current.String())
	w.current.Reset()
}

func (w *textWriter) String() string {
	return strings.Join(w.lines, "\n")
}
