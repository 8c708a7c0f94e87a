package markup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dgallion1/scholarsite/internal/doctree"
	"golang.org/x/net/html"
)

// tocDepth is the deepest heading level listed in the table of contents.
const tocDepth = 3

// scan is what a walk over rendered HTML yields.
type scan struct {
	outline *doctree.Outline
	text    string // all readable text
	prose   string // paragraph text outside figures, for excerpts
}

// scanHTML builds the outline from h2/h3 headings and collects the
// readable text of a rendered document.
func scanHTML(src []byte, title string) (*scan, error) {
	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	out := &scan{outline: &doctree.Outline{Title: title}}

	type stackEntry struct {
		entry *doctree.Entry
		level int
	}
	root := &doctree.Entry{}
	stack := []stackEntry{{entry: root, level: 0}}
	var text, prose strings.Builder

	var walk func(*html.Node, bool)
	walk = func(n *html.Node, inFigure bool) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
			return
		case html.ElementNode:
			if level := headingLevel(n.Data); level > 0 {
				title, number := headingText(n)
				text.WriteString(title)
				text.WriteByte('\n')
				if level < 2 || level > tocDepth {
					return
				}
				e := &doctree.Entry{Title: title, Anchor: attr(n, "id"), Number: number, Level: level}
				for len(stack) > 1 && stack[len(stack)-1].level >= level {
					stack = stack[:len(stack)-1]
				}
				parent := stack[len(stack)-1].entry
				parent.Children = append(parent.Children, e)
				stack = append(stack, stackEntry{entry: e, level: level})
				return
			}

			switch n.Data {
			case "script", "style", "svg":
				return
			case "figure":
				inFigure = true
			case "p":
				if !inFigure {
					if t := textContent(n); t != "" {
						if prose.Len() > 0 {
							prose.WriteByte(' ')
						}
						prose.WriteString(t)
					}
				}
			}
			if hasClass(n, "sidenote") {
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inFigure)
		}
		if n.Type == html.ElementNode && blockElement(n.Data) {
			text.WriteByte('\n')
		}
	}
	walk(doc, false)

	out.outline.Entries = root.Children
	out.text = strings.TrimSpace(text.String())
	out.prose = prose.String()
	return out, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// headingText splits a rendered heading into its title and section number.
func headingText(n *html.Node) (title, number string) {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "section-number") {
			number = textContent(n)
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String()), number
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && (n.Data == "svg" || hasClass(n, "sidenote")) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func blockElement(tag string) bool {
	switch tag {
	case "p", "li", "div", "figure", "figcaption", "blockquote", "pre", "tr", "td", "th", "table":
		return true
	}
	return false
}
