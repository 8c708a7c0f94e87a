package markup

import (
	"context"
	"sort"
	"strconv"

	"github.com/yuin/goldmark/ast"
)

// edit replaces source[start:stop] with text. start == stop inserts.
type edit struct {
	start, stop int
	text        string
}

// Resolve renders src to populate its ledger and returns the Markdown body
// with every number written out: headings carry their section number,
// references become plain labels and figure fences become caption lines.
// The result is meant for terminal preview.
func (r *Renderer) Resolve(ctx context.Context, name string, src []byte) ([]byte, error) {
	doc, _, err := r.render(ctx, name, src)
	if err != nil {
		return nil, err
	}
	body, l := doc.body, doc.ledger

	var edits []edit
	_ = ast.Walk(doc.root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			edits = append(edits, headingEdits(n, body, l.SectionNumber)...)
		case *Figure:
			if n.open.Stop > n.open.Start {
				edits = append(edits, edit{start: n.open.Start, stop: n.open.Stop, text: "\n"})
			}
			if n.close.Stop > n.close.Start {
				number, _ := l.FigureNumber(n.ID)
				caption := figureLabel(number)
				if n.Caption != "" {
					caption += ": " + n.Caption
				}
				edits = append(edits, edit{start: n.close.Start, stop: n.close.Stop, text: "\n*" + caption + "*\n"})
			}
		case *Ref:
			edits = append(edits, edit{start: n.segment.Start, stop: n.segment.Stop, text: r.plainLabel(doc, n)})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	out := applyEdits(body, edits)
	if doc.meta.Title != "" {
		out = append([]byte("# "+doc.meta.Title+"\n\n"), out...)
	}
	return out, nil
}

// headingEdits prefixes the section number and drops a trailing {#id}
// attribute block.
func headingEdits(n *ast.Heading, body []byte, lookup func(string) (string, bool)) []edit {
	lines := n.Lines()
	if lines.Len() == 0 {
		return nil
	}
	var edits []edit
	if id, ok := n.AttributeString("id"); ok {
		if number, ok := lookup(attrString(id)); ok {
			edits = append(edits, edit{start: lines.At(0).Start, stop: lines.At(0).Start, text: number + " "})
		}
	}
	if start, stop, ok := attributeTail(n, body); ok {
		edits = append(edits, edit{start: start, stop: stop, text: ""})
	}
	return edits
}

func (r *Renderer) plainLabel(doc *document, n *Ref) string {
	switch n.RefKind {
	case RefFigure:
		if number, ok := doc.ledger.FigureNumber(n.Target); ok {
			return figureLabel(number)
		}
	case RefSection:
		if number, ok := doc.ledger.SectionNumber(n.Target); ok {
			return sectionLabel(number)
		}
	case RefCitation:
		if number, ok := doc.ledger.CitationNumber(n.Target); ok {
			return "[" + strconv.Itoa(number) + "]"
		}
	}
	return missingLabel(n.RefKind, n.Target)
}

func applyEdits(src []byte, edits []edit) []byte {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].start != edits[j].start {
			return edits[i].start > edits[j].start
		}
		return edits[i].stop > edits[j].stop
	})
	out := append([]byte(nil), src...)
	for _, e := range edits {
		if e.start < 0 || e.stop > len(out) || e.start > e.stop {
			continue
		}
		out = append(out[:e.start], append([]byte(e.text), out[e.stop:]...)...)
	}
	return out
}
