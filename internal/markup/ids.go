package markup

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	markupChars  = regexp.MustCompile("[*`~]|\\[|\\]\\([^)]*\\)|\\]")
)

// Slugify converts heading text to an anchor: lowercase, every run of
// characters outside [a-z0-9] collapsed to one hyphen, hyphens trimmed.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// headingIDs generates unique heading anchors for one document. Collisions
// get -1, -2, ... appended.
type headingIDs struct {
	used map[string]bool
}

var _ parser.IDs = (*headingIDs)(nil)

func newHeadingIDs() *headingIDs {
	return &headingIDs{used: map[string]bool{}}
}

func (s *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	base := Slugify(markupChars.ReplaceAllString(string(value), ""))
	if base == "" {
		base = "section"
		if kind != ast.KindHeading {
			base = "id"
		}
	}
	id := base
	for i := 1; s.used[id]; i++ {
		id = fmt.Sprintf("%s-%d", base, i)
	}
	s.used[id] = true
	return []byte(id)
}

func (s *headingIDs) Put(value []byte) {
	s.used[string(value)] = true
}

// attributeTail locates the source text after a heading's last line. ok
// reports whether it holds a {...} attribute block, i.e. the author wrote
// the id.
func attributeTail(n *ast.Heading, source []byte) (start, stop int, ok bool) {
	lines := n.Lines()
	if lines.Len() == 0 {
		return 0, 0, false
	}
	last := lines.At(lines.Len() - 1)
	end := bytes.IndexByte(source[last.Stop:], '\n')
	if end < 0 {
		end = len(source) - last.Stop
	}
	tail := bytes.TrimSpace(source[last.Stop : last.Stop+end])
	return last.Stop, last.Stop + end, len(tail) > 0 && tail[0] == '{'
}

// headingIDTransformer makes heading ids unique across the document. Ids
// written with {#id} keep their value; an automatic id that an author id
// takes over, or a repeated author id, gets the next free -N suffix.
type headingIDTransformer struct {
	ext *Extension
}

func (t *headingIDTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	var headings []*ast.Heading
	all := map[string]bool{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			if id, ok := h.AttributeString("id"); ok {
				headings = append(headings, h)
				all[attrString(id)] = true
			}
		}
		return ast.WalkContinue, nil
	})

	owner := map[string]*ast.Heading{}
	for _, h := range headings {
		if _, _, explicit := attributeTail(h, source); explicit {
			id, _ := h.AttributeString("id")
			if owner[attrString(id)] == nil {
				owner[attrString(id)] = h
			}
		}
	}
	for _, h := range headings {
		v, _ := h.AttributeString("id")
		id := attrString(v)
		switch owner[id] {
		case h:
			continue
		case nil:
			owner[id] = h
			continue
		}
		renamed := id
		for i := 1; all[renamed]; i++ {
			renamed = fmt.Sprintf("%s-%d", id, i)
		}
		all[renamed] = true
		owner[renamed] = h
		pc.IDs().Put([]byte(renamed))
		h.SetAttributeString("id", []byte(renamed))
		t.ext.idWarnings = append(t.ext.idWarnings,
			fmt.Sprintf("duplicate heading id %q renamed to %q", id, renamed))
	}
}
