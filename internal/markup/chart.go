package markup

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var chartLanguage = []byte("chart")

// chartTransformer swaps ```chart fenced code blocks for Chart nodes so the
// highlighter never sees them.
type chartTransformer struct{}

func (t *chartTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	var blocks []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fcb, ok := n.(*ast.FencedCodeBlock); ok {
			if bytes.Equal(fcb.Language(source), chartLanguage) {
				blocks = append(blocks, fcb)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, fcb := range blocks {
		var spec bytes.Buffer
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			spec.Write(seg.Value(source))
		}
		chart := &Chart{Spec: spec.Bytes()}
		parent := fcb.Parent()
		parent.ReplaceChild(parent, fcb, chart)
	}
}
