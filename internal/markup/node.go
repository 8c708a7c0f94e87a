package markup

import (
	"strconv"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// KindFigure is the node kind of a numbered figure block.
var KindFigure = ast.NewNodeKind("Figure")

// Figure is a numbered container block opened by "::: figure" and closed
// by ":::".
type Figure struct {
	ast.BaseBlock
	ID      string
	Caption string
	Auto    bool // ID was generated, not authored

	open  text.Segment
	close text.Segment
}

// Kind implements ast.Node.
func (n *Figure) Kind() ast.NodeKind { return KindFigure }

// Dump implements ast.Node.
func (n *Figure) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"ID":      n.ID,
		"Caption": n.Caption,
		"Auto":    strconv.FormatBool(n.Auto),
	}, nil)
}

// Anchor is the element id of the rendered figure.
func (n *Figure) Anchor() string { return FigureAnchor(n.ID) }

// FigureAnchor returns the element id used for the figure with the given id.
func FigureAnchor(id string) string { return "fig:" + id }

// RefKind is the target type of a cross-reference.
type RefKind string

const (
	RefFigure   RefKind = "fig"
	RefSection  RefKind = "sec"
	RefCitation RefKind = "cite"
)

// KindRef is the node kind of an inline {@kind target} reference.
var KindRef = ast.NewNodeKind("Ref")

// Ref is an inline cross-reference or citation.
type Ref struct {
	ast.BaseInline
	RefKind RefKind
	Target  string

	segment text.Segment
}

// Kind implements ast.Node.
func (n *Ref) Kind() ast.NodeKind { return KindRef }

// Dump implements ast.Node.
func (n *Ref) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"RefKind": string(n.RefKind),
		"Target":  n.Target,
	}, nil)
}

// KindChart is the node kind of a ```chart fenced block.
var KindChart = ast.NewNodeKind("Chart")

// Chart holds the YAML spec of an inline chart.
type Chart struct {
	ast.BaseBlock
	Spec []byte
}

// Kind implements ast.Node.
func (n *Chart) Kind() ast.NodeKind { return KindChart }

// Dump implements ast.Node.
func (n *Chart) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Spec": string(n.Spec)}, nil)
}
