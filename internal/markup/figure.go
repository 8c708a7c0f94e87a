package markup

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var (
	figureFence = []byte(":::")
	figureWord  = []byte("figure")

	figureCountKey = parser.NewContextKey()
)

type figureParser struct{}

func (p *figureParser) Trigger() []byte {
	return []byte{':'}
}

func (p *figureParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || !bytes.HasPrefix(line[pos:], figureFence) {
		return nil, parser.NoChildren
	}
	rest := util.TrimLeftSpace(line[pos+len(figureFence):])
	if !bytes.HasPrefix(rest, figureWord) {
		return nil, parser.NoChildren
	}
	rest = rest[len(figureWord):]
	if len(rest) > 0 && !util.IsSpace(rest[0]) {
		return nil, parser.NoChildren
	}

	savedLine, savedPos := reader.Position()
	reader.Advance(len(line) - len(rest))
	attrs, _ := parser.ParseAttributes(reader)
	tail, tailSegment := reader.PeekLine()
	if !util.IsBlank(tail) {
		reader.SetPosition(savedLine, savedPos)
		return nil, parser.NoChildren
	}

	count, _ := pc.Get(figureCountKey).(int)
	count++
	pc.Set(figureCountKey, count)

	node := &Figure{open: segment}
	if v, ok := attrs.Find([]byte("id")); ok {
		node.ID = attrString(v)
	}
	if v, ok := attrs.Find([]byte("caption")); ok {
		node.Caption = attrString(v)
	}
	if node.ID == "" {
		node.ID = fmt.Sprintf("figure-%d", count)
		node.Auto = true
	}

	reader.Advance(tailSegment.Len() - trailingNewline(tail))
	return node, parser.HasChildren
}

func (p *figureParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	if innerBlockOpen(node, pc) {
		return parser.Continue | parser.HasChildren
	}
	line, segment := reader.PeekLine()
	trimmed := util.TrimLeftSpace(line)
	if bytes.HasPrefix(trimmed, figureFence) && util.IsBlank(trimmed[len(figureFence):]) {
		node.(*Figure).close = segment
		reader.Advance(segment.Len() - trailingNewline(line))
		return parser.Close
	}
	return parser.Continue | parser.HasChildren
}

// innerBlockOpen reports whether a fenced code block or a nested figure is
// still open inside node. A ":::" line then belongs to that block.
func innerBlockOpen(node ast.Node, pc parser.Context) bool {
	blocks := pc.OpenedBlocks()
	for i, b := range blocks {
		if b.Node != node {
			continue
		}
		for _, inner := range blocks[i+1:] {
			switch inner.Node.Kind() {
			case ast.KindFencedCodeBlock, KindFigure:
				return true
			}
		}
		return false
	}
	return false
}

func (p *figureParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *figureParser) CanInterruptParagraph() bool {
	return true
}

func (p *figureParser) CanAcceptIndentedLine() bool {
	return false
}

func trailingNewline(line []byte) int {
	if len(line) > 0 && line[len(line)-1] == '\n' {
		return 1
	}
	return 0
}

func attrString(v interface{}) string {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
