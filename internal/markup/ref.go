package markup

import (
	"regexp"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// refPattern matches {@fig ID}, {@sec ID} and {@cite KEY}. Other kinds are
// parsed too so they can be reported as invalid instead of leaking braces.
var refPattern = regexp.MustCompile(`^\{@([A-Za-z]+)\s+([^\s{}]+)\s*\}`)

type refParser struct{}

func (p *refParser) Trigger() []byte {
	return []byte{'{'}
}

func (p *refParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	m := refPattern.FindSubmatch(line)
	if m == nil {
		return nil
	}
	block.Advance(len(m[0]))
	return &Ref{
		RefKind: RefKind(m[1]),
		Target:  string(m[2]),
		segment: text.NewSegment(segment.Start, segment.Start+len(m[0])),
	}
}
