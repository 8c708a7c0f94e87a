package markup

import (
	"io/fs"

	"github.com/dgallion1/scholarsite/internal/numbering"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// BrokenRef is a reference that did not resolve in the final pass.
type BrokenRef struct {
	Kind   RefKind
	Target string
}

// pass collects what one render pass observed.
type pass struct {
	missed   bool // a figure or section lookup came back absent
	stale    bool // a registration arrived after a miss
	broken   []BrokenRef
	warnings []string
	cited    map[string]bool
}

func newPass() *pass {
	return &pass{cited: map[string]bool{}}
}

// Extension adds numbered figures, numbered headings, cross-references,
// citations and charts to goldmark. An Extension is bound to the ledger of
// one document and must not be shared between documents.
type Extension struct {
	ledger     *numbering.Ledger
	references map[string]string
	data       fs.FS
	pass       *pass
	passes     int
	idWarnings []string // heading id collisions found while parsing
}

// NewExtension binds the extension to l. References maps citation keys to
// their display text; data is where chart CSV files are read from and may
// be nil. A nil ledger panics.
func NewExtension(l *numbering.Ledger, references map[string]string, data fs.FS) *Extension {
	if l == nil {
		panic(numbering.ErrNoLedger)
	}
	return &Extension{
		ledger:     l,
		references: references,
		data:       data,
		pass:       newPass(),
	}
}

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(&figureParser{}, 100)),
		parser.WithInlineParsers(util.Prioritized(&refParser{}, 100)),
		parser.WithASTTransformers(
			util.Prioritized(&chartTransformer{}, 100),
			util.Prioritized(&headingIDTransformer{ext: e}, 100),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(util.Prioritized(&nodeRenderer{ext: e}, 100)),
	)
}

// reset starts a new render pass.
func (e *Extension) reset() *pass {
	e.pass = newPass()
	return e.pass
}

func (e *Extension) miss(kind RefKind, target string) {
	e.pass.missed = true
	e.pass.broken = append(e.pass.broken, BrokenRef{Kind: kind, Target: target})
}
