// Package markup renders Markdown posts with numbered sections, numbered
// figures, cross-references, citation sidenotes and inline charts.
package markup

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/dgallion1/scholarsite/internal/doctree"
	"github.com/dgallion1/scholarsite/internal/excerpt"
	"github.com/dgallion1/scholarsite/internal/numbering"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Options configures a Renderer.
type Options struct {
	PreScan        bool   // register figures before the first pass
	MaxPasses      int    // upper bound on render passes per document
	HighlightStyle string // chroma style name
	SummaryWords   int    // excerpt length when front matter has no summary
	Data           fs.FS  // chart data files, may be nil
}

// DefaultOptions returns the options used by the site builder.
func DefaultOptions() Options {
	return Options{
		PreScan:        true,
		MaxPasses:      3,
		HighlightStyle: "github",
		SummaryWords:   40,
	}
}

// CitationRef is a cited reference in first-use order.
type CitationRef struct {
	Key    string
	Number int
	Text   string
	Anchor string
}

// Result is a rendered document.
type Result struct {
	Meta           FrontMatter
	HTML           string
	TOC            *doctree.Outline
	Figures        []numbering.FigureEntry
	Sections       []numbering.SectionEntry
	Citations      []CitationRef
	Broken         []BrokenRef
	Warnings       []string
	Passes         int
	Words          int
	ReadingMinutes int
	Summary        string
}

// Renderer converts Markdown documents. It is safe for concurrent use;
// every call gets its own ledger.
type Renderer struct {
	opts Options
	log  *slog.Logger
}

// NewRenderer creates a Renderer. A nil logger uses slog.Default.
func NewRenderer(opts Options, log *slog.Logger) *Renderer {
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = 1
	}
	if opts.HighlightStyle == "" {
		opts.HighlightStyle = "github"
	}
	if opts.SummaryWords <= 0 {
		opts.SummaryWords = 40
	}
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{opts: opts, log: log}
}

// document is one parsed source bound to its ledger.
type document struct {
	meta   FrontMatter
	body   []byte
	root   ast.Node
	ledger *numbering.Ledger
	ext    *Extension
	md     goldmark.Markdown
}

func (r *Renderer) parse(ctx context.Context, src []byte) (*document, error) {
	meta, body, err := ParseFrontMatter(src)
	if err != nil {
		return nil, err
	}
	ext := NewExtension(numbering.MustFromContext(ctx), meta.References, r.opts.Data)
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle(r.opts.HighlightStyle),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
			ext,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithHeadingAttribute(),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	pc := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(pc))
	return &document{
		meta:   meta,
		body:   body,
		root:   root,
		ledger: ext.ledger,
		ext:    ext,
		md:     md,
	}, nil
}

// Render converts one document. name is used for the title fallback and
// error messages.
func (r *Renderer) Render(ctx context.Context, name string, src []byte) (*Result, error) {
	doc, out, err := r.render(ctx, name, src)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Meta:      doc.meta,
		HTML:      out.String(),
		Figures:   doc.ledger.Figures(),
		Sections:  doc.ledger.Sections(),
		Broken:    doc.ext.pass.broken,
		Warnings:  append(slices.Clone(doc.ext.idWarnings), doc.ext.pass.warnings...),
		Passes:    doc.ext.passes,
		Citations: citations(doc.ledger, doc.meta.References),
	}

	title := doc.meta.Title
	if title == "" {
		title = name
	}
	s, err := scanHTML(out.Bytes(), title)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	res.TOC = s.outline
	res.Words = excerpt.CountWords(s.text)
	res.ReadingMinutes = excerpt.ReadingMinutes(s.text)
	res.Summary = doc.meta.Summary
	if res.Summary == "" {
		res.Summary = excerpt.Summarize(s.prose, r.opts.SummaryWords)
	}
	return res, nil
}

// render runs passes until no resolver observed a registration that
// arrived after it missed, or MaxPasses is reached.
func (r *Renderer) render(ctx context.Context, name string, src []byte) (*document, *bytes.Buffer, error) {
	ctx = numbering.WithLedger(ctx, numbering.New())
	doc, err := r.parse(ctx, src)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	if r.opts.PreScan {
		preScan(doc.root, doc.ledger)
	}

	ext := doc.ext
	cancel := doc.ledger.Subscribe(func(numbering.Change) {
		if ext.pass.missed {
			ext.pass.stale = true
		}
	})
	defer cancel()

	var buf bytes.Buffer
	for ext.passes = 1; ; ext.passes++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		p := ext.reset()
		buf.Reset()
		if err := doc.md.Renderer().Render(&buf, doc.body, doc.root); err != nil {
			return nil, nil, fmt.Errorf("render %s: %w", name, err)
		}
		if !p.stale || ext.passes >= r.opts.MaxPasses {
			break
		}
		r.log.Debug("re-rendering for late registrations", "doc", name, "pass", ext.passes)
	}
	for _, b := range ext.pass.broken {
		r.log.Warn("unresolved reference", "doc", name, "kind", string(b.Kind), "target", b.Target)
	}
	return doc, &buf, nil
}

// preScan registers every figure in source order so references that come
// before a figure resolve on the first pass.
func preScan(root ast.Node, l *numbering.Ledger) int {
	n := 0
	_ = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && node.Kind() == KindFigure {
			l.RegisterFigure(node.(*Figure).ID)
			n++
		}
		return ast.WalkContinue, nil
	})
	return n
}

func citations(l *numbering.Ledger, refs map[string]string) []CitationRef {
	entries := l.Citations()
	out := make([]CitationRef, 0, len(entries))
	for _, c := range entries {
		out = append(out, CitationRef{
			Key:    c.Key,
			Number: c.Number,
			Text:   refs[c.Key],
			Anchor: CitationAnchor(c.Number),
		})
	}
	return out
}
