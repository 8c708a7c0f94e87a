package markup

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/dgallion1/scholarsite/internal/chart"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

type nodeRenderer struct {
	ext *Extension
}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
	reg.Register(KindFigure, r.renderFigure)
	reg.Register(KindRef, r.renderRef)
	reg.Register(KindChart, r.renderChart)
}

// renderHeading numbers h2-h4 through the ledger. Other levels keep their
// id but get no number.
func (r *nodeRenderer) renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	if !entering {
		_, _ = w.WriteString("</h")
		_ = w.WriteByte("0123456"[n.Level])
		_, _ = w.WriteString(">\n")
		return ast.WalkContinue, nil
	}

	var number string
	if id, ok := n.AttributeString("id"); ok {
		number = r.ext.ledger.RegisterSection(attrString(id), n.Level)
	}
	_, _ = w.WriteString("<h")
	_ = w.WriteByte("0123456"[n.Level])
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, html.HeadingAttributeFilter)
	}
	_ = w.WriteByte('>')
	if number != "" {
		_, _ = w.WriteString(`<span class="section-number">`)
		_, _ = w.WriteString(number)
		_, _ = w.WriteString(`</span> `)
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderFigure(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*Figure)
	number := r.ext.ledger.RegisterFigure(n.ID)
	if entering {
		_, _ = fmt.Fprintf(w, `<figure id="%s" class="figure">`+"\n", util.EscapeHTML([]byte(n.Anchor())))
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<figcaption><span class="figure-label">`)
	_, _ = w.WriteString(figureLabel(number))
	_, _ = w.WriteString(`</span>`)
	if n.Caption != "" {
		_, _ = w.WriteString(": ")
		_, _ = w.Write(util.EscapeHTML([]byte(n.Caption)))
	}
	_, _ = w.WriteString("</figcaption>\n</figure>\n")
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderRef(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Ref)
	l := r.ext.ledger
	switch n.RefKind {
	case RefFigure:
		if number, ok := l.FigureNumber(n.Target); ok {
			writeXref(w, FigureAnchor(n.Target), figureLabel(number))
		} else {
			r.ext.miss(n.RefKind, n.Target)
			writeMissing(w, missingLabel(n.RefKind, n.Target))
		}
	case RefSection:
		if number, ok := l.SectionNumber(n.Target); ok {
			writeXref(w, n.Target, sectionLabel(number))
		} else {
			r.ext.miss(n.RefKind, n.Target)
			writeMissing(w, missingLabel(n.RefKind, n.Target))
		}
	case RefCitation:
		r.renderCitation(w, n)
	default:
		r.ext.pass.broken = append(r.ext.pass.broken, BrokenRef{Kind: n.RefKind, Target: n.Target})
		writeMissing(w, missingLabel(n.RefKind, n.Target))
	}
	return ast.WalkSkipChildren, nil
}

// renderCitation numbers a citation on first use. The sidenote carrying
// the reference text is emitted once; later uses only link to it.
func (r *nodeRenderer) renderCitation(w util.BufWriter, n *Ref) {
	text, ok := r.ext.references[n.Target]
	if !ok {
		r.ext.pass.broken = append(r.ext.pass.broken, BrokenRef{Kind: n.RefKind, Target: n.Target})
		writeMissing(w, missingLabel(n.RefKind, n.Target))
		return
	}
	num := r.ext.ledger.RegisterCitation(n.Target)
	number, anchor := strconv.Itoa(num), CitationAnchor(num)
	if r.ext.pass.cited[n.Target] {
		_, _ = fmt.Fprintf(w, `<sup class="citation"><a href="#%s">%s</a></sup>`, anchor, number)
		return
	}
	r.ext.pass.cited[n.Target] = true
	_, _ = fmt.Fprintf(w, `<sup class="citation" id="%s-ref"><a href="#%s">%s</a></sup>`, anchor, anchor, number)
	_, _ = fmt.Fprintf(w, `<span class="sidenote" id="%s"><sup class="sidenote-number">%s</sup> `, anchor, number)
	_, _ = w.Write(util.EscapeHTML([]byte(text)))
	_, _ = w.WriteString(`</span>`)
}

func (r *nodeRenderer) renderChart(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Chart)
	var svg bytes.Buffer
	c, err := chart.Parse(n.Spec, r.ext.data)
	if err == nil {
		err = chart.Render(&svg, c)
	}
	if err != nil {
		r.ext.pass.warnings = append(r.ext.pass.warnings, err.Error())
		_, _ = w.WriteString(`<div class="chart-error">`)
		_, _ = w.Write(util.EscapeHTML([]byte(err.Error())))
		_, _ = w.WriteString("</div>\n")
		return ast.WalkSkipChildren, nil
	}
	_, _ = fmt.Fprintf(w, `<div class="chart chart-%s">`, c.Kind)
	_, _ = w.Write(svg.Bytes())
	_, _ = w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}

func writeXref(w util.BufWriter, anchor, label string) {
	_, _ = w.WriteString(`<a class="xref" href="#`)
	_, _ = w.Write(util.EscapeHTML([]byte(anchor)))
	_, _ = w.WriteString(`">`)
	_, _ = w.WriteString(label)
	_, _ = w.WriteString(`</a>`)
}

func writeMissing(w util.BufWriter, label string) {
	_, _ = w.WriteString(`<span class="xref-missing">`)
	_, _ = w.Write(util.EscapeHTML([]byte(label)))
	_, _ = w.WriteString(`</span>`)
}

// CitationAnchor is the element id of the sidenote for citation n.
func CitationAnchor(n int) string { return "cite-" + strconv.Itoa(n) }

func figureLabel(n int) string { return "Figure " + strconv.Itoa(n) }

func sectionLabel(number string) string { return "Section " + number }

func missingLabel(kind RefKind, target string) string {
	switch kind {
	case RefFigure:
		return "[Figure " + target + " not found]"
	case RefSection:
		return "[Section " + target + " not found]"
	case RefCitation:
		return "[Citation " + target + " not found]"
	}
	return "[Invalid ref]"
}
