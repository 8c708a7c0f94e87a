package chart

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
)

type margins struct {
	top, right, bottom, left float64
}

var defaultMargins = margins{top: 40, right: 150, bottom: 60, left: 60}

// frame is the plotting area of one chart and the canvas it draws on.
type frame struct {
	canvas *svg.SVG
	chart  *Chart
	left   float64
	top    float64
	width  float64
	height float64
}

func newFrame(canvas *svg.SVG, c *Chart) *frame {
	m := defaultMargins
	return &frame{
		canvas: canvas,
		chart:  c,
		left:   m.left,
		top:    m.top,
		width:  math.Max(10, float64(c.Width)-m.left-m.right),
		height: math.Max(10, float64(c.Height)-m.top-m.bottom),
	}
}

// Render writes c as a standalone <svg> element suitable for inlining in
// HTML.
func Render(w io.Writer, c *Chart) error {
	if err := c.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(c.Width, c.Height, 0, 0, c.Width, c.Height)
	if c.Title != "" {
		canvas.Title(c.Title)
	}
	canvas.Group(`class="chart chart-`+string(c.Kind)+`"`, "font-family:system-ui,sans-serif;font-size:12px")

	f := newFrame(canvas, c)
	if c.Title != "" {
		canvas.Text(c.Width/2, 20, c.Title, "text-anchor:middle;font-size:14px;font-weight:600")
	}

	switch c.Kind {
	case KindBar:
		f.drawBar()
	case KindLine:
		f.drawLine(true)
	case KindScatter:
		f.drawLine(false)
	case KindRadar:
		f.drawRadar()
	case KindArea:
		f.drawArea()
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidChart, c.Kind)
	}
	f.drawLegend()

	canvas.Gend()
	canvas.End()

	out := buf.Bytes()
	// Drop the XML prolog so the markup can sit inside an HTML document.
	if i := bytes.Index(out, []byte("<svg")); i > 0 {
		out = out[i:]
	}
	_, err := w.Write(out)
	return err
}

// yAxis draws horizontal grid lines with tick labels and the axis title.
func (f *frame) yAxis(y Linear) {
	for _, t := range y.Ticks(5) {
		py := px(y.Map(t))
		f.canvas.Line(px(f.left), py, px(f.left+f.width), py, `class="grid"`, "stroke:#e5e7eb;stroke-width:1")
		f.canvas.Text(px(f.left)-8, py+4, formatTick(t), "text-anchor:end;fill:#6b7280")
	}
	if f.chart.Y.Label != "" {
		x, yy := px(f.left)-44, px(f.top+f.height/2)
		f.canvas.Text(x, yy, f.chart.Y.Label,
			fmt.Sprintf(`transform="rotate(-90 %d %d)"`, x, yy), "text-anchor:middle;fill:#374151")
	}
}

// xAxisLinear draws the baseline with numeric tick labels.
func (f *frame) xAxisLinear(x Linear) {
	base := px(f.top + f.height)
	f.canvas.Line(px(f.left), base, px(f.left+f.width), base, "stroke:#9ca3af;stroke-width:1")
	for _, t := range x.Ticks(6) {
		tx := px(x.Map(t))
		f.canvas.Line(tx, base, tx, base+5, "stroke:#9ca3af;stroke-width:1")
		f.canvas.Text(tx, base+18, formatTick(t), "text-anchor:middle;fill:#6b7280")
	}
	f.xLabel()
}

func (f *frame) xLabel() {
	if f.chart.X.Label != "" {
		f.canvas.Text(px(f.left+f.width/2), px(f.top+f.height)+42, f.chart.X.Label, "text-anchor:middle;fill:#374151")
	}
}

func (f *frame) drawLegend() {
	x := px(f.left + f.width + 16)
	y := px(f.top)
	for i, s := range f.chart.Series {
		row := y + i*20
		f.canvas.Rect(x, row, 12, 12, `class="legend-swatch"`, "fill:"+s.Color)
		f.canvas.Text(x+18, row+10, s.Name, "fill:#374151")
	}
}

// yDomain returns a nice linear y scale covering values and the configured
// axis bounds. Zero is always included.
func (f *frame) yDomain(values []float64) Linear {
	lo, hi := extent(values)
	lo = math.Min(lo, 0)
	hi = math.Max(hi, 0)
	if f.chart.Y.Min != nil {
		lo = *f.chart.Y.Min
	}
	if f.chart.Y.Max != nil {
		hi = *f.chart.Y.Max
	}
	if lo == hi {
		hi = lo + 1
	}
	s := Linear{D0: lo, D1: hi, R0: f.top + f.height, R1: f.top}
	if f.chart.Y.Min == nil && f.chart.Y.Max == nil {
		s = s.Nice(5)
	}
	return s
}

func px(v float64) int {
	return int(math.Round(v))
}

func formatTick(v float64) string {
	// Round away binary noise before printing.
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}
