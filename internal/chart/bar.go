package chart

import "math"

// drawBar renders one group of bars per category, one bar per series.
func (f *frame) drawBar() {
	c := f.chart
	var all []float64
	for _, s := range c.Series {
		all = append(all, s.Values...)
	}
	y := f.yDomain(all)
	f.yAxis(y)

	names := make([]string, len(c.Series))
	for i, s := range c.Series {
		names[i] = s.Name
	}
	x0 := Band{Domain: c.Categories, R0: f.left, R1: f.left + f.width, Padding: 0.2}
	x1 := Band{Domain: names, R0: 0, R1: x0.Bandwidth(), Padding: 0.05}

	zero := y.Map(0)
	for ci, cat := range c.Categories {
		gx := x0.Pos(ci)
		for si, s := range c.Series {
			v := s.Values[ci]
			top := y.Map(math.Max(v, 0))
			h := math.Abs(y.Map(v) - zero)
			f.canvas.Rect(px(gx+x1.Pos(si)), px(top), px(x1.Bandwidth()), px(h),
				`class="bar"`, "fill:"+s.Color)
		}
		f.canvas.Text(px(gx+x0.Bandwidth()/2), px(f.top+f.height)+18, cat, "text-anchor:middle;fill:#374151")
	}

	base := px(zero)
	f.canvas.Line(px(f.left), base, px(f.left+f.width), base, "stroke:#9ca3af;stroke-width:1")
	f.xLabel()
}
