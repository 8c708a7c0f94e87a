package chart

import "math"

// drawRadar renders one closed polygon per series over evenly spaced axes,
// one axis per category, starting at twelve o'clock.
func (f *frame) drawRadar() {
	c := f.chart
	cx := f.left + f.width/2
	cy := f.top + f.height/2
	radius := math.Min(f.width, f.height)/2 - 20

	var all []float64
	for _, s := range c.Series {
		all = append(all, s.Values...)
	}
	_, hi := extent(all)
	if c.Y.Max != nil {
		hi = *c.Y.Max
	}
	if hi <= 0 {
		hi = 1
	}
	r := Linear{D0: 0, D1: hi, R0: 0, R1: radius}
	if c.Y.Max == nil {
		r = r.Nice(4)
	}

	n := len(c.Categories)
	point := func(i int, dist float64) (int, int) {
		a := radarAngle(i, n)
		return px(cx + dist*math.Cos(a)), px(cy + dist*math.Sin(a))
	}

	for _, t := range r.Ticks(4) {
		if t == 0 {
			continue
		}
		xs, ys := make([]int, n), make([]int, n)
		for i := 0; i < n; i++ {
			xs[i], ys[i] = point(i, r.Map(t))
		}
		f.canvas.Polygon(xs, ys, `class="grid"`, "fill:none;stroke:#e5e7eb;stroke-width:1")
		lx, ly := point(0, r.Map(t))
		f.canvas.Text(lx+4, ly, formatTick(t), "fill:#9ca3af;font-size:10px")
	}
	for i, cat := range c.Categories {
		ex, ey := point(i, radius)
		f.canvas.Line(px(cx), px(cy), ex, ey, "stroke:#d1d5db;stroke-width:1")
		lx, ly := point(i, radius+14)
		f.canvas.Text(lx, ly+4, cat, "text-anchor:middle;fill:#374151")
	}

	for _, s := range c.Series {
		xs, ys := make([]int, n), make([]int, n)
		for i, v := range s.Values {
			xs[i], ys[i] = point(i, r.Map(v))
		}
		f.canvas.Polygon(xs, ys, `class="series-area"`,
			"fill:"+s.Color+";fill-opacity:0.15;stroke:"+s.Color+";stroke-width:2")
	}
}

func radarAngle(i, n int) float64 {
	return -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
}
