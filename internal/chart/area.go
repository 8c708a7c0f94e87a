package chart

// layer is one series of a stacked area chart: for each category, the
// bottom and top of the band the series occupies.
type layer struct {
	base []float64
	top  []float64
}

// stack accumulates series values bottom-up in declaration order.
func stack(series []Series, n int) []layer {
	layers := make([]layer, len(series))
	running := make([]float64, n)
	for si, s := range series {
		l := layer{base: make([]float64, n), top: make([]float64, n)}
		for i := 0; i < n; i++ {
			l.base[i] = running[i]
			running[i] += s.Values[i]
			l.top[i] = running[i]
		}
		layers[si] = l
	}
	return layers
}

// drawArea renders stacked areas across evenly spaced categories.
func (f *frame) drawArea() {
	c := f.chart
	n := len(c.Categories)
	layers := stack(c.Series, n)

	var tops []float64
	if len(layers) > 0 {
		tops = layers[len(layers)-1].top
	}
	y := f.yDomain(tops)
	f.yAxis(y)

	xAt := func(i int) float64 {
		if n == 1 {
			return f.left + f.width/2
		}
		return f.left + f.width*float64(i)/float64(n-1)
	}

	for si, l := range layers {
		xs := make([]int, 0, 2*n)
		ys := make([]int, 0, 2*n)
		for i := 0; i < n; i++ {
			xs = append(xs, px(xAt(i)))
			ys = append(ys, px(y.Map(l.top[i])))
		}
		for i := n - 1; i >= 0; i-- {
			xs = append(xs, px(xAt(i)))
			ys = append(ys, px(y.Map(l.base[i])))
		}
		color := c.Series[si].Color
		f.canvas.Polygon(xs, ys, `class="series-area"`, "fill:"+color+";fill-opacity:0.8;stroke:"+color)
	}

	base := px(f.top + f.height)
	f.canvas.Line(px(f.left), base, px(f.left+f.width), base, "stroke:#9ca3af;stroke-width:1")
	for i, cat := range c.Categories {
		f.canvas.Text(px(xAt(i)), base+18, cat, "text-anchor:middle;fill:#374151")
	}
	f.xLabel()
}
