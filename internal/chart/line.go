package chart

// drawLine renders point series. With connect set, consecutive points of a
// series are joined (line chart); otherwise points stand alone and carry
// their labels (scatter chart).
func (f *frame) drawLine(connect bool) {
	c := f.chart
	var xs, ys []float64
	for _, s := range c.Series {
		for _, p := range s.Points {
			xs = append(xs, p[0])
			ys = append(ys, p[1])
		}
	}

	xlo, xhi := extent(xs)
	if c.X.Min != nil {
		xlo = *c.X.Min
	}
	if c.X.Max != nil {
		xhi = *c.X.Max
	}
	if xlo == xhi {
		xlo, xhi = xlo-1, xhi+1
	}
	x := Linear{D0: xlo, D1: xhi, R0: f.left, R1: f.left + f.width}
	if c.X.Min == nil && c.X.Max == nil {
		x = x.Nice(6)
	}

	ylo, yhi := extent(ys)
	if !connect {
		// Scatter plots do not need a zero baseline.
		pad := (yhi - ylo) * 0.1
		if pad == 0 {
			pad = 1
		}
		ylo, yhi = ylo-pad, yhi+pad
	}
	var y Linear
	if connect {
		y = f.yDomain(ys)
	} else {
		if c.Y.Min != nil {
			ylo = *c.Y.Min
		}
		if c.Y.Max != nil {
			yhi = *c.Y.Max
		}
		y = Linear{D0: ylo, D1: yhi, R0: f.top + f.height, R1: f.top}.Nice(5)
	}

	f.yAxis(y)
	f.xAxisLinear(x)

	for _, s := range c.Series {
		if connect && len(s.Points) > 1 {
			lx := make([]int, len(s.Points))
			ly := make([]int, len(s.Points))
			for i, p := range s.Points {
				lx[i] = px(x.Map(p[0]))
				ly[i] = px(y.Map(p[1]))
			}
			f.canvas.Polyline(lx, ly, `class="series-line"`, "fill:none;stroke-width:2;stroke:"+s.Color)
		}
		r := 4
		if !connect {
			r = 6
		}
		for i, p := range s.Points {
			cx, cy := px(x.Map(p[0])), px(y.Map(p[1]))
			f.canvas.Circle(cx, cy, r, `class="point"`, "fill:"+s.Color+";stroke:#ffffff;stroke-width:1")
			if i < len(s.Labels) && s.Labels[i] != "" {
				f.canvas.Text(cx+8, cy-8, s.Labels[i], "fill:#374151;font-size:11px")
			}
		}
	}
}
