package chart

import "math"

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// Linear maps the continuous domain [D0, D1] onto the range [R0, R1].
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

// Map projects v from the domain into the range.
func (s Linear) Map(v float64) float64 {
	if s.D1 == s.D0 {
		return (s.R0 + s.R1) / 2
	}
	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

// Nice widens the domain to round tick boundaries.
func (s Linear) Nice(count int) Linear {
	lo, hi := s.D0, s.D1
	if hi < lo {
		lo, hi = hi, lo
	}
	inc := tickIncrement(lo, hi, count)
	if inc == 0 || math.IsInf(inc, 0) || math.IsNaN(inc) {
		return s
	}
	if inc > 0 {
		lo = math.Floor(lo/inc) * inc
		hi = math.Ceil(hi/inc) * inc
	} else {
		lo = math.Floor(lo*-inc) / -inc
		hi = math.Ceil(hi*-inc) / -inc
	}
	if s.D1 < s.D0 {
		lo, hi = hi, lo
	}
	return Linear{D0: lo, D1: hi, R0: s.R0, R1: s.R1}
}

// Ticks returns roughly count evenly spaced round values inside the domain.
func (s Linear) Ticks(count int) []float64 {
	lo, hi := s.D0, s.D1
	if hi < lo {
		lo, hi = hi, lo
	}
	if count <= 0 {
		return nil
	}
	if lo == hi {
		return []float64{lo}
	}
	inc := tickIncrement(lo, hi, count)
	if inc == 0 || math.IsInf(inc, 0) || math.IsNaN(inc) {
		return nil
	}
	var ticks []float64
	if inc > 0 {
		i0 := math.Ceil(lo / inc)
		i1 := math.Floor(hi / inc)
		for i := i0; i <= i1; i++ {
			ticks = append(ticks, i*inc)
		}
	} else {
		inv := -inc
		i0 := math.Ceil(lo * inv)
		i1 := math.Floor(hi * inv)
		for i := i0; i <= i1; i++ {
			ticks = append(ticks, i/inv)
		}
	}
	return ticks
}

// tickIncrement picks a 1, 2 or 5 times power-of-ten step. A negative result
// -k stands for a step of 1/k, which keeps fractional ticks exact.
func tickIncrement(lo, hi float64, count int) float64 {
	step := (hi - lo) / math.Max(0, float64(count))
	power := math.Floor(math.Log10(step))
	errRatio := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case errRatio >= e10:
		factor = 10
	case errRatio >= e5:
		factor = 5
	case errRatio >= e2:
		factor = 2
	}
	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}

// Band divides a range into equal bands, one per domain value.
type Band struct {
	Domain  []string
	R0, R1  float64
	Padding float64 // fraction of a step left empty, inner and outer
}

func (b Band) step() float64 {
	n := float64(len(b.Domain))
	return (b.R1 - b.R0) / math.Max(1, n-b.Padding+b.Padding*2)
}

// Bandwidth is the width of a single band.
func (b Band) Bandwidth() float64 {
	return b.step() * (1 - b.Padding)
}

// Pos returns the start of the band at index i.
func (b Band) Pos(i int) float64 {
	n := float64(len(b.Domain))
	step := b.step()
	start := b.R0 + (b.R1-b.R0-step*(n-b.Padding))/2
	return start + step*float64(i)
}

// extent returns the min and max of values, or (0, 0) when empty.
func extent(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
