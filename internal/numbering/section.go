package numbering

import "strconv"

const (
	MinNumberedLevel = 2
	MaxNumberedLevel = 4
)

// Numbered reports whether headings at level receive a section number.
func Numbered(level int) bool {
	return level >= MinNumberedLevel && level <= MaxNumberedLevel
}

// Counters holds the running h2/h3/h4 counts of one document.
type Counters struct {
	H2 int
	H3 int
	H4 int
}

// Advance bumps the counter for level, resets the deeper ones and returns
// the resulting section number. Unnumbered levels leave the counters alone.
func (c *Counters) Advance(level int) SectionNumber {
	switch level {
	case 2:
		c.H2++
		c.H3 = 0
		c.H4 = 0
	case 3:
		c.H3++
		c.H4 = 0
	case 4:
		c.H4++
	}
	return SectionNumber{H2: c.H2, H3: c.H3, H4: c.H4}
}

// SectionNumber is a hierarchical (h2, h3, h4) heading number.
type SectionNumber struct {
	H2 int
	H3 int
	H4 int
}

// Format renders the number in dotted form truncated to level:
// "3" for level 2, "3.2" for level 3, "3.2.1" for level 4.
func (n SectionNumber) Format(level int) string {
	switch level {
	case 2:
		return itoa(n.H2)
	case 3:
		return itoa(n.H2) + "." + itoa(n.H3)
	case 4:
		return itoa(n.H2) + "." + itoa(n.H3) + "." + itoa(n.H4)
	}
	return ""
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
