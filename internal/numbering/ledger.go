// Package numbering assigns figure, section and citation numbers for a single
// document render and answers lookups against them.
package numbering

// Kind identifies which counter a registration went to.
type Kind string

const (
	KindFigure   Kind = "figure"
	KindSection  Kind = "section"
	KindCitation Kind = "citation"
)

// FigureEntry maps a figure identifier to its 1-based number.
type FigureEntry struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
}

// SectionEntry maps a heading identifier to its dotted section number.
type SectionEntry struct {
	ID     string `json:"id"`
	Level  int    `json:"level"`
	Number string `json:"number"`
}

// CitationEntry maps a citation key to its 1-based sidenote number.
type CitationEntry struct {
	Key    string `json:"key"`
	Number int    `json:"number"`
}

// Change is published to subscribers whenever a new entry is registered.
type Change struct {
	Kind    Kind
	ID      string
	Label   string // "3" for figures and citations, "2.1" for sections
	Version uint64
}

// Ledger is the number store for one document render. Create one per render
// with New and discard it afterwards; it is not safe for concurrent use.
type Ledger struct {
	figures     map[string]int
	figureOrder []string

	sections     map[string]SectionEntry
	sectionOrder []string
	counters     Counters

	citations     map[string]int
	citationOrder []string

	version uint64
	subs    []*subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(Change)
}

// New returns an empty ledger with all counters at zero.
func New() *Ledger {
	return &Ledger{
		figures:   make(map[string]int),
		sections:  make(map[string]SectionEntry),
		citations: make(map[string]int),
	}
}

// RegisterFigure returns the number for id, assigning the next one if id has
// not been seen before.
func (l *Ledger) RegisterFigure(id string) int {
	if n, ok := l.figures[id]; ok {
		return n
	}
	n := len(l.figureOrder) + 1
	l.figures[id] = n
	l.figureOrder = append(l.figureOrder, id)
	l.publish(KindFigure, id, itoa(n))
	return n
}

// FigureNumber looks up a figure without registering it.
func (l *Ledger) FigureNumber(id string) (int, bool) {
	n, ok := l.figures[id]
	return n, ok
}

// RegisterSection returns the dotted number for id at the given heading
// level. Only levels 2 through 4 are numbered; any other level returns ""
// and leaves the ledger untouched.
func (l *Ledger) RegisterSection(id string, level int) string {
	if e, ok := l.sections[id]; ok {
		return e.Number
	}
	if !Numbered(level) {
		return ""
	}
	num := l.counters.Advance(level).Format(level)
	l.sections[id] = SectionEntry{ID: id, Level: level, Number: num}
	l.sectionOrder = append(l.sectionOrder, id)
	l.publish(KindSection, id, num)
	return num
}

// SectionNumber looks up a section without registering it.
func (l *Ledger) SectionNumber(id string) (string, bool) {
	e, ok := l.sections[id]
	if !ok {
		return "", false
	}
	return e.Number, true
}

// RegisterCitation numbers citation keys in first-use order. Citations have
// their own counter, independent of figures.
func (l *Ledger) RegisterCitation(key string) int {
	if n, ok := l.citations[key]; ok {
		return n
	}
	n := len(l.citationOrder) + 1
	l.citations[key] = n
	l.citationOrder = append(l.citationOrder, key)
	l.publish(KindCitation, key, itoa(n))
	return n
}

// CitationNumber looks up a citation without registering it.
func (l *Ledger) CitationNumber(key string) (int, bool) {
	n, ok := l.citations[key]
	return n, ok
}

// Version increases by one for every new entry in the ledger.
func (l *Ledger) Version() uint64 {
	return l.version
}

// Subscribe registers fn to be called after every new registration. The
// returned function removes the subscription.
func (l *Ledger) Subscribe(fn func(Change)) func() {
	l.nextSub++
	s := &subscriber{id: l.nextSub, fn: fn}
	l.subs = append(l.subs, s)
	return func() {
		for i, cur := range l.subs {
			if cur.id == s.id {
				l.subs = append(l.subs[:i], l.subs[i+1:]...)
				return
			}
		}
	}
}

func (l *Ledger) publish(kind Kind, id, label string) {
	l.version++
	if len(l.subs) == 0 {
		return
	}
	c := Change{Kind: kind, ID: id, Label: label, Version: l.version}
	// Copy so a callback may unsubscribe itself.
	subs := make([]*subscriber, len(l.subs))
	copy(subs, l.subs)
	for _, s := range subs {
		s.fn(c)
	}
}

// Figures returns the registered figures in number order.
func (l *Ledger) Figures() []FigureEntry {
	out := make([]FigureEntry, 0, len(l.figureOrder))
	for _, id := range l.figureOrder {
		out = append(out, FigureEntry{ID: id, Number: l.figures[id]})
	}
	return out
}

// Sections returns the registered sections in registration order.
func (l *Ledger) Sections() []SectionEntry {
	out := make([]SectionEntry, 0, len(l.sectionOrder))
	for _, id := range l.sectionOrder {
		out = append(out, l.sections[id])
	}
	return out
}

// Citations returns the registered citation keys in number order.
func (l *Ledger) Citations() []CitationEntry {
	out := make([]CitationEntry, 0, len(l.citationOrder))
	for _, key := range l.citationOrder {
		out = append(out, CitationEntry{Key: key, Number: l.citations[key]})
	}
	return out
}
