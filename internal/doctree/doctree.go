package doctree

// Outline is the table of contents of a rendered document.
type Outline struct {
	Title   string   // Document title (from front matter or filename)
	Entries []*Entry // Top-level headings
}

// Entry is a heading in the outline with its nested subheadings.
type Entry struct {
	Title    string   // Heading text without the section number
	Anchor   string   // Element id the entry links to
	Number   string   // Section number, empty for unnumbered headings
	Level    int      // Heading level, 2 for h2
	Children []*Entry // Subheadings
}

// Len counts every entry in the outline.
func (o *Outline) Len() int {
	if o == nil {
		return 0
	}
	n := 0
	var walk func([]*Entry)
	walk = func(entries []*Entry) {
		for _, e := range entries {
			n++
			walk(e.Children)
		}
	}
	walk(o.Entries)
	return n
}

// Flatten returns the entries in document order.
func (o *Outline) Flatten() []*Entry {
	if o == nil {
		return nil
	}
	var out []*Entry
	var walk func([]*Entry)
	walk = func(entries []*Entry) {
		for _, e := range entries {
			out = append(out, e)
			walk(e.Children)
		}
	}
	walk(o.Entries)
	return out
}
