package content

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/scholarsite/internal/markup"
)

// Reference is the resolved citation block of a post.
type Reference struct {
	Author string
	Title  string
	Year   int
	URL    string
	DOI    string
	Key    string
}

// Cite resolves the citation block for p. Missing title, year and URL fall
// back to the post's own metadata; baseURL is joined with the post path.
// It returns nil when the post has no citation header.
func Cite(p Post, baseURL string) *Reference {
	c := p.Meta.Citation
	if c == nil {
		return nil
	}
	r := &Reference{
		Author: c.Author,
		Title:  c.Title,
		Year:   c.Year,
		URL:    c.URL,
		DOI:    c.DOI,
		Key:    c.BibtexKey,
	}
	if r.Title == "" {
		r.Title = p.Meta.Title
	}
	if r.Year == 0 && !p.Meta.Date.IsZero() {
		r.Year = p.Meta.Date.Year()
	}
	if r.URL == "" {
		r.URL = strings.TrimRight(baseURL, "/") + "/blog/" + p.Slug
	}
	if r.Key == "" {
		r.Key = defaultKey(r.Author, r.Year, p.Slug)
	}
	return r
}

// defaultKey builds "lastnameYEARslug" from the first author.
func defaultKey(author string, year int, slug string) string {
	first := strings.TrimSpace(strings.Split(author, " and ")[0])
	last := first
	if i := strings.IndexByte(first, ','); i >= 0 {
		last = first[:i]
	} else if f := strings.Fields(first); len(f) > 0 {
		last = f[len(f)-1]
	}
	key := strings.ReplaceAll(markup.Slugify(last), "-", "")
	if year > 0 {
		key += strconv.Itoa(year)
	}
	if word := strings.SplitN(slug, "-", 2)[0]; word != "" {
		key += word
	}
	return key
}

// Plain formats the reference as a sentence.
func (r *Reference) Plain() string {
	return fmt.Sprintf("%s, “%s”, %d.", r.Author, r.Title, r.Year)
}

// BibTeX formats the reference as a @misc entry.
func (r *Reference) BibTeX() string {
	var b strings.Builder
	fmt.Fprintf(&b, "@misc{%s,\n", r.Key)
	fmt.Fprintf(&b, "  author = {%s},\n", r.Author)
	fmt.Fprintf(&b, "  title = {%s},\n", r.Title)
	fmt.Fprintf(&b, "  year = {%d},\n", r.Year)
	fmt.Fprintf(&b, "  howpublished = {\\url{%s}},", r.URL)
	if r.DOI != "" {
		fmt.Fprintf(&b, "\n  doi = {%s},", r.DOI)
	}
	b.WriteString("\n}")
	return b.String()
}
