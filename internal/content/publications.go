package content

import (
	"html/template"
	"sort"
	"strconv"
	"strings"
)

// Publication is one entry of publications.yaml.
type Publication struct {
	Title    string   `yaml:"title"`
	Authors  []string `yaml:"authors"`
	Venue    string   `yaml:"venue"`
	Year     int      `yaml:"year"`
	Abbr     string   `yaml:"abbr"`
	Award    string   `yaml:"award"`
	Abstract string   `yaml:"abstract"`
	Tags     []string `yaml:"tags"`
	URL      string   `yaml:"url"`
	Arxiv    string   `yaml:"arxiv"`
	PDF      string   `yaml:"pdf"`
	Code     string   `yaml:"code"`
	Website  string   `yaml:"website"`
	Demo     string   `yaml:"demo"`

	// Pages is filled in when PDF names a file inside the content tree.
	Pages int `yaml:"-"`
}

func parsePublications(file string, raw []byte) ([]Publication, error) {
	var pubs []Publication
	if err := decodeYAML("publications", file, raw, &pubs); err != nil {
		return nil, err
	}
	return pubs, nil
}

// Local reports whether the PDF link points into the content tree.
func (p Publication) Local() bool {
	if p.PDF == "" {
		return false
	}
	return !strings.Contains(p.PDF, "://") && !strings.HasPrefix(p.PDF, "//")
}

// AuthorsHTML joins the author list, wrapping the owner's name in <strong>.
func (p Publication) AuthorsHTML(owner string) template.HTML {
	var b strings.Builder
	for i, a := range p.Authors {
		if i > 0 {
			b.WriteString(", ")
		}
		name := template.HTMLEscapeString(a)
		if owner != "" && strings.EqualFold(strings.TrimRight(strings.TrimSpace(a), "*"), owner) {
			b.WriteString("<strong>" + name + "</strong>")
			continue
		}
		b.WriteString(name)
	}
	return template.HTML(b.String())
}

// Filter selects publications. Zero fields match everything.
type Filter struct {
	Year  int
	Tag   string
	Query string
}

// Match reports whether p passes the filter. Query is a case-insensitive
// substring test against title, authors, venue and abstract.
func (f Filter) Match(p Publication) bool {
	if f.Year != 0 && p.Year != f.Year {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, t := range p.Tags {
			if strings.EqualFold(t, f.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		hay := strings.ToLower(strings.Join(append([]string{p.Title, p.Venue, p.Abstract}, p.Authors...), "\n"))
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return f.Year == 0 && f.Tag == "" && strings.TrimSpace(f.Query) == ""
}

// Apply returns the publications matching f, preserving order.
func (f Filter) Apply(pubs []Publication) []Publication {
	var out []Publication
	for _, p := range pubs {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// YearGroup is the publications of one year.
type YearGroup struct {
	Year         int
	Publications []Publication
}

// GroupByYear groups pubs by year, newest year first. Order within a year
// follows the input.
func GroupByYear(pubs []Publication) []YearGroup {
	idx := make(map[int]int)
	var groups []YearGroup
	for _, p := range pubs {
		i, ok := idx[p.Year]
		if !ok {
			i = len(groups)
			idx[p.Year] = i
			groups = append(groups, YearGroup{Year: p.Year})
		}
		groups[i].Publications = append(groups[i].Publications, p)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Year > groups[j].Year })
	return groups
}

// Years lists the distinct publication years, newest first.
func Years(pubs []Publication) []int {
	var years []int
	for _, g := range GroupByYear(pubs) {
		years = append(years, g.Year)
	}
	return years
}

// Tags lists the distinct tags in sorted order.
func Tags(pubs []Publication) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, p := range pubs {
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// ParseFilter builds a Filter from query parameters. An unparseable year
// is ignored.
func ParseFilter(year, tag, query string) Filter {
	f := Filter{Tag: strings.TrimSpace(tag), Query: query}
	if y, err := strconv.Atoi(strings.TrimSpace(year)); err == nil {
		f.Year = y
	}
	return f
}
