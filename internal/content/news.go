package content

import (
	"html/template"
	"sort"

	"github.com/dgallion1/scholarsite/internal/markup"
	"github.com/microcosm-cc/bluemonday"
)

// NewsItem is one entry of news.yaml. Content is an HTML snippet written
// by the site author; HTML is the sanitized form safe to embed.
type NewsItem struct {
	Date    markup.Date   `yaml:"date"`
	Content string        `yaml:"content"`
	HTML    template.HTML `yaml:"-"`
}

// newsPolicy allows the markup news snippets use: links, emphasis, code
// and class attributes for styling.
func newsPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("target").OnElements("a")
	p.RequireNoFollowOnLinks(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

var sanitizer = newsPolicy()

// SanitizeHTML strips anything outside the news policy from s.
func SanitizeHTML(s string) template.HTML {
	return template.HTML(sanitizer.Sanitize(s))
}

func parseNews(file string, raw []byte) ([]NewsItem, error) {
	var items []NewsItem
	if err := decodeYAML("news", file, raw, &items); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].HTML = SanitizeHTML(items[i].Content)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Date.After(items[j].Date.Time) })
	return items, nil
}
