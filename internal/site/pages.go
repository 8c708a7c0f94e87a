package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/dgallion1/scholarsite/internal/content"
	"github.com/dgallion1/scholarsite/internal/markup"
	"github.com/dgallion1/scholarsite/web"
)

// Page templates, each parsed together with layout.html.
const (
	pageHome         = "home"
	pagePublications = "publications"
	pageNews         = "news"
	pageBlog         = "blog"
	pagePost         = "post"
	pageNotFound     = "notfound"
)

var pageNames = []string{pageHome, pagePublications, pageNews, pageBlog, pagePost, pageNotFound}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"shortDate": func(d markup.Date) string {
		if d.IsZero() {
			return ""
		}
		return d.Format("Jan 2, 2006")
	},
	"pdfHref": func(root, pdf string) string {
		if (content.Publication{PDF: pdf}).Local() {
			return root + strings.TrimPrefix(pdf, "/")
		}
		return pdf
	},
}

type pages struct {
	byName map[string]*template.Template
}

func parsePages(tfs fs.FS) (*pages, error) {
	base, err := template.New("base").Funcs(templateFuncs).ParseFS(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	p := &pages{byName: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		t, err := clone.ParseFS(tfs, name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		p.byName[name] = t
	}
	return p, nil
}

func defaultPages() (*pages, error) {
	tfs, err := web.TemplateFS()
	if err != nil {
		return nil, err
	}
	return parsePages(tfs)
}

// pageData is what every template receives.
type pageData struct {
	Site        content.Site
	Root        string // URL path prefix ending in "/"
	Title       string
	Description string
	Active      string // nav item
	Year        int
	Body        any
}

// execute renders into a buffer first so a template error never leaves a
// half-written response.
func (p *pages) execute(w io.Writer, name string, data pageData) error {
	t, ok := p.byName[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

type homeBody struct {
	About    template.HTML
	News     []content.NewsItem
	MoreNews bool
}

type newsBody struct {
	News []content.NewsItem
}

type publicationsBody struct {
	Filter content.Filter
	Groups []content.YearGroup
	Years  []int
	Tags   []string
}

type blogBody struct {
	Posts []*Post
}

type notFoundBody struct {
	Message string
}
