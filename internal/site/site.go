// Package site builds the academic homepage from a content tree: it loads
// the data, renders posts with numbered sections and figures, and writes
// pages either to an HTTP response or to a static output directory.
package site

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/dgallion1/scholarsite/internal/content"
	"github.com/dgallion1/scholarsite/internal/doctree"
	"github.com/dgallion1/scholarsite/internal/markup"
)

// Post is a rendered blog post.
type Post struct {
	content.Post
	Result    *markup.Result
	Reference *content.Reference // nil without a citation header
}

func (p *Post) Title() string { return p.Meta.Title }
func (p *Post) Date() markup.Date { return p.Meta.Date }
func (p *Post) HTML() template.HTML { return template.HTML(p.Result.HTML) }
func (p *Post) TOC() *doctree.Outline { return p.Result.TOC }
func (p *Post) ReadingMinutes() int { return p.Result.ReadingMinutes }
func (p *Post) Summary() string { return p.Result.Summary }
func (p *Post) Tags() []string { return p.Meta.Tags }

// Site is the immutable result of a build.
type Site struct {
	BuildID string
	BuiltAt time.Time
	Hash    string

	Content *content.Content
	About   *markup.Result // nil without about.md
	Posts   []*Post        // newest first

	root   string
	files  fs.FS // content tree, for assets
	static fs.FS
	css    []byte // chroma stylesheet
	pages  *pages
}

// Root is the URL path prefix pages are served under, ending in "/".
func (s *Site) Root() string { return s.root }

// rootPath extracts the path of a base URL, defaulting to "/".
func rootPath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	p := "/" + strings.Trim(u.Path, "/") + "/"
	if p == "//" {
		return "/"
	}
	return p
}

// Post returns the rendered post with the given slug.
func (s *Site) Post(slug string) (*Post, error) {
	for _, p := range s.Posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, fmt.Errorf("post %q: %w", slug, content.ErrNotFound)
}

// ChromaCSS returns the stylesheet for highlighted code blocks.
func (s *Site) ChromaCSS() []byte { return s.css }

// Static returns the embedded stylesheet and scripts.
func (s *Site) Static() fs.FS { return s.static }

// IsAsset reports whether name is a content file served verbatim.
func (s *Site) IsAsset(name string) bool {
	name = strings.TrimPrefix(name, "/")
	for _, a := range s.Content.Assets {
		if a == name {
			return true
		}
	}
	return false
}

// OpenAsset opens a content asset. Names outside the asset list are
// reported as not found.
func (s *Site) OpenAsset(name string) (fs.File, error) {
	name = strings.TrimPrefix(name, "/")
	if !s.IsAsset(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return s.files.Open(name)
}

func (s *Site) data(title, active string, body any) pageData {
	return pageData{
		Site:   s.Content.Site,
		Root:   s.root,
		Title:  title,
		Active: active,
		Body:   body,
	}
}

// WriteHome renders the about page with the latest news.
func (s *Site) WriteHome(w io.Writer) error {
	body := homeBody{}
	if s.About != nil {
		body.About = template.HTML(s.About.HTML)
	}
	news := s.Content.News
	if n := s.Content.Site.HomeNews; len(news) > n {
		news, body.MoreNews = news[:n], true
	}
	body.News = news
	d := s.data("", "about", body)
	d.Description = s.Content.Site.Tagline
	return s.pages.execute(w, pageHome, d)
}

// WriteNews renders every news item.
func (s *Site) WriteNews(w io.Writer) error {
	return s.pages.execute(w, pageNews, s.data("News", "about", newsBody{News: s.Content.News}))
}

// WritePublications renders the publications matching f, grouped by year.
// The year and tag choices always list every publication.
func (s *Site) WritePublications(w io.Writer, f content.Filter) error {
	all := s.Content.Publications
	body := publicationsBody{
		Filter: f,
		Groups: content.GroupByYear(f.Apply(all)),
		Years:  content.Years(all),
		Tags:   content.Tags(all),
	}
	return s.pages.execute(w, pagePublications, s.data("Publications", "publications", body))
}

// WriteBlog renders the post index.
func (s *Site) WriteBlog(w io.Writer) error {
	return s.pages.execute(w, pageBlog, s.data("Blog", "blog", blogBody{Posts: s.Posts}))
}

// WritePost renders one post. Unknown slugs return content.ErrNotFound.
func (s *Site) WritePost(w io.Writer, slug string) error {
	p, err := s.Post(slug)
	if err != nil {
		return err
	}
	d := s.data(p.Title(), "blog", p)
	d.Description = p.Summary()
	return s.pages.execute(w, pagePost, d)
}

// WriteNotFound renders the 404 page.
func (s *Site) WriteNotFound(w io.Writer, message string) error {
	return s.pages.execute(w, pageNotFound, s.data("Not found", "", notFoundBody{Message: message}))
}
