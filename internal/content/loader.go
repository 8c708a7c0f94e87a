package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/dgallion1/scholarsite/internal/excerpt"
)

// Well-known files at the content root.
const (
	SiteFile         = "site.yaml"
	AboutFile        = "about.md"
	PublicationsFile = "publications.yaml"
	NewsFile         = "news.yaml"
	PostsDir         = "posts"
)

const abstractWords = 60

// LoadOptions configures Load.
type LoadOptions struct {
	IncludeDrafts bool
	Log           *slog.Logger
}

// Load reads a content tree. Parse and validation failures wrap
// ErrInvalid; anything else is an I/O error from fsys.
func Load(ctx context.Context, fsys fs.FS, opts LoadOptions) (*Content, error) {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	c := &Content{}
	var haveSite bool

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		kind, err := Classify(p)
		if err != nil {
			log.Debug("skipping file", "path", p, "error", err)
			return nil
		}

		switch kind {
		case KindMarkdown:
			return loadMarkdown(fsys, p, c, opts.IncludeDrafts, log)
		case KindData:
			known, err := loadData(fsys, p, c)
			if err != nil {
				return err
			}
			if !known {
				log.Debug("ignoring unknown data file", "path", p)
			}
			haveSite = haveSite || p == SiteFile
		case KindTable, KindPDF, KindAsset:
			c.Assets = append(c.Assets, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !haveSite {
		return nil, fmt.Errorf("%s: %w: file is required", SiteFile, ErrInvalid)
	}

	sortPosts(c.Posts)
	attachPDFs(fsys, c.Publications, log)
	return c, nil
}

func loadMarkdown(fsys fs.FS, p string, c *Content, drafts bool, log *slog.Logger) error {
	raw, err := fs.ReadFile(fsys, p)
	if err != nil {
		return err
	}
	if p == AboutFile {
		c.About = raw
		return nil
	}
	if !strings.HasPrefix(p, PostsDir+"/") {
		log.Debug("ignoring markdown outside posts", "path", p)
		return nil
	}
	post, err := parsePost(p, raw)
	if err != nil {
		return fmt.Errorf("%s: %w: %s", p, ErrInvalid, err)
	}
	if post.Meta.Draft && !drafts {
		log.Debug("skipping draft", "path", p)
		return nil
	}
	for _, other := range c.Posts {
		if other.Slug == post.Slug {
			return fmt.Errorf("%s: %w: slug %q already used by %s", p, ErrInvalid, post.Slug, other.Path)
		}
	}
	c.Posts = append(c.Posts, post)
	return nil
}

// loadData parses the root YAML files. It reports whether p was one of them.
func loadData(fsys fs.FS, p string, c *Content) (bool, error) {
	var parse func([]byte) error
	switch p {
	case SiteFile:
		parse = func(raw []byte) (err error) {
			c.Site, err = parseSite(p, raw)
			return err
		}
	case PublicationsFile:
		parse = func(raw []byte) (err error) {
			c.Publications, err = parsePublications(p, raw)
			return err
		}
	case NewsFile:
		parse = func(raw []byte) (err error) {
			c.News, err = parseNews(p, raw)
			return err
		}
	default:
		return false, nil
	}
	raw, err := fs.ReadFile(fsys, p)
	if err != nil {
		return false, err
	}
	if err := parse(raw); err != nil {
		return false, err
	}
	return true, nil
}

// attachPDFs fills page counts for local paper PDFs and uses the first
// page as the abstract when none is given. Failures are logged.
func attachPDFs(fsys fs.FS, pubs []Publication, log *slog.Logger) {
	for i := range pubs {
		p := &pubs[i]
		if !p.Local() {
			continue
		}
		name := strings.TrimPrefix(path.Clean("/"+p.PDF), "/")
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Warn("reading paper pdf", "path", name, "error", err)
			} else {
				log.Warn("paper pdf not found", "path", name, "title", p.Title)
			}
			continue
		}
		info, err := readPDF(raw)
		if err != nil {
			log.Warn("parsing paper pdf", "path", name, "error", err)
			continue
		}
		p.Pages = info.Pages
		if p.Abstract == "" && info.Text != "" {
			p.Abstract = excerpt.Summarize(info.Text, abstractWords)
		}
	}
}
