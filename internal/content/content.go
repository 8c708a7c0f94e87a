// Package content loads the data a site is built from: site settings, the
// about page, publications, news and blog posts.
package content

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrInvalid marks content that failed to parse or validate. Retrying
	// will not help.
	ErrInvalid = errors.New("invalid content")

	// ErrNotFound is returned for lookups of unknown posts.
	ErrNotFound = errors.New("not found")
)

// FileKind classifies a file in the content tree.
type FileKind int

const (
	KindUnknown FileKind = iota
	KindMarkdown
	KindData  // YAML data
	KindTable // CSV chart data
	KindPDF
	KindAsset // served verbatim
)

func (k FileKind) String() string {
	switch k {
	case KindMarkdown:
		return "markdown"
	case KindData:
		return "data"
	case KindTable:
		return "table"
	case KindPDF:
		return "pdf"
	case KindAsset:
		return "asset"
	}
	return "unknown"
}

// SupportedExtensions lists the file extensions the loader understands.
var SupportedExtensions = map[string]FileKind{
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
	".yaml":     KindData,
	".yml":      KindData,
	".csv":      KindTable,
	".pdf":      KindPDF,
	".png":      KindAsset,
	".jpg":      KindAsset,
	".jpeg":     KindAsset,
	".gif":      KindAsset,
	".svg":      KindAsset,
	".webp":     KindAsset,
}

// Classify returns the kind of a content file by extension.
func Classify(name string) (FileKind, error) {
	ext := strings.ToLower(path.Ext(name))
	if k, ok := SupportedExtensions[ext]; ok {
		return k, nil
	}
	return KindUnknown, fmt.Errorf("unsupported file extension: %q", ext)
}

// Content is everything loaded from one content tree.
type Content struct {
	Site         Site
	About        []byte // Markdown source of the about page
	Publications []Publication
	News         []NewsItem
	Posts        []Post   // newest first
	Assets       []string // files copied to the output unchanged, slash separated
}

// Post returns the post with the given slug.
func (c *Content) Post(slug string) (Post, error) {
	for _, p := range c.Posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, fmt.Errorf("post %q: %w", slug, ErrNotFound)
}
