package content

import (
	"path"
	"sort"
	"strings"

	"github.com/dgallion1/scholarsite/internal/markup"
)

// Post is a blog post source with its parsed front matter. Rendering is
// left to the site builder.
type Post struct {
	Slug   string
	Path   string // slash separated, relative to the content root
	Source []byte
	Meta   markup.FrontMatter
}

// postSlug derives the slug from a post path: posts/foo.md and
// posts/foo/index.md both become "foo".
func postSlug(p string) string {
	base := path.Base(p)
	name := strings.TrimSuffix(base, path.Ext(base))
	if name == "index" {
		if dir := path.Base(path.Dir(p)); dir != "." && dir != "posts" {
			return markup.Slugify(dir)
		}
	}
	return markup.Slugify(name)
}

func parsePost(p string, src []byte) (Post, error) {
	meta, _, err := markup.ParseFrontMatter(src)
	if err != nil {
		return Post{}, err
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSuffix(path.Base(p), path.Ext(p))
	}
	return Post{Slug: postSlug(p), Path: p, Source: src, Meta: meta}, nil
}

// sortPosts orders posts newest first, breaking ties by slug.
func sortPosts(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].Meta.Date, posts[j].Meta.Date
		if !a.Equal(b.Time) {
			return a.After(b.Time)
		}
		return posts[i].Slug < posts[j].Slug
	})
}
