package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/avast/retry-go/v4"
	"github.com/dgallion1/scholarsite/internal/content"
	"github.com/dgallion1/scholarsite/internal/markup"
	"github.com/dgallion1/scholarsite/web"
	"golang.org/x/sync/errgroup"
)

// ErrNoPosts is returned when every post failed to render.
var ErrNoPosts = errors.New("no posts rendered")

// Options configures a Builder.
type Options struct {
	Workers       int
	IncludeDrafts bool
	BaseURL       string
	Render        markup.Options

	// Content loading is retried for I/O errors, never for invalid content.
	LoadAttempts uint
	LoadDelay    time.Duration
}

// Builder turns a content tree into a Site.
type Builder struct {
	files  fs.FS
	opts   Options
	log    *slog.Logger
	builds *BuildStore
	stats  *RenderStats

	pages  *pages
	static fs.FS
	css    []byte
}

// NewBuilder prepares templates and the code stylesheet once; every Build
// reuses them.
func NewBuilder(files fs.FS, opts Options, builds *BuildStore, stats *RenderStats, log *slog.Logger) (*Builder, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.LoadAttempts == 0 {
		opts.LoadAttempts = 1
	}
	if opts.Render.HighlightStyle == "" {
		opts.Render.HighlightStyle = "github"
	}
	opts.Render.Data = files
	if builds == nil {
		builds = NewBuildStore(time.Hour)
	}
	if stats == nil {
		stats = NewRenderStats(time.Hour)
	}
	if log == nil {
		log = slog.Default()
	}

	p, err := defaultPages()
	if err != nil {
		return nil, err
	}
	static, err := web.StaticFS()
	if err != nil {
		return nil, err
	}
	var css bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&css, styles.Get(opts.Render.HighlightStyle)); err != nil {
		return nil, fmt.Errorf("write chroma css: %w", err)
	}

	return &Builder{
		files:  files,
		opts:   opts,
		log:    log,
		builds: builds,
		stats:  stats,
		pages:  p,
		static: static,
		css:    css.Bytes(),
	}, nil
}

// Builds returns the build registry.
func (b *Builder) Builds() *BuildStore { return b.builds }

// Stats returns the post render latency tracker.
func (b *Builder) Stats() *RenderStats { return b.stats }

// Build loads the content tree and renders every page model. A post that
// fails to render is left out and the build is marked partial; the build
// fails when content cannot be loaded or no post renders at all.
func (b *Builder) Build(ctx context.Context) (*Site, error) {
	build := NewBuild()
	b.builds.Put(build)
	log := b.log.With("build_id", build.ID)
	start := time.Now()

	build.SetStatus(StatusLoading, "loading")
	c, err := b.load(ctx, log)
	if err != nil {
		log.Error("content load failed", "error", err)
		build.AddError(fmt.Sprintf("load: %s", err))
		build.SetStatus(StatusFailed, "loading")
		return nil, err
	}
	hash := contentHash(c)
	build.SetContentHash(hash)
	build.SetTotalPosts(len(c.Posts))
	log.Info("content loaded", "posts", len(c.Posts), "publications", len(c.Publications), "news", len(c.News))

	build.SetStatus(StatusRendering, "rendering")
	r := markup.NewRenderer(b.opts.Render, log)

	var about *markup.Result
	if len(c.About) > 0 {
		about, err = r.Render(ctx, content.AboutFile, c.About)
		if err != nil {
			if ctx.Err() != nil {
				build.SetStatus(StatusFailed, "rendering")
				return nil, ctx.Err()
			}
			log.Error("render failed", "path", content.AboutFile, "error", err)
			build.AddError(fmt.Sprintf("%s: %s", content.AboutFile, err))
		} else {
			build.AddWarnings(len(about.Broken) + len(about.Warnings))
		}
	}

	posts, err := b.renderPosts(ctx, r, c.Posts, build, log)
	if err != nil {
		build.SetStatus(StatusFailed, "rendering")
		return nil, err
	}
	if len(c.Posts) > 0 && len(posts) == 0 {
		build.SetStatus(StatusFailed, "rendering")
		return nil, ErrNoPosts
	}

	s := &Site{
		BuildID: build.ID,
		BuiltAt: time.Now(),
		Hash:    hash,
		Content: c,
		About:   about,
		Posts:   posts,
		root:    rootPath(b.opts.BaseURL),
		files:   b.files,
		static:  b.static,
		css:     b.css,
		pages:   b.pages,
	}

	if build.HasErrors() {
		build.SetStatus(StatusPartial, "done")
	} else {
		build.SetStatus(StatusCompleted, "done")
	}
	log.Info("build complete", "posts", len(posts), "duration_ms", time.Since(start).Milliseconds())
	return s, nil
}

func (b *Builder) load(ctx context.Context, log *slog.Logger) (*content.Content, error) {
	var c *content.Content
	err := retry.Do(
		func() error {
			var err error
			c, err = content.Load(ctx, b.files, content.LoadOptions{
				IncludeDrafts: b.opts.IncludeDrafts,
				Log:           log,
			})
			return err
		},
		retry.Context(ctx),
		retry.Attempts(b.opts.LoadAttempts),
		retry.Delay(b.opts.LoadDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, content.ErrInvalid) &&
				!errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("content load failed, retrying", "attempt", n+1, "error", err)
		}),
	)
	return c, err
}

// renderPosts renders posts concurrently, each with its own ledger. The
// returned slice keeps the input order and omits posts that failed.
func (b *Builder) renderPosts(ctx context.Context, r *markup.Renderer, src []content.Post, build *Build, log *slog.Logger) ([]*Post, error) {
	out := make([]*Post, len(src))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for i, p := range src {
		g.Go(func() error {
			start := time.Now()
			res, err := r.Render(gctx, p.Path, p.Source)
			sample := RenderSample{Slug: p.Slug, Duration: time.Since(start), Failed: err != nil}
			if res != nil {
				sample.Passes = res.Passes
			}
			b.stats.Record(sample)
			build.IncrPostsRendered()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Error("render failed", "post", p.Slug, "error", err)
				build.AddError(fmt.Sprintf("%s: %s", p.Path, err))
				return nil
			}
			build.AddWarnings(len(res.Broken) + len(res.Warnings))
			out[i] = &Post{Post: p, Result: res, Reference: content.Cite(p, b.opts.BaseURL)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	posts := out[:0]
	for _, p := range out {
		if p != nil {
			posts = append(posts, p)
		}
	}
	return posts, nil
}
