package site

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/dgallion1/scholarsite/internal/content"
)

type exportPage struct {
	name  string
	write func(io.Writer) error
}

// Export writes s as static files under outDir: one index.html per page,
// the embedded static assets, the code stylesheet and every content asset.
func Export(ctx context.Context, s *Site, outDir string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	pages := []exportPage{
		{"index.html", s.WriteHome},
		{"publications/index.html", func(w io.Writer) error { return s.WritePublications(w, content.Filter{}) }},
		{"news/index.html", s.WriteNews},
		{"blog/index.html", s.WriteBlog},
		{"404.html", func(w io.Writer) error { return s.WriteNotFound(w, "The page you are looking for does not exist.") }},
	}
	for _, p := range s.Posts {
		slug := p.Slug
		pages = append(pages, exportPage{"blog/" + slug + "/index.html", func(w io.Writer) error { return s.WritePost(w, slug) }})
	}

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := p.write(&buf); err != nil {
			return err
		}
		if err := writeFile(outDir, p.name, buf.Bytes()); err != nil {
			return err
		}
	}

	if err := writeFile(outDir, "static/chroma.css", s.ChromaCSS()); err != nil {
		return err
	}
	if err := copyTree(ctx, s.Static(), ".", outDir, "static"); err != nil {
		return fmt.Errorf("copy static: %w", err)
	}
	for _, a := range s.Content.Assets {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := fs.ReadFile(s.files, a)
		if err != nil {
			return fmt.Errorf("copy asset: %w", err)
		}
		if err := writeFile(outDir, a, data); err != nil {
			return err
		}
	}
	log.Info("site exported", "dir", outDir, "pages", len(pages), "assets", len(s.Content.Assets))
	return nil
}

func writeFile(outDir, name string, data []byte) error {
	dst := filepath.Join(outDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// copyTree copies every file under root in fsys to outDir/prefix.
func copyTree(ctx context.Context, fsys fs.FS, root, outDir, prefix string) error {
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		return writeFile(outDir, path.Join(prefix, p), data)
	})
}
