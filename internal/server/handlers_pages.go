package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dgallion1/scholarsite/internal/content"
	"github.com/dgallion1/scholarsite/internal/site"
	"github.com/go-chi/chi/v5"
)

// page renders one HTML page of the current site. Unknown posts get the
// site's 404 page.
func (s *Server) page(w http.ResponseWriter, r *http.Request, write func(*site.Site, io.Writer) error) {
	cur := s.holder.Load()
	if cur == nil {
		http.Error(w, "site is building, retry shortly", http.StatusServiceUnavailable)
		return
	}
	var buf bytes.Buffer
	if err := write(cur, &buf); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			s.notFound(w, cur, err.Error())
			return
		}
		s.log.Error("render page failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) notFound(w http.ResponseWriter, cur *site.Site, msg string) {
	var buf bytes.Buffer
	if err := cur.WriteNotFound(&buf, msg); err != nil {
		http.Error(w, msg, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, (*site.Site).WriteHome)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, (*site.Site).WriteNews)
}

func (s *Server) handleBlog(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, (*site.Site).WriteBlog)
}

func (s *Server) handlePublications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := content.ParseFilter(q.Get("year"), q.Get("tag"), q.Get("q"))
	s.page(w, r, func(cur *site.Site, w io.Writer) error {
		return cur.WritePublications(w, f)
	})
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	s.page(w, r, func(cur *site.Site, w io.Writer) error {
		return cur.WritePost(w, slug)
	})
}

func (s *Server) handleChromaCSS(w http.ResponseWriter, r *http.Request) {
	cur := s.holder.Load()
	if cur == nil {
		http.Error(w, "site is building, retry shortly", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write(cur.ChromaCSS())
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	cur := s.holder.Load()
	if cur == nil {
		http.Error(w, "site is building, retry shortly", http.StatusServiceUnavailable)
		return
	}
	http.StripPrefix("/static/", http.FileServerFS(cur.Static())).ServeHTTP(w, r)
}

// handleAsset serves content files (images, PDFs, chart data) at their
// path in the content tree, and the 404 page for everything else.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	cur := s.holder.Load()
	if cur == nil {
		http.Error(w, "site is building, retry shortly", http.StatusServiceUnavailable)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/")
	if (r.Method != http.MethodGet && r.Method != http.MethodHead) || !cur.IsAsset(name) {
		s.notFound(w, cur, "The page you are looking for does not exist.")
		return
	}
	f, err := cur.OpenAsset(name)
	if err != nil {
		s.log.Warn("open asset failed", "path", name, "error", err)
		s.notFound(w, cur, "The page you are looking for does not exist.")
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	rs, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		rs = bytes.NewReader(data)
	}
	http.ServeContent(w, r, name, info.ModTime(), rs)
}
