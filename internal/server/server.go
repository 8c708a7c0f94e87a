// Package server is the development HTTP server: it serves the current
// build of the site and exposes build state as JSON.
package server

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/scholarsite/internal/site"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for scholarsite.
type Server struct {
	router  chi.Router
	holder  *site.Holder
	builder *site.Builder
	log     *slog.Logger
}

// NewServer creates and configures the HTTP server. The builder is used
// for on-demand rebuilds and build state; holder supplies the site served.
func NewServer(holder *site.Holder, builder *site.Builder, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		holder:  holder,
		builder: builder,
		log:     log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(middleware.StripSlashes)

	r.Get("/health", s.handleHealth)

	// Pages.
	r.Get("/", s.handleHome)
	r.Get("/publications", s.handlePublications)
	r.Get("/news", s.handleNews)
	r.Get("/blog", s.handleBlog)
	r.Get("/blog/{slug}", s.handlePost)
	r.Get("/static/chroma.css", s.handleChromaCSS)
	r.Get("/static/*", s.handleStatic)

	// Build state.
	r.Route("/api", func(r chi.Router) {
		r.Get("/stats/render", s.handleRenderStats)
		r.Get("/builds", s.handleListBuilds)
		r.Post("/builds", s.handleRebuild)
		r.Get("/builds/{buildID}", s.handleBuildStatus)
	})

	r.NotFound(s.handleAsset)
	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok", "ready": false}
	if cur := s.holder.Load(); cur != nil {
		resp["ready"] = true
		resp["build_id"] = cur.BuildID
		resp["posts"] = len(cur.Posts)
	}
	writeJSON(w, http.StatusOK, resp)
}
