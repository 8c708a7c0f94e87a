package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/scholarsite/internal/content"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListBuilds(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"builds": s.builder.Builds().List()}
	if cur := s.holder.Load(); cur != nil {
		resp["current"] = cur.BuildID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBuildStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "buildID")
	b := s.builder.Builds().Get(id)
	if b == nil {
		jsonError(w, "build not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b.Snapshot())
}

// handleRebuild runs a build synchronously and swaps it in on success.
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	cur, err := s.holder.Rebuild(r.Context(), s.builder)
	if err != nil {
		s.log.Warn("rebuild failed", "error", err)
		code := http.StatusInternalServerError
		if errors.Is(err, content.ErrInvalid) {
			code = http.StatusUnprocessableEntity
		}
		jsonError(w, err.Error(), code)
		return
	}
	writeJSON(w, http.StatusCreated, s.builder.Builds().Get(cur.BuildID).Snapshot())
}

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"stats": s.builder.Stats().Snapshot(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
