package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/texsite/internal/storage"
)

func (s *Server) handleRowStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orchestrator.RowStats())
}

func (s *Server) handleKindStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "sqlite export not configured", http.StatusServiceUnavailable)
		return
	}
	buildID, meta, err := s.store.Latest(r.Context())
	if errors.Is(err, storage.ErrNotFound) {
		jsonError(w, "no export available yet", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		jsonError(w, "failed to read export: "+err.Error(), http.StatusInternalServerError)
		return
	}
	kinds, err := s.store.CountByKind(r.Context())
	if err != nil {
		jsonError(w, "failed to count questions: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"build_id": buildID,
		"meta":     meta,
		"kinds":    kinds,
	})
}
