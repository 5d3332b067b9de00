package api

import (
	"net/http"

	"github.com/dgallion1/texsite/internal/extract"
)

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	set := s.orchestrator.Latest()
	if set == nil {
		jsonError(w, "no build available yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := set.Encode(w); err != nil {
		s.log.Error("encode data set", "error", err)
	}
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	set := s.orchestrator.Latest()
	if set == nil {
		jsonError(w, "no build available yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": set.Documents})
}

// handleQuestions looks questions up by topic tag in the SQLite export.
func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "sqlite export not configured", http.StatusServiceUnavailable)
		return
	}
	tag := r.URL.Query().Get("tag")
	if tag == "" {
		jsonError(w, "tag query parameter is required", http.StatusBadRequest)
		return
	}
	qs, err := s.store.QuestionsByTag(r.Context(), tag)
	if err != nil {
		jsonError(w, "failed to query questions: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if qs == nil {
		qs = []extract.Question{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tag": tag, "questions": qs})
}
