package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"applykit/internal/types"
)

func (s *Server) listJobsHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Jobs())
}

func (s *Server) addJobHandler(w http.ResponseWriter, r *http.Request) {
	var job types.JobDescription
	if err := parseJSONRequest(r, &job); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.store.AddJob(job)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Logger.Info("Job added", "id", saved.ID, "title", saved.Title)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) removeJobHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.RemoveJob(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// extractJobHandler returns the text of an uploaded job description. With
// ?add=true the text is also stored in the job library.
func (s *Server) extractJobHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.obs.Tracer("applykit.api").Start(r.Context(), "api.jobs.extract")
	defer span.End()

	name, data, err := s.readUpload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	text, err := s.ingestor.ExtractBytes(ctx, name, data)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, r, err)
		return
	}

	response := map[string]any{"text": text}
	if r.URL.Query().Get("add") == "true" {
		job, err := s.store.AddJob(types.JobDescription{
			Title:       strings.TrimSuffix(name, filepath.Ext(name)),
			Source:      name,
			Description: text,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		response["job"] = job
	}
	writeJSON(w, http.StatusOK, response)
}
