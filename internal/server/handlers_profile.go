package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"applykit/internal/errors"
	"applykit/internal/ingest"
	"applykit/internal/types"
)

func (s *Server) getProfileHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Profile())
}

// putProfileHandler replaces the stored profile after schema validation.
func (s *Server) putProfileHandler(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := parseJSONRequest(r, &raw); err != nil {
		s.writeError(w, r, err)
		return
	}
	profile, err := ingest.DecodeProfile(raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.SetProfile(profile); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Logger.Info("Profile replaced", "name", profile.Name)
	writeJSON(w, http.StatusOK, profile)
}

// importProfileHandler parses an uploaded resume or JSON profile. With
// ?save=true the result replaces the stored profile.
func (s *Server) importProfileHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.obs.Tracer("applykit.api").Start(r.Context(), "api.profile.import")
	defer span.End()

	save := false
	if v := r.URL.Query().Get("save"); v != "" {
		var err error
		if save, err = strconv.ParseBool(v); err != nil {
			s.writeError(w, r, errors.NewValidationError(errors.ErrCodeInvalidRequest, "save must be a boolean", err))
			return
		}
	}

	name, data, err := s.readUpload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	profile, err := s.ingestor.ImportProfileBytes(ctx, name, data)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, r, err)
		return
	}
	if save {
		if err := s.store.SetProfile(profile); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, struct {
		Profile types.CandidateProfile `json:"profile"`
		Saved   bool                   `json:"saved"`
	}{profile, save})
}
