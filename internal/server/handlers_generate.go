package server

import (
	"net/http"
	"strings"

	"applykit/internal/errors"
	"applykit/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// generateHandler produces tailored content for a pasted job description
// or a stored job. The stored profile is used unless one is supplied.
func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.obs.Tracer("applykit.api").Start(r.Context(), "api.generate")
	defer span.End()

	if s.generator == nil {
		s.writeError(w, r, errors.NewConfigError(errors.ErrCodeMissingAPIKey, "content generation needs an AI API key", nil))
		return
	}

	var req types.GenerateRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		s.writeError(w, r, err)
		return
	}

	jobDescription := strings.TrimSpace(req.JobDescription)
	if jobDescription == "" && req.JobID != "" {
		job, err := s.store.Job(req.JobID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		jobDescription = job.Description
	}
	if jobDescription == "" {
		s.writeError(w, r, errors.NewValidationError(errors.ErrCodeInvalidRequest, "jobDescription or jobId is required", nil))
		return
	}

	state := s.store.Snapshot()
	profile := state.Profile
	if req.Profile != nil {
		profile = *req.Profile
	}
	targetRole := strings.TrimSpace(req.TargetRole)
	if targetRole == "" {
		targetRole = state.TargetRole
	}

	span.SetAttributes(
		attribute.Int("request.job_length", len(jobDescription)),
		attribute.Bool("request.custom_profile", req.Profile != nil),
		attribute.String("request.target_role", targetRole),
	)

	content, err := s.generator.GenerateContent(ctx, types.GenerateContentInput{
		Profile:        profile,
		JobDescription: jobDescription,
		TargetRole:     targetRole,
	})
	if err != nil {
		span.RecordError(err)
		s.writeError(w, r, err)
		return
	}

	span.SetAttributes(attribute.Int("response.match_score", content.MatchScore))
	writeJSON(w, http.StatusOK, content)
}
