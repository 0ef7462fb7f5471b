package server

import (
	"fmt"
	"net/http"
	"strconv"

	"applykit/internal/documents"
	"applykit/internal/errors"
	"applykit/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// renderHandler returns one document as a PDF download. Profile, target
// role and date visibility default to the stored values.
func (s *Server) renderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.obs.Tracer("applykit.api").Start(r.Context(), "api.render")
	defer span.End()

	kind, err := documents.ParseKind(r.PathValue("kind"))
	if err != nil {
		s.writeError(w, r, errors.NewNotFoundError("UNKNOWN_DOCUMENT_KIND", err.Error()))
		return
	}

	var req types.RenderRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	state := s.store.Snapshot()
	profile := state.Profile
	if req.Profile != nil {
		profile = *req.Profile
	}

	opts, err := documents.OptionsFor(s.AppConfig.Document, kind)
	if err != nil {
		s.writeError(w, r, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid document settings", err))
		return
	}
	opts.Date = s.now()
	opts.TargetRole = state.TargetRole
	if req.TargetRole != "" {
		opts.TargetRole = req.TargetRole
	}
	opts.ShowDates = state.ShowDates || opts.ShowDates
	if req.ShowDates != nil {
		opts.ShowDates = *req.ShowDates
	}

	span.SetAttributes(attribute.String("document.kind", string(kind)))

	out, err := s.builder.Build(kind, profile, req.Content, opts)
	s.metrics.RecordDocument(ctx, string(kind), pageCount(out), err == nil)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, r, errors.NewRenderError(errors.ErrCodeRenderFailed, fmt.Sprintf("failed to render %s", kind), err))
		return
	}

	span.SetAttributes(attribute.Int("document.pages", out.Pages))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.Header().Set("X-Page-Count", strconv.Itoa(out.Pages))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Data); err != nil {
		s.Logger.Warn("Failed to write PDF response", "kind", kind, "error", err)
	}
}

func pageCount(out *documents.Output) int {
	if out == nil {
		return 0
	}
	return out.Pages
}
