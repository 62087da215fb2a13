package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/moogar0880/problems"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/share"
)

const problemContentType = "application/problem+json"

func writeProblem(w http.ResponseWriter, p *problems.Problem) {
	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("Failed to encode problem", "error", err)
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, detail string) {
	writeProblem(w, problems.NewStatusProblem(http.StatusBadRequest).
		WithInstance(r.URL.Path).
		WithType("validation_error").
		WithDetail(detail))
}

// writeError maps a session or share error onto its problem response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		badRequest(w, r, verr.Message)
	case domain.IsNotFound(err):
		writeProblem(w, problems.NewStatusProblem(http.StatusNotFound).
			WithInstance(r.URL.Path).
			WithType("not_found").
			WithDetail(err.Error()))
	case errors.Is(err, domain.ErrDecode), errors.Is(err, share.ErrInvalidURL):
		writeProblem(w, problems.NewStatusProblem(http.StatusBadRequest).
			WithInstance(r.URL.Path).
			WithType("invalid_share_link").
			WithDetail(err.Error()))
	case errors.Is(err, domain.ErrInvalidArgument):
		writeProblem(w, problems.NewStatusProblem(http.StatusBadRequest).
			WithInstance(r.URL.Path).
			WithType("invalid_workflow").
			WithDetail(err.Error()))
	default:
		slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		writeProblem(w, problems.NewStatusProblem(http.StatusInternalServerError).
			WithInstance(r.URL.Path).
			WithType("internal_error").
			WithError(err))
	}
}
