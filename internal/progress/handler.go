package progress

import (
	"context"
	"errors"
	"net/http"

	"lingolearn/internal/app/apiresp"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc progressService
}

type progressService interface {
	GetUserProgress(ctx context.Context, userID, contentID string) ([]UserProgress, error)
	GetOverallProgress(ctx context.Context, userID string) (*OverallProgress, error)
	ListAttempts(ctx context.Context, userID, activityID string) ([]AttemptRecord, error)
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetUserProgress serves a user's per-content rows; ?content_id= narrows to
// one content.
func (h *Handler) GetUserProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	contentID := r.URL.Query().Get("content_id")

	rows, err := h.svc.GetUserProgress(r.Context(), userID, contentID)
	if err != nil {
		writeProgressError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, rows)
}

func (h *Handler) GetOverallProgress(w http.ResponseWriter, r *http.Request) {
	overall, err := h.svc.GetOverallProgress(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeProgressError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, overall)
}

func (h *Handler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.svc.ListAttempts(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "activityID"))
	if err != nil {
		writeProgressError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, attempts)
}

func writeProgressError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrProgressNotFound):
		apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
	default:
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
	}
}
