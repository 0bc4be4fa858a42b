package report

import (
	"errors"
	"fmt"
	"net/http"

	"lingolearn/internal/app/apiresp"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// UserProgressExcel streams an xlsx workbook with the user's per-content
// progress and overall totals.
func (h *Handler) UserProgressExcel(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	data, err := h.svc.ExportUserProgressExcel(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="progress_%s.xlsx"`, userID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
