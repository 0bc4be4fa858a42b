package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"lingolearn/internal/app/apiresp"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc catalogService
}

type catalogService interface {
	CreateLanguage(ctx context.Context, name, code string) (*Language, error)
	GetLanguage(ctx context.Context, id string) (*Language, error)
	ListLanguages(ctx context.Context) ([]Language, error)
	CreateLevel(ctx context.Context, languageID, name string, orderIndex int) (*Level, error)
	GetLevel(ctx context.Context, id string) (*Level, error)
	ListLevels(ctx context.Context, languageID string) ([]Level, error)
	CreateSkill(ctx context.Context, levelID, name string) (*Skill, error)
	GetSkill(ctx context.Context, id string) (*Skill, error)
	ListSkills(ctx context.Context, levelID string) ([]Skill, error)
	CreateContent(ctx context.Context, skillID, title string) (*Content, error)
	GetContent(ctx context.Context, id string) (*Content, error)
	ListContents(ctx context.Context, skillID string) ([]Content, error)
	CreateActivity(ctx context.Context, in CreateActivityInput) (*Activity, error)
	GetActivity(ctx context.Context, id string) (*Activity, error)
	UpdateActivity(ctx context.Context, id string, in UpdateActivityInput) (*Activity, error)
	DeleteActivity(ctx context.Context, id string) error
	ListActivities(ctx context.Context, contentID string) ([]Activity, error)
	RecalculateAll(ctx context.Context) error
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createLanguageRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type createLevelRequest struct {
	LanguageID string `json:"language_id"`
	Name       string `json:"name"`
	OrderIndex int    `json:"order_index"`
}

type createSkillRequest struct {
	LevelID string `json:"level_id"`
	Name    string `json:"name"`
}

type createContentRequest struct {
	SkillID string `json:"skill_id"`
	Title   string `json:"title"`
}

type activityRequest struct {
	ContentID     string `json:"content_id"`
	Title         string `json:"title"`
	ActivityType  string `json:"activity_type"`
	EstimatedTime *int   `json:"estimated_time"`
}

func (h *Handler) CreateLanguage(w http.ResponseWriter, r *http.Request) {
	var req createLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	lang, err := h.svc.CreateLanguage(r.Context(), req.Name, req.Code)
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, lang)
}

func (h *Handler) GetLanguage(w http.ResponseWriter, r *http.Request) {
	lang, err := h.svc.GetLanguage(r.Context(), chi.URLParam(r, "languageID"))
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, lang)
}

func (h *Handler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	langs, err := h.svc.ListLanguages(r.Context())
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, langs)
}

func (h *Handler) CreateLevel(w http.ResponseWriter, r *http.Request) {
	var req createLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	level, err := h.svc.CreateLevel(r.Context(), req.LanguageID, req.Name, req.OrderIndex)
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, level)
}

func (h *Handler) ListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.svc.ListLevels(r.Context(), chi.URLParam(r, "languageID"))
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, levels)
}

func (h *Handler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	var req createSkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	skill, err := h.svc.CreateSkill(r.Context(), req.LevelID, req.Name)
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, skill)
}

func (h *Handler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.svc.ListSkills(r.Context(), chi.URLParam(r, "levelID"))
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, skills)
}

func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	var req createContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	content, err := h.svc.CreateContent(r.Context(), req.SkillID, req.Title)
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, content)
}

func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	content, err := h.svc.GetContent(r.Context(), chi.URLParam(r, "contentID"))
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, content)
}

func (h *Handler) ListContents(w http.ResponseWriter, r *http.Request) {
	contents, err := h.svc.ListContents(r.Context(), chi.URLParam(r, "skillID"))
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, contents)
}

func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	activity, err := h.svc.CreateActivity(r.Context(), CreateActivityInput{
		ContentID:     req.ContentID,
		Title:         req.Title,
		ActivityType:  req.ActivityType,
		EstimatedTime: req.EstimatedTime,
	})
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, activity)
}

func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.svc.GetActivity(r.Context(), chi.URLParam(r, "activityID"))
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, activity)
}

func (h *Handler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	activity, err := h.svc.UpdateActivity(r.Context(), chi.URLParam(r, "activityID"), UpdateActivityInput{
		ContentID:     req.ContentID,
		Title:         req.Title,
		ActivityType:  req.ActivityType,
		EstimatedTime: req.EstimatedTime,
	})
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, activity)
}

func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteActivity(r.Context(), chi.URLParam(r, "activityID")); err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.svc.ListActivities(r.Context(), chi.URLParam(r, "contentID"))
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, activities)
}

// RecalculateAll re-derives every total. Intended for operators after bulk
// imports or manual data fixes.
func (h *Handler) RecalculateAll(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RecalculateAll(r.Context()); err != nil {
		writeCatalogError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, map[string]bool{"recalculated": true})
}

func writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
	default:
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
	}
}
