package form

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"lingolearn/internal/app/apiresp"

	"github.com/go-chi/chi/v5"
	"github.com/xeipuuv/gojsonschema"
)

type Handler struct {
	svc formService
}

type formService interface {
	CreateForm(ctx context.Context, in CreateFormInput) (*Form, error)
	GetForm(ctx context.Context, formID string) (*Form, error)
	PublishForm(ctx context.Context, formID string) (*Form, error)
	SaveQuestionDefinition(ctx context.Context, formID string, def QuestionDefinition) (*QuestionDefinition, error)
	UpdateQuestionDefinition(ctx context.Context, formID, questionID string, def QuestionDefinition) (*QuestionDefinition, error)
	DeleteQuestionDefinition(ctx context.Context, formID, questionID string) error
	ListQuestionDefinitions(ctx context.Context, formID string) ([]QuestionDefinition, error)
	SubmitResponse(ctx context.Context, formID string, respondent Identity, answers []Answer) (*FormResponse, error)
	ListResponses(ctx context.Context, formID string) ([]FormResponse, error)
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createFormRequest struct {
	ContentID              string `json:"content_id"`
	ActivityID             string `json:"activity_id"`
	Title                  string `json:"title"`
	AllowMultipleResponses bool   `json:"allow_multiple_responses"`
	AllowAnonymous         bool   `json:"allow_anonymous"`
}

type questionRequest struct {
	Kind          Kind               `json:"kind"`
	Title         string             `json:"title"`
	OrderIndex    int                `json:"order_index"`
	IsRequired    bool               `json:"is_required"`
	MaxLength     *int               `json:"max_length"`
	MinValue      *float64           `json:"min_value"`
	MaxValue      *float64           `json:"max_value"`
	Points        float64            `json:"points"`
	CorrectAnswer string             `json:"correct_answer"`
	Options       []OptionDefinition `json:"options"`
}

type submitResponseRequest struct {
	Respondent Identity `json:"respondent"`
	Answers    []Answer `json:"answers"`
}

// submitResponseSchema guards the submission envelope shape before any domain
// decoding happens. The per-kind value rules live in ValidateAnswer.
var submitResponseSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"required": ["answers"],
	"properties": {
		"respondent": {
			"type": "object",
			"properties": {
				"user_id": {"type": "string"},
				"name": {"type": "string"},
				"email": {"type": "string"}
			}
		},
		"answers": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["question_id"],
				"properties": {
					"question_id": {"type": "string", "minLength": 1}
				}
			}
		}
	}
}`)

func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	var req createFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	out, err := h.svc.CreateForm(r.Context(), CreateFormInput{
		ContentID:              req.ContentID,
		ActivityID:             req.ActivityID,
		Title:                  req.Title,
		AllowMultipleResponses: req.AllowMultipleResponses,
		AllowAnonymous:         req.AllowAnonymous,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, out)
}

func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetForm(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, out)
}

func (h *Handler) PublishForm(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.PublishForm(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, out)
}

func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	out, err := h.svc.SaveQuestionDefinition(r.Context(), chi.URLParam(r, "formID"), req.toDefinition())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, out)
}

func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	out, err := h.svc.UpdateQuestionDefinition(r.Context(), chi.URLParam(r, "formID"), chi.URLParam(r, "questionID"), req.toDefinition())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, out)
}

func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteQuestionDefinition(r.Context(), chi.URLParam(r, "formID"), chi.URLParam(r, "questionID")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListQuestionDefinitions(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, out)
}

func (h *Handler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := gojsonschema.Validate(submitResponseSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if !result.Valid() {
		msg := "invalid submission payload"
		if errs := result.Errors(); len(errs) > 0 {
			msg = errs[0].String()
		}
		apiresp.WriteError(w, r, http.StatusBadRequest, msg)
		return
	}

	var req submitResponseRequest
	if err := json.Unmarshal(body, &req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.svc.SubmitResponse(r.Context(), chi.URLParam(r, "formID"), req.Respondent, req.Answers)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, out)
}

func (h *Handler) ListResponses(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListResponses(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, out)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrFormNotFound), errors.Is(err, ErrQuestionNotFound):
		apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrFormNotPublished), errors.Is(err, ErrDuplicateResponse), errors.Is(err, ErrKindImmutable):
		apiresp.WriteError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidDefinition), errors.Is(err, ErrInvalidAnswer),
		errors.Is(err, ErrMissingRequired), errors.Is(err, ErrUnknownQuestion), errors.Is(err, ErrAnswerRequired):
		apiresp.WriteError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidInput):
		apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
	default:
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func (req questionRequest) toDefinition() QuestionDefinition {
	return QuestionDefinition{
		Kind:          req.Kind,
		Title:         req.Title,
		OrderIndex:    req.OrderIndex,
		IsRequired:    req.IsRequired,
		MaxLength:     req.MaxLength,
		MinValue:      req.MinValue,
		MaxValue:      req.MaxValue,
		Points:        req.Points,
		CorrectAnswer: req.CorrectAnswer,
		Options:       req.Options,
	}
}
