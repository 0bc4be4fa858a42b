package form

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrFormNotPublished  = errors.New("form is not published")
	ErrDuplicateResponse = errors.New("duplicate response")
	ErrMissingRequired   = errors.New("missing required answer")
	ErrUnknownQuestion   = errors.New("answer references unknown question")
	ErrKindImmutable     = errors.New("question kind cannot be changed")
)

// Completion is the best-effort notification handed to the progress tracker
// after a response has been persisted.
type Completion struct {
	UserID            string
	ContentID         string
	ActivityID        string
	FormResponseID    string
	CorrectAnswers    int
	ScorableQuestions int
}

// ProgressNotifier receives completions after a successful submission. Calls
// are fire-and-forget: a notifier failure never rolls back the response.
type ProgressNotifier interface {
	RecordCompletion(ctx context.Context, c Completion) error
}

type Service struct {
	store    Store
	notifier ProgressNotifier
}

func NewService(store Store, notifier ProgressNotifier) *Service {
	return &Service{store: store, notifier: notifier}
}

type CreateFormInput struct {
	ContentID              string
	ActivityID             string
	Title                  string
	AllowMultipleResponses bool
	AllowAnonymous         bool
}

func (s *Service) CreateForm(ctx context.Context, in CreateFormInput) (*Form, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: form title is required", ErrInvalidInput)
	}
	return s.store.CreateForm(ctx, Form{
		ContentID:              strings.TrimSpace(in.ContentID),
		ActivityID:             strings.TrimSpace(in.ActivityID),
		Title:                  in.Title,
		Status:                 FormStatusDraft,
		AllowMultipleResponses: in.AllowMultipleResponses,
		AllowAnonymous:         in.AllowAnonymous,
	})
}

func (s *Service) GetForm(ctx context.Context, formID string) (*Form, error) {
	if strings.TrimSpace(formID) == "" {
		return nil, ErrInvalidInput
	}
	return s.store.GetForm(ctx, formID)
}

func (s *Service) PublishForm(ctx context.Context, formID string) (*Form, error) {
	if strings.TrimSpace(formID) == "" {
		return nil, ErrInvalidInput
	}
	return s.store.SetFormStatus(ctx, formID, FormStatusPublished)
}

// SaveQuestionDefinition validates and stores a new question definition.
func (s *Service) SaveQuestionDefinition(ctx context.Context, formID string, def QuestionDefinition) (*QuestionDefinition, error) {
	if strings.TrimSpace(formID) == "" {
		return nil, ErrInvalidInput
	}
	def.FormID = formID
	def.Title = strings.TrimSpace(def.Title)
	def.CorrectAnswer = strings.TrimSpace(def.CorrectAnswer)
	if err := ValidateDefinition(def); err != nil {
		return nil, err
	}
	def.ID = ""
	return s.store.SaveQuestion(ctx, def)
}

// UpdateQuestionDefinition replaces an existing definition. The kind is
// immutable; changing it takes a delete plus recreate.
func (s *Service) UpdateQuestionDefinition(ctx context.Context, formID, questionID string, def QuestionDefinition) (*QuestionDefinition, error) {
	if strings.TrimSpace(formID) == "" || strings.TrimSpace(questionID) == "" {
		return nil, ErrInvalidInput
	}
	existing, err := s.store.GetQuestion(ctx, formID, questionID)
	if err != nil {
		return nil, err
	}
	if def.Kind != "" && def.Kind != existing.Kind {
		return nil, ErrKindImmutable
	}
	def.Kind = existing.Kind
	def.ID = questionID
	def.FormID = formID
	def.Title = strings.TrimSpace(def.Title)
	def.CorrectAnswer = strings.TrimSpace(def.CorrectAnswer)
	if err := ValidateDefinition(def); err != nil {
		return nil, err
	}
	return s.store.SaveQuestion(ctx, def)
}

func (s *Service) DeleteQuestionDefinition(ctx context.Context, formID, questionID string) error {
	if strings.TrimSpace(formID) == "" || strings.TrimSpace(questionID) == "" {
		return ErrInvalidInput
	}
	return s.store.DeleteQuestion(ctx, formID, questionID)
}

func (s *Service) ListQuestionDefinitions(ctx context.Context, formID string) ([]QuestionDefinition, error) {
	if strings.TrimSpace(formID) == "" {
		return nil, ErrInvalidInput
	}
	return s.store.ListQuestions(ctx, formID)
}

// SubmitResponse runs the whole submission in one pass: precondition checks,
// per-answer validation, scoring, one atomic save, then a best-effort progress
// notification. Any failure before the save rejects the submission wholesale;
// no response or answer is persisted.
func (s *Service) SubmitResponse(ctx context.Context, formID string, respondent Identity, answers []Answer) (*FormResponse, error) {
	respondent.UserID = strings.TrimSpace(respondent.UserID)
	respondent.Name = strings.TrimSpace(respondent.Name)
	respondent.Email = strings.TrimSpace(respondent.Email)

	f, err := s.store.GetForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if f.Status != FormStatusPublished {
		return nil, ErrFormNotPublished
	}
	if respondent.UserID == "" {
		if !f.AllowAnonymous {
			return nil, fmt.Errorf("%w: form does not accept anonymous responses", ErrInvalidInput)
		}
		if respondent.Name == "" && respondent.Email == "" {
			return nil, fmt.Errorf("%w: anonymous responses require a name or email", ErrInvalidInput)
		}
	}

	if !f.AllowMultipleResponses && respondent.UserID != "" {
		exists, err := s.store.HasResponse(ctx, formID, respondent.UserID)
		if err != nil {
			return nil, fmt.Errorf("check existing response: %w", err)
		}
		if exists {
			return nil, ErrDuplicateResponse
		}
	}

	questions, err := s.store.ListQuestions(ctx, formID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]QuestionDefinition, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	answered := make(map[string]Answer, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, a.QuestionID)
		}
		a.Kind = q.Kind
		answered[a.QuestionID] = a
	}

	// Required coverage before per-answer shape checks: the first gap is
	// reported by question title.
	for _, q := range questions {
		if !q.IsRequired {
			continue
		}
		a, ok := answered[q.ID]
		if !ok || answerAbsent(a.Value) {
			return nil, fmt.Errorf("%w: %s", ErrMissingRequired, q.Title)
		}
	}

	resp := FormResponse{
		FormID:     formID,
		Respondent: respondent,
		Status:     ResponseStatusCompleted,
	}
	for _, q := range questions {
		if Scorable(q) {
			resp.ScorableQuestions++
		}
		a, ok := answered[q.ID]
		if !ok {
			continue
		}
		if err := ValidateAnswer(q, a); err != nil {
			return nil, err
		}
		if !answerAbsent(a.Value) {
			result := Score(q, a)
			a.IsCorrect = result.IsCorrect
			a.Points = result.Points
			if result.IsCorrect != nil && *result.IsCorrect {
				resp.CorrectAnswers++
			}
		}
		resp.Answers = append(resp.Answers, a)
	}

	saved, err := s.store.SaveResponse(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("save response: %w", err)
	}

	s.notifyCompletion(ctx, f, saved)
	return saved, nil
}

func (s *Service) ListResponses(ctx context.Context, formID string) ([]FormResponse, error) {
	if strings.TrimSpace(formID) == "" {
		return nil, ErrInvalidInput
	}
	return s.store.ListResponses(ctx, formID)
}

// notifyCompletion hands the completion to the progress tracker. Failures are
// logged and swallowed: the response is already persisted and stays that way.
func (s *Service) notifyCompletion(ctx context.Context, f *Form, resp *FormResponse) {
	if s.notifier == nil || resp.Respondent.UserID == "" || f.ActivityID == "" || f.ContentID == "" {
		return
	}
	c := Completion{
		UserID:            resp.Respondent.UserID,
		ContentID:         f.ContentID,
		ActivityID:        f.ActivityID,
		FormResponseID:    resp.ID,
		CorrectAnswers:    resp.CorrectAnswers,
		ScorableQuestions: resp.ScorableQuestions,
	}
	if err := s.notifier.RecordCompletion(ctx, c); err != nil {
		log.Printf("progress notification failed: form=%s user=%s err=%v", f.ID, c.UserID, err)
	}
}
