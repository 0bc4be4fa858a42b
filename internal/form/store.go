package form

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFormNotFound     = errors.New("form not found")
	ErrQuestionNotFound = errors.New("question not found")
)

// Store persists forms, question definitions and responses. Implementations
// must save a response together with all of its answers as one unit.
type Store interface {
	CreateForm(ctx context.Context, f Form) (*Form, error)
	GetForm(ctx context.Context, formID string) (*Form, error)
	SetFormStatus(ctx context.Context, formID, status string) (*Form, error)

	SaveQuestion(ctx context.Context, q QuestionDefinition) (*QuestionDefinition, error)
	GetQuestion(ctx context.Context, formID, questionID string) (*QuestionDefinition, error)
	ListQuestions(ctx context.Context, formID string) ([]QuestionDefinition, error)
	DeleteQuestion(ctx context.Context, formID, questionID string) error

	HasResponse(ctx context.Context, formID, userID string) (bool, error)
	SaveResponse(ctx context.Context, resp FormResponse) (*FormResponse, error)
	ListResponses(ctx context.Context, formID string) ([]FormResponse, error)
}

// MemoryStore is an in-memory Store used by tests and single-node deployments.
type MemoryStore struct {
	mu        sync.RWMutex
	forms     map[string]Form
	questions map[string][]QuestionDefinition // keyed by form id
	responses map[string][]FormResponse       // keyed by form id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		forms:     make(map[string]Form),
		questions: make(map[string][]QuestionDefinition),
		responses: make(map[string][]FormResponse),
	}
}

func (s *MemoryStore) CreateForm(ctx context.Context, f Form) (*Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = FormStatusDraft
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	s.forms[f.ID] = f
	out := f
	return &out, nil
}

func (s *MemoryStore) GetForm(ctx context.Context, formID string) (*Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.forms[formID]
	if !ok {
		return nil, ErrFormNotFound
	}
	out := f
	return &out, nil
}

func (s *MemoryStore) SetFormStatus(ctx context.Context, formID, status string) (*Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.forms[formID]
	if !ok {
		return nil, ErrFormNotFound
	}
	f.Status = status
	s.forms[formID] = f
	out := f
	return &out, nil
}

func (s *MemoryStore) SaveQuestion(ctx context.Context, q QuestionDefinition) (*QuestionDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.forms[q.FormID]; !ok {
		return nil, ErrFormNotFound
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	for i := range q.Options {
		if q.Options[i].ID == "" {
			q.Options[i].ID = uuid.NewString()
		}
	}

	list := s.questions[q.FormID]
	replaced := false
	for i, existing := range list {
		if existing.ID == q.ID {
			list[i] = q
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, q)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].OrderIndex < list[j].OrderIndex })
	s.questions[q.FormID] = list

	out := cloneQuestion(q)
	return &out, nil
}

func (s *MemoryStore) GetQuestion(ctx context.Context, formID, questionID string) (*QuestionDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, q := range s.questions[formID] {
		if q.ID == questionID {
			out := cloneQuestion(q)
			return &out, nil
		}
	}
	return nil, ErrQuestionNotFound
}

func (s *MemoryStore) ListQuestions(ctx context.Context, formID string) ([]QuestionDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.forms[formID]; !ok {
		return nil, ErrFormNotFound
	}
	list := s.questions[formID]
	out := make([]QuestionDefinition, 0, len(list))
	for _, q := range list {
		out = append(out, cloneQuestion(q))
	}
	return out, nil
}

// DeleteQuestion removes the question and, with it, its options (they are
// owned by exactly one question).
func (s *MemoryStore) DeleteQuestion(ctx context.Context, formID, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.questions[formID]
	for i, q := range list {
		if q.ID == questionID {
			s.questions[formID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrQuestionNotFound
}

func (s *MemoryStore) HasResponse(ctx context.Context, formID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if strings.TrimSpace(userID) == "" {
		return false, nil
	}
	for _, r := range s.responses[formID] {
		if r.Respondent.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) SaveResponse(ctx context.Context, resp FormResponse) (*FormResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.forms[resp.FormID]; !ok {
		return nil, ErrFormNotFound
	}
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now()
	}
	s.responses[resp.FormID] = append(s.responses[resp.FormID], resp)
	out := resp
	out.Answers = append([]Answer(nil), resp.Answers...)
	return &out, nil
}

func (s *MemoryStore) ListResponses(ctx context.Context, formID string) ([]FormResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.responses[formID]
	out := make([]FormResponse, 0, len(list))
	for _, r := range list {
		c := r
		c.Answers = append([]Answer(nil), r.Answers...)
		out = append(out, c)
	}
	return out, nil
}

func cloneQuestion(q QuestionDefinition) QuestionDefinition {
	out := q
	out.Options = append([]OptionDefinition(nil), q.Options...)
	return out
}
