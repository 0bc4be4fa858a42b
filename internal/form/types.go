package form

import (
	"encoding/json"
	"time"
)

// Kind is the closed set of supported question kinds. Every validation and
// scoring path dispatches on it; an unknown kind is rejected at authoring time.
type Kind string

const (
	KindText           Kind = "TEXT"
	KindTextarea       Kind = "TEXTAREA"
	KindOpenText       Kind = "OPEN_TEXT"
	KindMultipleChoice Kind = "MULTIPLE_CHOICE"
	KindCheckbox       Kind = "CHECKBOX"
	KindRatingScale    Kind = "RATING_SCALE"
	KindNumber         Kind = "NUMBER"
	KindEmail          Kind = "EMAIL"
	KindDate           Kind = "DATE"
	KindTime           Kind = "TIME"
	KindBoolean        Kind = "BOOLEAN"
)

type kindSpec struct {
	// textual answers where max_length applies
	textLike bool
	// answers reference authored options
	hasOptions bool
	// can be auto-graded when the question carries points
	autoScored bool
}

var kindRegistry = map[Kind]kindSpec{
	KindText:           {textLike: true},
	KindTextarea:       {textLike: true},
	KindOpenText:       {textLike: true, autoScored: true},
	KindMultipleChoice: {hasOptions: true, autoScored: true},
	KindCheckbox:       {hasOptions: true, autoScored: true},
	KindRatingScale:    {},
	KindNumber:         {},
	KindEmail:          {},
	KindDate:           {},
	KindTime:           {},
	KindBoolean:        {hasOptions: true, autoScored: true},
}

// Known reports whether k is one of the supported question kinds.
func (k Kind) Known() bool {
	_, ok := kindRegistry[k]
	return ok
}

func (k Kind) textLike() bool   { return kindRegistry[k].textLike }
func (k Kind) hasOptions() bool { return kindRegistry[k].hasOptions }
func (k Kind) autoScored() bool { return kindRegistry[k].autoScored }

// OptionDefinition is one selectable option owned by a single question.
type OptionDefinition struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Value      string `json:"value,omitempty"`
	OrderIndex int    `json:"order_index"`
	IsCorrect  bool   `json:"is_correct"`
}

// QuestionDefinition is one authored question inside a form. Kind is immutable
// after creation; changing it requires delete and recreate.
type QuestionDefinition struct {
	ID            string             `json:"id"`
	FormID        string             `json:"form_id"`
	Kind          Kind               `json:"kind"`
	Title         string             `json:"title"`
	OrderIndex    int                `json:"order_index"`
	IsRequired    bool               `json:"is_required"`
	MaxLength     *int               `json:"max_length,omitempty"`
	MinValue      *float64           `json:"min_value,omitempty"`
	MaxValue      *float64           `json:"max_value,omitempty"`
	Points        float64            `json:"points"`
	CorrectAnswer string             `json:"correct_answer,omitempty"`
	Options       []OptionDefinition `json:"options,omitempty"`
}

// Form is a named, ordered set of question definitions attached to a catalog
// content or activity node.
type Form struct {
	ID                     string    `json:"id"`
	ContentID              string    `json:"content_id,omitempty"`
	ActivityID             string    `json:"activity_id,omitempty"`
	Title                  string    `json:"title"`
	Status                 string    `json:"status"`
	AllowMultipleResponses bool      `json:"allow_multiple_responses"`
	AllowAnonymous         bool      `json:"allow_anonymous"`
	CreatedAt              time.Time `json:"created_at"`
}

const (
	FormStatusDraft     = "draft"
	FormStatusPublished = "published"
	FormStatusArchived  = "archived"
)

// Identity names the respondent: a known user id, or an anonymous name/email
// pair for forms that allow it.
type Identity struct {
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// Answer is one submitted answer. Value is the raw JSON payload whose shape
// depends on Kind: a string for textual kinds, an array of option ids for
// multiple choice, a number for number/rating kinds. Kind is copied from the
// question at submit time and the answer is immutable once scored.
type Answer struct {
	QuestionID string          `json:"question_id"`
	Kind       Kind            `json:"kind"`
	Value      json.RawMessage `json:"value,omitempty"`
	IsCorrect  *bool           `json:"is_correct,omitempty"`
	Points     float64         `json:"points"`
}

// FormResponse is one respondent's full submission against a form. The score
// is stored as raw counts; percentages are derived at presentation time.
type FormResponse struct {
	ID                string    `json:"id"`
	FormID            string    `json:"form_id"`
	Respondent        Identity  `json:"respondent"`
	Answers           []Answer  `json:"answers"`
	Status            string    `json:"status"`
	CorrectAnswers    int       `json:"correct_answers"`
	ScorableQuestions int       `json:"scorable_questions"`
	CreatedAt         time.Time `json:"created_at"`
}

const (
	ResponseStatusDraft     = "draft"
	ResponseStatusCompleted = "completed"
	ResponseStatusAbandoned = "abandoned"
)

// Scorable reports whether answers to q participate in the response score:
// the question carries points and its kind can be auto-graded. Open text only
// counts when a correct answer was authored.
func Scorable(q QuestionDefinition) bool {
	if q.Points <= 0 || !q.Kind.autoScored() {
		return false
	}
	if q.Kind == KindOpenText {
		return q.CorrectAnswer != ""
	}
	return true
}
