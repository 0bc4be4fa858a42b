package form

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

type captureNotifier struct {
	calls []Completion
	err   error
}

func (n *captureNotifier) RecordCompletion(ctx context.Context, c Completion) error {
	n.calls = append(n.calls, c)
	return n.err
}

// seedForm creates a published form with one required checkbox question
// (3 options, first one correct, 5 points) and one optional rating question.
func seedForm(t *testing.T, svc *Service, allowMultiple bool) (*Form, *QuestionDefinition, *QuestionDefinition) {
	t.Helper()
	ctx := context.Background()

	f, err := svc.CreateForm(ctx, CreateFormInput{
		Title:                  "Lesson check",
		ContentID:              "content-1",
		ActivityID:             "activity-1",
		AllowMultipleResponses: allowMultiple,
	})
	if err != nil {
		t.Fatalf("create form: %v", err)
	}

	checkbox, err := svc.SaveQuestionDefinition(ctx, f.ID, QuestionDefinition{
		Kind:       KindCheckbox,
		Title:      "Article for 'casa'",
		IsRequired: true,
		Points:     5,
		Options: []OptionDefinition{
			{Text: "la", IsCorrect: true},
			{Text: "el"},
			{Text: "los"},
		},
	})
	if err != nil {
		t.Fatalf("save checkbox question: %v", err)
	}

	rating, err := svc.SaveQuestionDefinition(ctx, f.ID, QuestionDefinition{
		Kind:     KindRatingScale,
		Title:    "How confident are you?",
		MinValue: floatPtr(1),
		MaxValue: floatPtr(5),
	})
	if err != nil {
		t.Fatalf("save rating question: %v", err)
	}

	if _, err := svc.PublishForm(ctx, f.ID); err != nil {
		t.Fatalf("publish form: %v", err)
	}
	return f, checkbox, rating
}

func TestSubmitResponseRejectsUnpublishedForm(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)

	f, err := svc.CreateForm(ctx, CreateFormInput{Title: "Draft"})
	if err != nil {
		t.Fatalf("create form: %v", err)
	}
	_, err = svc.SubmitResponse(ctx, f.ID, Identity{UserID: "u1"}, nil)
	if !errors.Is(err, ErrFormNotPublished) {
		t.Fatalf("expected ErrFormNotPublished, got %v", err)
	}
}

func TestSubmitResponseDuplicateGuard(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store, nil)
	f, checkbox, _ := seedForm(t, svc, false)

	answers := []Answer{{QuestionID: checkbox.ID, Value: json.RawMessage(`"` + checkbox.Options[0].ID + `"`)}}
	if _, err := svc.SubmitResponse(ctx, f.ID, Identity{UserID: "u1"}, answers); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	if _, err := svc.SubmitResponse(ctx, f.ID, Identity{UserID: "u1"}, answers); !errors.Is(err, ErrDuplicateResponse) {
		t.Fatalf("expected ErrDuplicateResponse, got %v", err)
	}
	// A different user is fine.
	if _, err := svc.SubmitResponse(ctx, f.ID, Identity{UserID: "u2"}, answers); err != nil {
		t.Fatalf("other user submission: %v", err)
	}
}

func TestSubmitResponseAllowsRepeatWhenMultipleEnabled(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)
	f, checkbox, _ := seedForm(t, svc, true)

	answers := []Answer{{QuestionID: checkbox.ID, Value: json.RawMessage(`"` + checkbox.Options[0].ID + `"`)}}
	for i := 0; i < 2; i++ {
		if _, err := svc.SubmitResponse(ctx, f.ID, Identity{UserID: "u1"}, answers); err != nil {
			t.Fatalf("submission %d: %v", i+1, err)
		}
	}
	responses, err := svc.ListResponses(ctx, f.ID)
	if err != nil {
		t.Fatalf("list responses: %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
}

func TestSubmitResponseRequiredCoverageIsWholesale(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)
	f, checkbox, rating := seedForm(t, svc, true)

	// Answer only the optional rating question; the required checkbox is missing.
	_, err := svc.SubmitResponse(ctx, f.ID, Identity{UserID: "u1"}, []Answer{
		{QuestionID: rating.ID, Value: json.RawMessage(`3`)},
	})
	if !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("expected ErrMissingRequired, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, checkbox.Title) {
		t.Fatalf("expected missing question reported by title, got %q", got)
	}

	responses, listErr := svc.ListResponses(ctx, f.ID)
	if listErr != nil {
		t.Fatalf("list responses: %v", listErr)
	}
	if len(responses) != 0 {
		t.Fatalf("rejected submission must not persist anything, found %d responses", len(responses))
	}
}

func TestSubmitResponseInvalidAnswerAbortsEverything(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)
	f, checkbox, rating := seedForm(t, svc, true)

	_, err := svc.SubmitResponse(ctx, f.ID, Identity{UserID: "u1"}, []Answer{
		{QuestionID: checkbox.ID, Value: json.RawMessage(`"` + checkbox.Options[0].ID + `"`)},
		{QuestionID: rating.ID, Value: json.RawMessage(`6`)}, // out of the 1..5 range
	})
	if !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}

	responses, listErr := svc.ListResponses(ctx, f.ID)
	if listErr != nil {
		t.Fatalf("list responses: %v", listErr)
	}
	if len(responses) != 0 {
		t.Fatalf("partially valid submission must not persist, found %d responses", len(responses))
	}
}

func TestSubmitResponseUnknownQuestion(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)
	f, checkbox, _ := seedForm(t, svc, true)

	_, err := svc.SubmitResponse(ctx, f.ID, Identity{UserID: "u1"}, []Answer{
		{QuestionID: checkbox.ID, Value: json.RawMessage(`"` + checkbox.Options[0].ID + `"`)},
		{QuestionID: "ghost", Value: json.RawMessage(`"x"`)},
	})
	if !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
}

func TestSubmitResponseScoresAndCounts(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)
	f, checkbox, rating := seedForm(t, svc, true)

	resp, err := svc.SubmitResponse(ctx, f.ID, Identity{UserID: "u1"}, []Answer{
		{QuestionID: checkbox.ID, Value: json.RawMessage(`"` + checkbox.Options[0].ID + `"`)},
		{QuestionID: rating.ID, Value: json.RawMessage(`3`)},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.ScorableQuestions != 1 || resp.CorrectAnswers != 1 {
		t.Fatalf("expected 1/1 scorable/correct, got %d/%d", resp.CorrectAnswers, resp.ScorableQuestions)
	}
	var graded *Answer
	for i := range resp.Answers {
		if resp.Answers[i].QuestionID == checkbox.ID {
			graded = &resp.Answers[i]
		}
	}
	if graded == nil || graded.IsCorrect == nil || !*graded.IsCorrect || graded.Points != 5 {
		t.Fatalf("expected checkbox answer graded correct with 5 points, got %+v", graded)
	}

	// Wrong option: recorded, scored zero.
	resp2, err := svc.SubmitResponse(ctx, f.ID, Identity{UserID: "u2"}, []Answer{
		{QuestionID: checkbox.ID, Value: json.RawMessage(`"` + checkbox.Options[1].ID + `"`)},
	})
	if err != nil {
		t.Fatalf("submit wrong option: %v", err)
	}
	if resp2.CorrectAnswers != 0 || resp2.ScorableQuestions != 1 {
		t.Fatalf("expected 0/1, got %d/%d", resp2.CorrectAnswers, resp2.ScorableQuestions)
	}
}

func TestSubmitResponseNotifiesProgressBestEffort(t *testing.T) {
	ctx := context.Background()
	notifier := &captureNotifier{err: errors.New("progress store down")}
	svc := NewService(NewMemoryStore(), notifier)
	f, checkbox, _ := seedForm(t, svc, true)

	resp, err := svc.SubmitResponse(ctx, f.ID, Identity{UserID: "u1"}, []Answer{
		{QuestionID: checkbox.ID, Value: json.RawMessage(`"` + checkbox.Options[0].ID + `"`)},
	})
	if err != nil {
		t.Fatalf("notifier failure must not fail the submission, got %v", err)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.calls))
	}
	c := notifier.calls[0]
	if c.UserID != "u1" || c.ContentID != "content-1" || c.ActivityID != "activity-1" || c.FormResponseID != resp.ID {
		t.Fatalf("unexpected completion payload: %+v", c)
	}
	if c.CorrectAnswers != 1 || c.ScorableQuestions != 1 {
		t.Fatalf("expected score counts 1/1, got %d/%d", c.CorrectAnswers, c.ScorableQuestions)
	}
}

func TestSubmitResponseAnonymous(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)

	f, err := svc.CreateForm(ctx, CreateFormInput{Title: "Feedback", AllowAnonymous: true, AllowMultipleResponses: true})
	if err != nil {
		t.Fatalf("create form: %v", err)
	}
	q, err := svc.SaveQuestionDefinition(ctx, f.ID, QuestionDefinition{Kind: KindTextarea, Title: "Comments"})
	if err != nil {
		t.Fatalf("save question: %v", err)
	}
	if _, err := svc.PublishForm(ctx, f.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if _, err := svc.SubmitResponse(ctx, f.ID, Identity{}, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for nameless anonymous, got %v", err)
	}
	if _, err := svc.SubmitResponse(ctx, f.ID, Identity{Name: "Ana"}, []Answer{
		{QuestionID: q.ID, Value: json.RawMessage(`"great lesson"`)},
	}); err != nil {
		t.Fatalf("anonymous submission: %v", err)
	}
}

func TestUpdateQuestionDefinitionKindImmutable(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)
	f, checkbox, _ := seedForm(t, svc, true)

	_, err := svc.UpdateQuestionDefinition(ctx, f.ID, checkbox.ID, QuestionDefinition{
		Kind:  KindText,
		Title: "Now a text question",
	})
	if !errors.Is(err, ErrKindImmutable) {
		t.Fatalf("expected ErrKindImmutable, got %v", err)
	}
}
