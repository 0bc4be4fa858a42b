package form

import (
	"encoding/json"
	"testing"
)

func TestScoreMultipleChoiceExactSet(t *testing.T) {
	q := QuestionDefinition{
		Kind:   KindMultipleChoice,
		Title:  "Pick the verbs",
		Points: 4,
		Options: []OptionDefinition{
			opt("a", "correr", true),
			opt("b", "mesa", false),
			opt("c", "hablar", true),
			opt("d", "libro", false),
		},
	}

	tests := []struct {
		name        string
		value       string
		wantCorrect bool
		wantPoints  float64
	}{
		{name: "exact set any order", value: `["c","a"]`, wantCorrect: true, wantPoints: 4},
		{name: "subset no partial credit", value: `["a"]`, wantCorrect: false, wantPoints: 0},
		{name: "superset no partial credit", value: `["a","c","b"]`, wantCorrect: false, wantPoints: 0},
		{name: "disjoint", value: `["b","d"]`, wantCorrect: false, wantPoints: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(q, Answer{Value: json.RawMessage(tc.value)})
			if got.IsCorrect == nil {
				t.Fatalf("expected a verdict, got nil")
			}
			if *got.IsCorrect != tc.wantCorrect || got.Points != tc.wantPoints {
				t.Fatalf("expected correct=%v points=%v, got correct=%v points=%v",
					tc.wantCorrect, tc.wantPoints, *got.IsCorrect, got.Points)
			}
		})
	}
}

func TestScoreCheckboxSingleCorrectOption(t *testing.T) {
	q := QuestionDefinition{
		Kind:   KindCheckbox,
		Title:  "Article for 'casa'",
		Points: 5,
		Options: []OptionDefinition{
			opt("a", "el", false),
			opt("b", "la", true),
			opt("c", "los", false),
		},
	}

	got := Score(q, Answer{Value: json.RawMessage(`"b"`)})
	if got.IsCorrect == nil || !*got.IsCorrect || got.Points != 5 {
		t.Fatalf("expected correct with 5 points, got %+v", got)
	}

	got = Score(q, Answer{Value: json.RawMessage(`"a"`)})
	if got.IsCorrect == nil || *got.IsCorrect || got.Points != 0 {
		t.Fatalf("expected incorrect with 0 points, got %+v", got)
	}
}

func TestScoreOpenTextTrimmedCaseSensitive(t *testing.T) {
	q := QuestionDefinition{Kind: KindOpenText, Title: "Capital", Points: 1, CorrectAnswer: "Lima"}

	tests := []struct {
		name        string
		value       string
		wantCorrect bool
	}{
		{name: "exact", value: `"Lima"`, wantCorrect: true},
		{name: "surrounding whitespace trimmed", value: `"  Lima  "`, wantCorrect: true},
		{name: "case sensitive", value: `"lima"`, wantCorrect: false},
		{name: "different answer", value: `"Cusco"`, wantCorrect: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(q, Answer{Value: json.RawMessage(tc.value)})
			if got.IsCorrect == nil || *got.IsCorrect != tc.wantCorrect {
				t.Fatalf("expected correct=%v, got %+v", tc.wantCorrect, got)
			}
		})
	}
}

func TestScoreUnscoredPaths(t *testing.T) {
	t.Run("no points means no verdict", func(t *testing.T) {
		q := QuestionDefinition{Kind: KindMultipleChoice, Options: []OptionDefinition{opt("a", "A", true), opt("b", "B", false)}}
		if got := Score(q, Answer{Value: json.RawMessage(`["a"]`)}); got.IsCorrect != nil {
			t.Fatalf("expected no verdict for zero-point question, got %+v", got)
		}
	})
	t.Run("manual kinds are never auto-scored", func(t *testing.T) {
		q := QuestionDefinition{Kind: KindTextarea, Points: 3}
		if got := Score(q, Answer{Value: json.RawMessage(`"essay"`)}); got.IsCorrect != nil {
			t.Fatalf("expected no verdict for textarea, got %+v", got)
		}
	})
	t.Run("open text without correct answer unscored", func(t *testing.T) {
		q := QuestionDefinition{Kind: KindOpenText, Points: 3}
		if got := Score(q, Answer{Value: json.RawMessage(`"x"`)}); got.IsCorrect != nil {
			t.Fatalf("expected no verdict, got %+v", got)
		}
	})
}
