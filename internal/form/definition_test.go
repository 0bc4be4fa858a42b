package form

import (
	"strings"
	"testing"
)

func intPtr(v int) *int             { return &v }
func floatPtr(v float64) *float64   { return &v }
func opt(id, text string, correct bool) OptionDefinition {
	return OptionDefinition{ID: id, Text: text, IsCorrect: correct}
}

func TestValidateDefinition(t *testing.T) {
	tests := []struct {
		name    string
		def     QuestionDefinition
		wantErr string
	}{
		{
			name: "text valid",
			def:  QuestionDefinition{Kind: KindText, Title: "Your name"},
		},
		{
			name:    "unknown kind",
			def:     QuestionDefinition{Kind: "SLIDER", Title: "X"},
			wantErr: "unsupported question kind",
		},
		{
			name:    "text negative max length",
			def:     QuestionDefinition{Kind: KindTextarea, Title: "Essay", MaxLength: intPtr(-5)},
			wantErr: "max_length must be a positive integer",
		},
		{
			name: "open text with points and correct answer",
			def:  QuestionDefinition{Kind: KindOpenText, Title: "Capital of Peru", Points: 2, CorrectAnswer: "Lima"},
		},
		{
			name:    "open text with points missing correct answer",
			def:     QuestionDefinition{Kind: KindOpenText, Title: "Capital of Peru", Points: 2},
			wantErr: "requires a correct answer",
		},
		{
			name: "multiple choice valid",
			def: QuestionDefinition{Kind: KindMultipleChoice, Title: "Pick two", Points: 1,
				Options: []OptionDefinition{opt("a", "A", true), opt("b", "B", true), opt("c", "C", false)}},
		},
		{
			name:    "multiple choice single option",
			def:     QuestionDefinition{Kind: KindMultipleChoice, Title: "Pick", Options: []OptionDefinition{opt("a", "A", true)}},
			wantErr: "at least 2 options",
		},
		{
			name: "multiple choice empty option text",
			def: QuestionDefinition{Kind: KindMultipleChoice, Title: "Pick",
				Options: []OptionDefinition{opt("a", "A", true), opt("b", "  ", false)}},
			wantErr: "option 2 text is required",
		},
		{
			name: "multiple choice points no correct option",
			def: QuestionDefinition{Kind: KindMultipleChoice, Title: "Pick", Points: 1,
				Options: []OptionDefinition{opt("a", "A", false), opt("b", "B", false)}},
			wantErr: "at least one correct option",
		},
		{
			name: "checkbox points exactly one correct",
			def: QuestionDefinition{Kind: KindCheckbox, Title: "Pick one", Points: 5,
				Options: []OptionDefinition{opt("a", "A", true), opt("b", "B", false), opt("c", "C", false)}},
		},
		{
			name: "checkbox points two correct rejected",
			def: QuestionDefinition{Kind: KindCheckbox, Title: "Pick one", Points: 5,
				Options: []OptionDefinition{opt("a", "A", true), opt("b", "B", true)}},
			wantErr: "exactly one correct option",
		},
		{
			name: "checkbox without points allows any correct count",
			def: QuestionDefinition{Kind: KindCheckbox, Title: "Pick one",
				Options: []OptionDefinition{opt("a", "A", false), opt("b", "B", false)}},
		},
		{
			name: "rating scale valid",
			def:  QuestionDefinition{Kind: KindRatingScale, Title: "Rate", MinValue: floatPtr(1), MaxValue: floatPtr(5)},
		},
		{
			name:    "rating scale missing bounds",
			def:     QuestionDefinition{Kind: KindRatingScale, Title: "Rate", MinValue: floatPtr(1)},
			wantErr: "requires min_value and max_value",
		},
		{
			name:    "rating scale inverted bounds",
			def:     QuestionDefinition{Kind: KindRatingScale, Title: "Rate", MinValue: floatPtr(5), MaxValue: floatPtr(1)},
			wantErr: "min_value < max_value",
		},
		{
			name:    "rating scale range too wide",
			def:     QuestionDefinition{Kind: KindRatingScale, Title: "Rate", MinValue: floatPtr(0), MaxValue: floatPtr(100)},
			wantErr: "between 2 and 10",
		},
		{
			name: "number bounds valid",
			def:  QuestionDefinition{Kind: KindNumber, Title: "Age", MinValue: floatPtr(0), MaxValue: floatPtr(120)},
		},
		{
			name:    "number inverted bounds",
			def:     QuestionDefinition{Kind: KindNumber, Title: "Age", MinValue: floatPtr(10), MaxValue: floatPtr(5)},
			wantErr: "must be less than max_value",
		},
		{
			name: "email no structural constraints",
			def:  QuestionDefinition{Kind: KindEmail, Title: "Email"},
		},
		{
			name: "boolean no structural constraints",
			def:  QuestionDefinition{Kind: KindBoolean, Title: "Agree?"},
		},
		{
			name:    "number with options rejected",
			def:     QuestionDefinition{Kind: KindNumber, Title: "Age", Options: []OptionDefinition{opt("a", "A", false)}},
			wantErr: "do not take options",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDefinition(tc.def)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid definition, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}
