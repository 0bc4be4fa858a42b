package form

import (
	"sort"
	"strings"
)

// ScoreResult is the outcome of auto-grading one answer. IsCorrect is nil when
// the question is not auto-scored (no points, or a kind left to manual review).
type ScoreResult struct {
	IsCorrect *bool   `json:"is_correct,omitempty"`
	Points    float64 `json:"points"`
}

// Score grades a single answer against its question. Only questions with
// points and an auto-gradable kind produce a verdict; everything else is
// recorded unscored. Multiple choice demands the exact correct set, with no
// partial credit for subsets or supersets.
func Score(q QuestionDefinition, a Answer) ScoreResult {
	if !Scorable(q) {
		return ScoreResult{}
	}

	switch q.Kind {
	case KindMultipleChoice:
		selected, err := decodeStringSlice(a.Value)
		if err != nil {
			return verdict(false, 0)
		}
		if equalSet(selected, correctOptionIDs(q)) {
			return verdict(true, q.Points)
		}
		return verdict(false, 0)
	case KindCheckbox, KindBoolean:
		selected, err := decodeString(a.Value)
		if err != nil {
			return verdict(false, 0)
		}
		correct := singleCorrectOptionID(q)
		if correct != "" && strings.TrimSpace(selected) == correct {
			return verdict(true, q.Points)
		}
		return verdict(false, 0)
	case KindOpenText:
		submitted, err := decodeString(a.Value)
		if err != nil {
			return verdict(false, 0)
		}
		// Trimmed, case-sensitive comparison. No further normalization.
		if strings.TrimSpace(submitted) == strings.TrimSpace(q.CorrectAnswer) {
			return verdict(true, q.Points)
		}
		return verdict(false, 0)
	default:
		return ScoreResult{}
	}
}

func verdict(correct bool, points float64) ScoreResult {
	return ScoreResult{IsCorrect: &correct, Points: points}
}

func correctOptionIDs(q QuestionDefinition) []string {
	out := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		if opt.IsCorrect {
			out = append(out, opt.ID)
		}
	}
	return out
}

func singleCorrectOptionID(q QuestionDefinition) string {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.ID
		}
	}
	return ""
}

func equalSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	aa := append([]string(nil), a...)
	bb := append([]string(nil), b...)
	sort.Strings(aa)
	sort.Strings(bb)
	for i := range aa {
		if aa[i] != bb[i] {
			return false
		}
	}
	return true
}
