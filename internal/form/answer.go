package form

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

var (
	ErrInvalidAnswer   = errors.New("invalid answer for question type")
	ErrAnswerRequired  = errors.New("answer is required")
	datePattern        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern        = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// ValidateAnswer checks a submitted answer's shape against the question it
// answers. An absent value is fine for optional questions and a failure for
// required ones; present values are decoded per kind.
func ValidateAnswer(q QuestionDefinition, a Answer) error {
	if answerAbsent(a.Value) {
		if q.IsRequired {
			return fmt.Errorf("%w: %s", ErrAnswerRequired, q.Title)
		}
		return nil
	}

	switch q.Kind {
	case KindText, KindTextarea, KindOpenText, KindEmail:
		s, err := decodeString(a.Value)
		if err != nil || strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: %s expects a non-empty text value", ErrInvalidAnswer, q.Kind)
		}
		if q.MaxLength != nil && len(strings.TrimSpace(s)) > *q.MaxLength {
			return fmt.Errorf("%w: %s value exceeds max length %d", ErrInvalidAnswer, q.Kind, *q.MaxLength)
		}
	case KindNumber:
		n, err := decodeNumber(a.Value)
		if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			return fmt.Errorf("%w: NUMBER expects a finite number", ErrInvalidAnswer)
		}
		if q.MinValue != nil && n < *q.MinValue {
			return fmt.Errorf("%w: NUMBER value below minimum %v", ErrInvalidAnswer, *q.MinValue)
		}
		if q.MaxValue != nil && n > *q.MaxValue {
			return fmt.Errorf("%w: NUMBER value above maximum %v", ErrInvalidAnswer, *q.MaxValue)
		}
	case KindMultipleChoice:
		ids, err := decodeStringSlice(a.Value)
		if err != nil || len(ids) == 0 {
			return fmt.Errorf("%w: MULTIPLE_CHOICE expects a non-empty list of option ids", ErrInvalidAnswer)
		}
	case KindCheckbox, KindBoolean:
		s, err := decodeString(a.Value)
		if err != nil || strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: %s expects a single selected value", ErrInvalidAnswer, q.Kind)
		}
	case KindRatingScale:
		n, err := decodeNumber(a.Value)
		if err != nil {
			return fmt.Errorf("%w: RATING_SCALE expects a number", ErrInvalidAnswer)
		}
		// Defaults apply only when the question omitted its bounds.
		min, max := 1.0, 5.0
		if q.MinValue != nil {
			min = *q.MinValue
		}
		if q.MaxValue != nil {
			max = *q.MaxValue
		}
		if n < min || n > max {
			return fmt.Errorf("%w: RATING_SCALE value must be between %v and %v", ErrInvalidAnswer, min, max)
		}
	case KindDate:
		s, err := decodeString(a.Value)
		if err != nil || !datePattern.MatchString(strings.TrimSpace(s)) {
			return fmt.Errorf("%w: DATE expects YYYY-MM-DD", ErrInvalidAnswer)
		}
	case KindTime:
		s, err := decodeString(a.Value)
		if err != nil || !timePattern.MatchString(strings.TrimSpace(s)) {
			return fmt.Errorf("%w: TIME expects HH:MM", ErrInvalidAnswer)
		}
	default:
		return fmt.Errorf("%w: unsupported question kind '%s'", ErrInvalidAnswer, q.Kind)
	}
	return nil
}

func answerAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func decodeNumber(raw json.RawMessage) (float64, error) {
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func decodeStringSlice(raw json.RawMessage) ([]string, error) {
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it != "" {
			out = append(out, it)
		}
	}
	return out, nil
}
