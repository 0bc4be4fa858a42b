package form

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDefinition = errors.New("invalid question definition")

// ValidateDefinition checks an authored question definition against the
// structural rules of its kind. It is called before any save; definitions that
// fail here are never persisted. Each failing branch carries its own message.
func ValidateDefinition(def QuestionDefinition) error {
	if !def.Kind.Known() {
		return fmt.Errorf("%w: unsupported question kind '%s'", ErrInvalidDefinition, def.Kind)
	}
	if strings.TrimSpace(def.Title) == "" {
		return fmt.Errorf("%w: question title is required", ErrInvalidDefinition)
	}
	if def.Points < 0 {
		return fmt.Errorf("%w: points cannot be negative", ErrInvalidDefinition)
	}

	if def.Kind.textLike() && def.MaxLength != nil && *def.MaxLength <= 0 {
		return fmt.Errorf("%w: max_length must be a positive integer", ErrInvalidDefinition)
	}

	switch def.Kind {
	case KindOpenText:
		if def.Points > 0 && strings.TrimSpace(def.CorrectAnswer) == "" {
			return fmt.Errorf("%w: open text with points requires a correct answer", ErrInvalidDefinition)
		}
	case KindMultipleChoice, KindCheckbox:
		if len(def.Options) < 2 {
			return fmt.Errorf("%w: %s questions require at least 2 options", ErrInvalidDefinition, strings.ToLower(string(def.Kind)))
		}
		for i, opt := range def.Options {
			if strings.TrimSpace(opt.Text) == "" {
				return fmt.Errorf("%w: option %d text is required", ErrInvalidDefinition, i+1)
			}
		}
		if def.Points > 0 {
			correct := 0
			for _, opt := range def.Options {
				if opt.IsCorrect {
					correct++
				}
			}
			// CHECKBOX models single-answer-among-many here, so it demands
			// exactly one correct option while MULTIPLE_CHOICE allows several.
			if def.Kind == KindMultipleChoice && correct < 1 {
				return fmt.Errorf("%w: multiple choice with points requires at least one correct option", ErrInvalidDefinition)
			}
			if def.Kind == KindCheckbox && correct != 1 {
				return fmt.Errorf("%w: checkbox with points requires exactly one correct option", ErrInvalidDefinition)
			}
		}
	case KindRatingScale:
		if def.MinValue == nil || def.MaxValue == nil {
			return fmt.Errorf("%w: rating scale requires min_value and max_value", ErrInvalidDefinition)
		}
		if *def.MinValue >= *def.MaxValue {
			return fmt.Errorf("%w: rating scale requires min_value < max_value", ErrInvalidDefinition)
		}
		if span := *def.MaxValue - *def.MinValue + 1; span < 2 || span > 10 {
			return fmt.Errorf("%w: rating scale range must span between 2 and 10 values", ErrInvalidDefinition)
		}
	case KindNumber:
		if def.MinValue != nil && def.MaxValue != nil && *def.MinValue >= *def.MaxValue {
			return fmt.Errorf("%w: number min_value must be less than max_value", ErrInvalidDefinition)
		}
	}

	if !def.Kind.hasOptions() && len(def.Options) > 0 {
		return fmt.Errorf("%w: %s questions do not take options", ErrInvalidDefinition, strings.ToLower(string(def.Kind)))
	}
	return nil
}
