package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Authoring operations for the non-leaf catalog nodes. Creating a node never
// triggers the cascade by itself; totals only move when activities do.

func (s *Service) CreateLanguage(ctx context.Context, name, code string) (*Language, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: language name is required", ErrInvalidInput)
	}
	return s.store.CreateLanguage(ctx, Language{Name: name, Code: strings.TrimSpace(code)})
}

func (s *Service) GetLanguage(ctx context.Context, id string) (*Language, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	lang, err := s.store.GetLanguage(ctx, id)
	if err != nil {
		return nil, err
	}
	if total, ok := s.totals.Get(ctx, ScopeLanguage, id); ok {
		lang.CalculatedTotalTime = total
	}
	return lang, nil
}

func (s *Service) ListLanguages(ctx context.Context) ([]Language, error) {
	return s.store.ListLanguages(ctx)
}

func (s *Service) CreateLevel(ctx context.Context, languageID, name string, orderIndex int) (*Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: level name is required", ErrInvalidInput)
	}
	if languageID != "" {
		if _, err := s.store.GetLanguage(ctx, languageID); err != nil {
			return nil, err
		}
	}
	return s.store.CreateLevel(ctx, Level{LanguageID: languageID, Name: name, OrderIndex: orderIndex})
}

func (s *Service) GetLevel(ctx context.Context, id string) (*Level, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	lv, err := s.store.GetLevel(ctx, id)
	if err != nil {
		return nil, err
	}
	if total, ok := s.totals.Get(ctx, ScopeLevel, id); ok {
		lv.CalculatedTotalTime = total
	}
	return lv, nil
}

func (s *Service) ListLevels(ctx context.Context, languageID string) ([]Level, error) {
	if strings.TrimSpace(languageID) == "" {
		return nil, ErrInvalidInput
	}
	return s.store.ListLevelsByLanguage(ctx, languageID)
}

func (s *Service) CreateSkill(ctx context.Context, levelID, name string) (*Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: skill name is required", ErrInvalidInput)
	}
	if levelID != "" {
		if _, err := s.store.GetLevel(ctx, levelID); err != nil {
			return nil, err
		}
	}
	return s.store.CreateSkill(ctx, Skill{LevelID: levelID, Name: name})
}

func (s *Service) GetSkill(ctx context.Context, id string) (*Skill, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	sk, err := s.store.GetSkill(ctx, id)
	if err != nil {
		return nil, err
	}
	if total, ok := s.totals.Get(ctx, ScopeSkill, id); ok {
		sk.CalculatedTotalTime = total
	}
	return sk, nil
}

func (s *Service) ListSkills(ctx context.Context, levelID string) ([]Skill, error) {
	if strings.TrimSpace(levelID) == "" {
		return nil, ErrInvalidInput
	}
	return s.store.ListSkillsByLevel(ctx, levelID)
}

func (s *Service) CreateContent(ctx context.Context, skillID, title string) (*Content, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: content title is required", ErrInvalidInput)
	}
	if skillID != "" {
		if _, err := s.store.GetSkill(ctx, skillID); err != nil {
			return nil, err
		}
	}
	return s.store.CreateContent(ctx, Content{SkillID: skillID, Title: title})
}

func (s *Service) GetContent(ctx context.Context, id string) (*Content, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	c, err := s.store.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if total, ok := s.totals.Get(ctx, ScopeContent, id); ok {
		c.CalculatedTotalTime = total
	}
	return c, nil
}

func (s *Service) ListContents(ctx context.Context, skillID string) ([]Content, error) {
	if strings.TrimSpace(skillID) == "" {
		return nil, ErrInvalidInput
	}
	return s.store.ListContentsBySkill(ctx, skillID)
}
