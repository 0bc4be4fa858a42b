package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

var ErrInvalidInput = errors.New("invalid input")

// Service owns catalog mutations and the derived-time cascade. Every activity
// mutation re-runs the cascade for the affected content chain synchronously
// within the same request; there is no background scheduler.
type Service struct {
	store  Store
	totals *TotalsCache
}

func NewService(store Store, totals *TotalsCache) *Service {
	return &Service{store: store, totals: totals}
}

type CreateActivityInput struct {
	ContentID     string
	Title         string
	ActivityType  string
	EstimatedTime *int
}

func (s *Service) CreateActivity(ctx context.Context, in CreateActivityInput) (*Activity, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: activity title is required", ErrInvalidInput)
	}
	if in.EstimatedTime != nil && *in.EstimatedTime < 0 {
		return nil, fmt.Errorf("%w: estimated_time cannot be negative", ErrInvalidInput)
	}
	if in.ContentID != "" {
		if _, err := s.store.GetContent(ctx, in.ContentID); err != nil {
			return nil, err
		}
	}
	a, err := s.store.CreateActivity(ctx, Activity{
		ContentID:     in.ContentID,
		Title:         in.Title,
		ActivityType:  strings.TrimSpace(in.ActivityType),
		EstimatedTime: in.EstimatedTime,
	})
	if err != nil {
		return nil, err
	}
	s.recalcChain(ctx, a.ContentID)
	return a, nil
}

type UpdateActivityInput struct {
	ContentID     string
	Title         string
	ActivityType  string
	EstimatedTime *int
}

// UpdateActivity moves or re-times an activity. When the activity changes
// content, both the old and the new chain are recalculated.
func (s *Service) UpdateActivity(ctx context.Context, id string, in UpdateActivityInput) (*Activity, error) {
	in.Title = strings.TrimSpace(in.Title)
	if strings.TrimSpace(id) == "" || in.Title == "" {
		return nil, fmt.Errorf("%w: activity id and title are required", ErrInvalidInput)
	}
	if in.EstimatedTime != nil && *in.EstimatedTime < 0 {
		return nil, fmt.Errorf("%w: estimated_time cannot be negative", ErrInvalidInput)
	}
	existing, err := s.store.GetActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ContentID != "" && in.ContentID != existing.ContentID {
		if _, err := s.store.GetContent(ctx, in.ContentID); err != nil {
			return nil, err
		}
	}
	updated, err := s.store.UpdateActivity(ctx, Activity{
		ID:            id,
		ContentID:     in.ContentID,
		Title:         in.Title,
		ActivityType:  strings.TrimSpace(in.ActivityType),
		EstimatedTime: in.EstimatedTime,
	})
	if err != nil {
		return nil, err
	}
	if existing.ContentID != updated.ContentID {
		s.recalcChain(ctx, existing.ContentID)
	}
	s.recalcChain(ctx, updated.ContentID)
	return updated, nil
}

func (s *Service) DeleteActivity(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	a, err := s.store.GetActivity(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteActivity(ctx, id); err != nil {
		return err
	}
	s.recalcChain(ctx, a.ContentID)
	return nil
}

func (s *Service) GetActivity(ctx context.Context, id string) (*Activity, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	return s.store.GetActivity(ctx, id)
}

func (s *Service) ListActivities(ctx context.Context, contentID string) ([]Activity, error) {
	if strings.TrimSpace(contentID) == "" {
		return nil, ErrInvalidInput
	}
	return s.store.ListActivitiesByContent(ctx, contentID)
}

// RecalculateFromActivity re-derives the totals along the activity's chain.
// Exposed for callers that mutate activities outside this service.
func (s *Service) RecalculateFromActivity(ctx context.Context, activityID string) error {
	a, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return err
	}
	return s.RecalculateFromContent(ctx, a.ContentID)
}

// RecalculateFromContent walks content -> skill -> level -> language, re-summing
// all siblings at each step from current rows. The walk stops without error at
// the first missing parent link. Because every step is a full re-sum rather
// than a delta, re-running it is always safe.
func (s *Service) RecalculateFromContent(ctx context.Context, contentID string) error {
	if contentID == "" {
		return nil
	}
	c, err := s.store.GetContent(ctx, contentID)
	if err != nil {
		return err
	}
	if err := s.recalcContent(ctx, c.ID); err != nil {
		return err
	}
	if c.SkillID == "" {
		return nil
	}
	sk, err := s.store.GetSkill(ctx, c.SkillID)
	if err != nil {
		return err
	}
	if err := s.recalcSkill(ctx, sk.ID); err != nil {
		return err
	}
	if sk.LevelID == "" {
		return nil
	}
	lv, err := s.store.GetLevel(ctx, sk.LevelID)
	if err != nil {
		return err
	}
	if err := s.recalcLevel(ctx, lv.ID); err != nil {
		return err
	}
	if lv.LanguageID == "" {
		return nil
	}
	return s.recalcLanguage(ctx, lv.LanguageID)
}

// RecalculateAll re-derives every total in the catalog. It must visit contents
// first, then skills, then levels, then languages: each step reads the totals
// the previous step just wrote.
func (s *Service) RecalculateAll(ctx context.Context) error {
	contentIDs, err := s.store.ListContentIDs(ctx)
	if err != nil {
		return fmt.Errorf("list contents: %w", err)
	}
	for _, id := range contentIDs {
		if err := s.recalcContent(ctx, id); err != nil {
			return err
		}
	}
	skillIDs, err := s.store.ListSkillIDs(ctx)
	if err != nil {
		return fmt.Errorf("list skills: %w", err)
	}
	for _, id := range skillIDs {
		if err := s.recalcSkill(ctx, id); err != nil {
			return err
		}
	}
	levelIDs, err := s.store.ListLevelIDs(ctx)
	if err != nil {
		return fmt.Errorf("list levels: %w", err)
	}
	for _, id := range levelIDs {
		if err := s.recalcLevel(ctx, id); err != nil {
			return err
		}
	}
	languageIDs, err := s.store.ListLanguageIDs(ctx)
	if err != nil {
		return fmt.Errorf("list languages: %w", err)
	}
	for _, id := range languageIDs {
		if err := s.recalcLanguage(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// recalcChain is the fire-and-forget form of RecalculateFromContent used after
// activity mutations: the mutation has already been persisted, so a cascade
// failure is logged and swallowed rather than failing the request.
func (s *Service) recalcChain(ctx context.Context, contentID string) {
	if contentID == "" {
		return
	}
	if err := s.RecalculateFromContent(ctx, contentID); err != nil {
		log.Printf("cascade recalculation failed: content=%s err=%v", contentID, err)
	}
}

func (s *Service) recalcContent(ctx context.Context, id string) error {
	total, err := s.store.SumActivityTime(ctx, id)
	if err != nil {
		return fmt.Errorf("sum activities for content %s: %w", id, err)
	}
	if err := s.store.SetContentTotalTime(ctx, id, total); err != nil {
		return fmt.Errorf("write content total %s: %w", id, err)
	}
	s.totals.Put(ctx, ScopeContent, id, total)
	return nil
}

func (s *Service) recalcSkill(ctx context.Context, id string) error {
	total, err := s.store.SumContentTime(ctx, id)
	if err != nil {
		return fmt.Errorf("sum contents for skill %s: %w", id, err)
	}
	if err := s.store.SetSkillTotalTime(ctx, id, total); err != nil {
		return fmt.Errorf("write skill total %s: %w", id, err)
	}
	s.totals.Put(ctx, ScopeSkill, id, total)
	return nil
}

func (s *Service) recalcLevel(ctx context.Context, id string) error {
	total, err := s.store.SumSkillTime(ctx, id)
	if err != nil {
		return fmt.Errorf("sum skills for level %s: %w", id, err)
	}
	if err := s.store.SetLevelTotalTime(ctx, id, total); err != nil {
		return fmt.Errorf("write level total %s: %w", id, err)
	}
	s.totals.Put(ctx, ScopeLevel, id, total)
	return nil
}

func (s *Service) recalcLanguage(ctx context.Context, id string) error {
	total, err := s.store.SumLevelTime(ctx, id)
	if err != nil {
		return fmt.Errorf("sum levels for language %s: %w", id, err)
	}
	if err := s.store.SetLanguageTotalTime(ctx, id, total); err != nil {
		return fmt.Errorf("write language total %s: %w", id, err)
	}
	s.totals.Put(ctx, ScopeLanguage, id, total)
	return nil
}
