package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidInput = errors.New("invalid input")

// ActivityCounter reports how many activities live under a content. The count
// is read once, when a progress row is first created.
type ActivityCounter interface {
	CountActivitiesByContent(ctx context.Context, contentID string) (int, error)
}

type Service struct {
	store   Store
	counter ActivityCounter
}

func NewService(store Store, counter ActivityCounter) *Service {
	return &Service{store: store, counter: counter}
}

type CompletionInput struct {
	UserID         string
	ContentID      string
	ActivityID     string
	FormResponseID string
	Score          float64
	MaxScore       float64
}

// RecordCompletion marks an activity completed for a user and appends an
// attempt record. Progress counters use set semantics: a repeat of the same
// activity never inflates them, but the attempt history grows on every call.
// IsCompleted and CompletedAt are monotonic; once set they never clear.
func (s *Service) RecordCompletion(ctx context.Context, in CompletionInput) (*UserProgress, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.ContentID = strings.TrimSpace(in.ContentID)
	in.ActivityID = strings.TrimSpace(in.ActivityID)
	if in.UserID == "" || in.ContentID == "" || in.ActivityID == "" {
		return nil, fmt.Errorf("%w: user, content and activity are required", ErrInvalidInput)
	}

	row, err := s.store.GetProgress(ctx, in.UserID, in.ContentID)
	if errors.Is(err, ErrProgressNotFound) {
		total, countErr := s.counter.CountActivitiesByContent(ctx, in.ContentID)
		if countErr != nil {
			return nil, fmt.Errorf("count activities: %w", countErr)
		}
		row = &UserProgress{
			UserID:          in.UserID,
			ContentID:       in.ContentID,
			TotalActivities: total,
		}
	} else if err != nil {
		return nil, err
	}

	if !containsID(row.CompletedActivityIDs, in.ActivityID) {
		row.CompletedActivityIDs = append(row.CompletedActivityIDs, in.ActivityID)
	}
	if row.TotalActivities > 0 {
		row.ProgressPercentage = float64(len(row.CompletedActivityIDs)) / float64(row.TotalActivities) * 100
	} else {
		row.ProgressPercentage = 0
	}
	if !row.IsCompleted && row.ProgressPercentage >= 100 {
		row.IsCompleted = true
		now := time.Now().UTC()
		row.CompletedAt = &now
	}

	saved, err := s.store.SaveProgress(ctx, *row)
	if err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}

	if _, err := s.store.AppendAttempt(ctx, AttemptRecord{
		UserID:         in.UserID,
		ActivityID:     in.ActivityID,
		FormResponseID: in.FormResponseID,
		Score:          in.Score,
		MaxScore:       in.MaxScore,
	}); err != nil {
		return nil, fmt.Errorf("append attempt: %w", err)
	}
	return saved, nil
}

// GetUserProgress returns the user's rows; with a contentID it narrows to that
// single content (empty slice when none exists yet).
func (s *Service) GetUserProgress(ctx context.Context, userID, contentID string) ([]UserProgress, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	if contentID != "" {
		row, err := s.store.GetProgress(ctx, userID, contentID)
		if errors.Is(err, ErrProgressNotFound) {
			return []UserProgress{}, nil
		}
		if err != nil {
			return nil, err
		}
		return []UserProgress{*row}, nil
	}
	return s.store.ListProgressByUser(ctx, userID)
}

func (s *Service) GetOverallProgress(ctx context.Context, userID string) (*OverallProgress, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	rows, err := s.store.ListProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &OverallProgress{TotalContents: len(rows)}
	for _, row := range rows {
		if row.IsCompleted {
			out.CompletedContents++
		}
		out.TotalActivities += row.TotalActivities
		out.CompletedActivities += len(row.CompletedActivityIDs)
	}
	if out.TotalActivities > 0 {
		out.OverallPercentage = float64(out.CompletedActivities) / float64(out.TotalActivities) * 100
	}
	return out, nil
}

func (s *Service) ListAttempts(ctx context.Context, userID, activityID string) ([]AttemptRecord, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(activityID) == "" {
		return nil, ErrInvalidInput
	}
	return s.store.ListAttempts(ctx, userID, activityID)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
