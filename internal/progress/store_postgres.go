package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresStore keeps one user_progress row per (user, content), enforced by
// a unique constraint, and an append-only attempts table. The completed set
// is a jsonb array.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) GetProgress(ctx context.Context, userID, contentID string) (*UserProgress, error) {
	var out UserProgress
	var completed []byte
	var completedAt sql.NullTime
	err := p.db.QueryRowContext(ctx, `
		SELECT user_id, content_id, completed_activity_ids, total_activities,
			progress_percentage, is_completed, completed_at
		FROM user_progress
		WHERE user_id = $1 AND content_id = $2
	`, userID, contentID).Scan(
		&out.UserID, &out.ContentID, &completed, &out.TotalActivities,
		&out.ProgressPercentage, &out.IsCompleted, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	if err := json.Unmarshal(completed, &out.CompletedActivityIDs); err != nil {
		return nil, fmt.Errorf("decode completed set: %w", err)
	}
	out.CompletedAt = nullTimePtr(completedAt)
	return &out, nil
}

func (p *PostgresStore) SaveProgress(ctx context.Context, row UserProgress) (*UserProgress, error) {
	completed, err := json.Marshal(row.CompletedActivityIDs)
	if err != nil {
		return nil, fmt.Errorf("encode completed set: %w", err)
	}
	var completedAt any
	if row.CompletedAt != nil {
		completedAt = *row.CompletedAt
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO user_progress (
			user_id, content_id, completed_activity_ids, total_activities,
			progress_percentage, is_completed, completed_at, created_at, updated_at
		) VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7, now(), now())
		ON CONFLICT (user_id, content_id)
		DO UPDATE SET
			completed_activity_ids = EXCLUDED.completed_activity_ids,
			total_activities = EXCLUDED.total_activities,
			progress_percentage = EXCLUDED.progress_percentage,
			is_completed = EXCLUDED.is_completed,
			completed_at = COALESCE(user_progress.completed_at, EXCLUDED.completed_at),
			updated_at = now()
	`, row.UserID, row.ContentID, string(completed), row.TotalActivities,
		row.ProgressPercentage, row.IsCompleted, completedAt)
	if err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}
	return p.GetProgress(ctx, row.UserID, row.ContentID)
}

func (p *PostgresStore) ListProgressByUser(ctx context.Context, userID string) ([]UserProgress, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT user_id, content_id, completed_activity_ids, total_activities,
			progress_percentage, is_completed, completed_at
		FROM user_progress
		WHERE user_id = $1
		ORDER BY content_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	out := make([]UserProgress, 0)
	for rows.Next() {
		var it UserProgress
		var completed []byte
		var completedAt sql.NullTime
		if err := rows.Scan(
			&it.UserID, &it.ContentID, &completed, &it.TotalActivities,
			&it.ProgressPercentage, &it.IsCompleted, &completedAt,
		); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		if err := json.Unmarshal(completed, &it.CompletedActivityIDs); err != nil {
			return nil, fmt.Errorf("decode completed set: %w", err)
		}
		it.CompletedAt = nullTimePtr(completedAt)
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}
	return out, nil
}

// AppendAttempt assigns attempt_number inside the insert so two concurrent
// submissions cannot both claim the same number under read-committed.
func (p *PostgresStore) AppendAttempt(ctx context.Context, a AttemptRecord) (*AttemptRecord, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	var out AttemptRecord
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO activity_attempts (
			id, user_id, activity_id, form_response_id, attempt_number,
			score, max_score, created_at
		)
		SELECT $1, $2, $3, NULLIF($4,''),
			COALESCE(MAX(attempt_number), 0) + 1,
			$5, $6, now()
		FROM activity_attempts
		WHERE user_id = $2 AND activity_id = $3
		RETURNING id, user_id, activity_id, COALESCE(form_response_id,''),
			attempt_number, score, max_score, created_at
	`, a.ID, a.UserID, a.ActivityID, a.FormResponseID, a.Score, a.MaxScore).Scan(
		&out.ID, &out.UserID, &out.ActivityID, &out.FormResponseID,
		&out.AttemptNumber, &out.Score, &out.MaxScore, &out.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("append attempt: %w", err)
	}
	return &out, nil
}

func (p *PostgresStore) ListAttempts(ctx context.Context, userID, activityID string) ([]AttemptRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, activity_id, COALESCE(form_response_id,''),
			attempt_number, score, max_score, created_at
		FROM activity_attempts
		WHERE user_id = $1 AND activity_id = $2
		ORDER BY attempt_number ASC
	`, userID, activityID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	out := make([]AttemptRecord, 0)
	for rows.Next() {
		var it AttemptRecord
		if err := rows.Scan(
			&it.ID, &it.UserID, &it.ActivityID, &it.FormResponseID,
			&it.AttemptNumber, &it.Score, &it.MaxScore, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
