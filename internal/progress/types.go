package progress

import "time"

// UserProgress is one row per (user, content), derived entirely from recorded
// completions. TotalActivities is snapshotted when the row is first created;
// activities added to the content later do not retroactively change it.
type UserProgress struct {
	UserID               string     `json:"user_id"`
	ContentID            string     `json:"content_id"`
	CompletedActivityIDs []string   `json:"completed_activity_ids"`
	TotalActivities      int        `json:"total_activities"`
	ProgressPercentage   float64    `json:"progress_percentage"`
	IsCompleted          bool       `json:"is_completed"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
}

// AttemptRecord is append-only history. Unlike the completion set above, every
// submission lands here, including repeats of an already-completed activity.
type AttemptRecord struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ActivityID     string    `json:"activity_id"`
	FormResponseID string    `json:"form_response_id,omitempty"`
	AttemptNumber  int       `json:"attempt_number"`
	Score          float64   `json:"score"`
	MaxScore       float64   `json:"max_score"`
	CreatedAt      time.Time `json:"created_at"`
}

// OverallProgress sums a user's progress rows across every content.
type OverallProgress struct {
	TotalContents       int     `json:"total_contents"`
	CompletedContents   int     `json:"completed_contents"`
	OverallPercentage   float64 `json:"overall_percentage"`
	TotalActivities     int     `json:"total_activities"`
	CompletedActivities int     `json:"completed_activities"`
}
