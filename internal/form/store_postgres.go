package form

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PostgresStore is the database-backed Store. Response rows and their answers
// are written inside one transaction so a submission is all-or-nothing.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateForm(ctx context.Context, f Form) (*Form, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = FormStatusDraft
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO forms (id, content_id, activity_id, title, status, allow_multiple_responses, allow_anonymous, created_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7, now())
		RETURNING id, COALESCE(content_id, ''), COALESCE(activity_id, ''), title, status, allow_multiple_responses, allow_anonymous, created_at
	`, f.ID, f.ContentID, f.ActivityID, f.Title, f.Status, f.AllowMultipleResponses, f.AllowAnonymous)
	return scanForm(row)
}

func (s *PostgresStore) GetForm(ctx context.Context, formID string) (*Form, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(content_id, ''), COALESCE(activity_id, ''), title, status, allow_multiple_responses, allow_anonymous, created_at
		FROM forms
		WHERE id = $1
	`, formID)
	out, err := scanForm(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("load form: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SetFormStatus(ctx context.Context, formID, status string) (*Form, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE forms
		SET status = $2
		WHERE id = $1
		RETURNING id, COALESCE(content_id, ''), COALESCE(activity_id, ''), title, status, allow_multiple_responses, allow_anonymous, created_at
	`, formID, status)
	out, err := scanForm(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("update form status: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SaveQuestion(ctx context.Context, q QuestionDefinition) (*QuestionDefinition, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM forms WHERE id = $1)`, q.FormID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check form exists: %w", err)
	}
	if !exists {
		return nil, ErrFormNotFound
	}

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO form_questions (
			id, form_id, kind, title, order_index, is_required,
			max_length, min_value, max_value, points, correct_answer
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''))
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			order_index = EXCLUDED.order_index,
			is_required = EXCLUDED.is_required,
			max_length = EXCLUDED.max_length,
			min_value = EXCLUDED.min_value,
			max_value = EXCLUDED.max_value,
			points = EXCLUDED.points,
			correct_answer = EXCLUDED.correct_answer
	`, q.ID, q.FormID, string(q.Kind), q.Title, q.OrderIndex, q.IsRequired,
		nullIntPtr(q.MaxLength), nullFloatPtr(q.MinValue), nullFloatPtr(q.MaxValue), q.Points, q.CorrectAnswer); err != nil {
		return nil, fmt.Errorf("upsert question: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM question_options WHERE question_id = $1`, q.ID); err != nil {
		return nil, fmt.Errorf("clear question options: %w", err)
	}
	for i := range q.Options {
		if q.Options[i].ID == "" {
			q.Options[i].ID = uuid.NewString()
		}
		opt := q.Options[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO question_options (id, question_id, text, value, order_index, is_correct)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		`, opt.ID, q.ID, opt.Text, opt.Value, opt.OrderIndex, opt.IsCorrect); err != nil {
			return nil, fmt.Errorf("insert question option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	out := cloneQuestion(q)
	return &out, nil
}

func (s *PostgresStore) GetQuestion(ctx context.Context, formID, questionID string) (*QuestionDefinition, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, form_id, kind, title, order_index, is_required,
			max_length, min_value, max_value, points, COALESCE(correct_answer, '')
		FROM form_questions
		WHERE form_id = $1 AND id = $2
	`, formID, questionID)
	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("load question: %w", err)
	}
	opts, err := s.loadOptions(ctx, []string{q.ID})
	if err != nil {
		return nil, err
	}
	q.Options = opts[q.ID]
	return q, nil
}

func (s *PostgresStore) ListQuestions(ctx context.Context, formID string) ([]QuestionDefinition, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM forms WHERE id = $1)`, formID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check form exists: %w", err)
	}
	if !exists {
		return nil, ErrFormNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, kind, title, order_index, is_required,
			max_length, min_value, max_value, points, COALESCE(correct_answer, '')
		FROM form_questions
		WHERE form_id = $1
		ORDER BY order_index ASC, id ASC
	`, formID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	items := make([]QuestionDefinition, 0)
	ids := make([]string, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		items = append(items, *q)
		ids = append(ids, q.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	opts, err := s.loadOptions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Options = opts[items[i].ID]
	}
	return items, nil
}

func (s *PostgresStore) DeleteQuestion(ctx context.Context, formID, questionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM question_options WHERE question_id = $1`, questionID); err != nil {
		return fmt.Errorf("delete question options: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM form_questions WHERE form_id = $1 AND id = $2`, formID, questionID)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete question affected rows: %w", err)
	}
	if affected == 0 {
		return ErrQuestionNotFound
	}
	return tx.Commit()
}

func (s *PostgresStore) HasResponse(ctx context.Context, formID, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, nil
	}
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM form_responses WHERE form_id = $1 AND user_id = $2)
	`, formID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check response exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) SaveResponse(ctx context.Context, resp FormResponse) (*FormResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}
	var createdAt time.Time
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO form_responses (
			id, form_id, user_id, respondent_name, respondent_email,
			status, correct_answers, scorable_questions, created_at
		) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, now())
		RETURNING created_at
	`, resp.ID, resp.FormID, resp.Respondent.UserID, resp.Respondent.Name, resp.Respondent.Email,
		resp.Status, resp.CorrectAnswers, resp.ScorableQuestions).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("insert response: %w", err)
	}
	resp.CreatedAt = createdAt

	for _, a := range resp.Answers {
		var isCorrect interface{}
		if a.IsCorrect != nil {
			isCorrect = *a.IsCorrect
		}
		value := a.Value
		if len(value) == 0 {
			value = json.RawMessage(`null`)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO response_answers (response_id, question_id, kind, value, is_correct, points)
			VALUES ($1, $2, $3, $4::jsonb, $5, $6)
		`, resp.ID, a.QuestionID, string(a.Kind), []byte(value), isCorrect, a.Points); err != nil {
			return nil, fmt.Errorf("insert answer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &resp, nil
}

func (s *PostgresStore) ListResponses(ctx context.Context, formID string) ([]FormResponse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, COALESCE(user_id, ''), COALESCE(respondent_name, ''), COALESCE(respondent_email, ''),
			status, correct_answers, scorable_questions, created_at
		FROM form_responses
		WHERE form_id = $1
		ORDER BY created_at ASC, id ASC
	`, formID)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	items := make([]FormResponse, 0)
	for rows.Next() {
		var r FormResponse
		if err := rows.Scan(
			&r.ID,
			&r.FormID,
			&r.Respondent.UserID,
			&r.Respondent.Name,
			&r.Respondent.Email,
			&r.Status,
			&r.CorrectAnswers,
			&r.ScorableQuestions,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate responses: %w", err)
	}

	for i := range items {
		answers, err := s.loadAnswers(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Answers = answers
	}
	return items, nil
}

func (s *PostgresStore) loadAnswers(ctx context.Context, responseID string) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question_id, kind, value, is_correct, points
		FROM response_answers
		WHERE response_id = $1
		ORDER BY question_id ASC
	`, responseID)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	items := make([]Answer, 0)
	for rows.Next() {
		var a Answer
		var kind string
		var isCorrect sql.NullBool
		var value []byte
		if err := rows.Scan(&a.QuestionID, &kind, &value, &isCorrect, &a.Points); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		a.Kind = Kind(kind)
		a.Value = json.RawMessage(value)
		if isCorrect.Valid {
			v := isCorrect.Bool
			a.IsCorrect = &v
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) loadOptions(ctx context.Context, questionIDs []string) (map[string][]OptionDefinition, error) {
	out := make(map[string][]OptionDefinition, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, text, COALESCE(value, ''), order_index, is_correct
		FROM question_options
		WHERE question_id = ANY($1)
		ORDER BY order_index ASC, id ASC
	`, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var opt OptionDefinition
		var questionID string
		if err := rows.Scan(&opt.ID, &questionID, &opt.Text, &opt.Value, &opt.OrderIndex, &opt.IsCorrect); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		out[questionID] = append(out[questionID], opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate options: %w", err)
	}
	return out, nil
}

func scanForm(scanner interface{ Scan(dest ...any) error }) (*Form, error) {
	var f Form
	if err := scanner.Scan(
		&f.ID,
		&f.ContentID,
		&f.ActivityID,
		&f.Title,
		&f.Status,
		&f.AllowMultipleResponses,
		&f.AllowAnonymous,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

func scanQuestion(scanner interface{ Scan(dest ...any) error }) (*QuestionDefinition, error) {
	var q QuestionDefinition
	var kind string
	var maxLength sql.NullInt64
	var minValue, maxValue sql.NullFloat64
	if err := scanner.Scan(
		&q.ID,
		&q.FormID,
		&kind,
		&q.Title,
		&q.OrderIndex,
		&q.IsRequired,
		&maxLength,
		&minValue,
		&maxValue,
		&q.Points,
		&q.CorrectAnswer,
	); err != nil {
		return nil, err
	}
	q.Kind = Kind(kind)
	if maxLength.Valid {
		v := int(maxLength.Int64)
		q.MaxLength = &v
	}
	if minValue.Valid {
		v := minValue.Float64
		q.MinValue = &v
	}
	if maxValue.Valid {
		v := maxValue.Float64
		q.MaxValue = &v
	}
	return &q, nil
}

func nullIntPtr(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloatPtr(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
