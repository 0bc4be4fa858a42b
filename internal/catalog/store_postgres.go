package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists the catalog hierarchy. Parent links are nullable
// foreign keys; an empty string maps to NULL on write and back on read.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) CreateLanguage(ctx context.Context, l Language) (*Language, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	var out Language
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO languages (id, name, code, calculated_total_time, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3,''), $4, now(), now())
		RETURNING id, name, COALESCE(code,''), calculated_total_time
	`, l.ID, l.Name, l.Code, l.CalculatedTotalTime).Scan(&out.ID, &out.Name, &out.Code, &out.CalculatedTotalTime)
	if err != nil {
		return nil, fmt.Errorf("create language: %w", err)
	}
	return &out, nil
}

func (p *PostgresStore) GetLanguage(ctx context.Context, id string) (*Language, error) {
	var out Language
	err := p.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(code,''), calculated_total_time
		FROM languages
		WHERE id = $1
	`, id).Scan(&out.ID, &out.Name, &out.Code, &out.CalculatedTotalTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get language: %w", err)
	}
	return &out, nil
}

func (p *PostgresStore) ListLanguages(ctx context.Context) ([]Language, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(code,''), calculated_total_time
		FROM languages
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	defer rows.Close()

	out := make([]Language, 0)
	for rows.Next() {
		var it Language
		if err := rows.Scan(&it.ID, &it.Name, &it.Code, &it.CalculatedTotalTime); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate languages: %w", err)
	}
	return out, nil
}

func (p *PostgresStore) CreateLevel(ctx context.Context, l Level) (*Level, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	var out Level
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO levels (id, language_id, name, order_index, calculated_total_time, created_at, updated_at)
		VALUES ($1, NULLIF($2,''), $3, $4, $5, now(), now())
		RETURNING id, COALESCE(language_id,''), name, order_index, calculated_total_time
	`, l.ID, l.LanguageID, l.Name, l.OrderIndex, l.CalculatedTotalTime).
		Scan(&out.ID, &out.LanguageID, &out.Name, &out.OrderIndex, &out.CalculatedTotalTime)
	if err != nil {
		return nil, fmt.Errorf("create level: %w", err)
	}
	return &out, nil
}

func (p *PostgresStore) GetLevel(ctx context.Context, id string) (*Level, error) {
	var out Level
	err := p.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(language_id,''), name, order_index, calculated_total_time
		FROM levels
		WHERE id = $1
	`, id).Scan(&out.ID, &out.LanguageID, &out.Name, &out.OrderIndex, &out.CalculatedTotalTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get level: %w", err)
	}
	return &out, nil
}

func (p *PostgresStore) ListLevelsByLanguage(ctx context.Context, languageID string) ([]Level, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, COALESCE(language_id,''), name, order_index, calculated_total_time
		FROM levels
		WHERE language_id = $1
		ORDER BY order_index ASC, name ASC
	`, languageID)
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	defer rows.Close()

	out := make([]Level, 0)
	for rows.Next() {
		var it Level
		if err := rows.Scan(&it.ID, &it.LanguageID, &it.Name, &it.OrderIndex, &it.CalculatedTotalTime); err != nil {
			return nil, fmt.Errorf("scan level: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate levels: %w", err)
	}
	return out, nil
}

func (p *PostgresStore) CreateSkill(ctx context.Context, s Skill) (*Skill, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	var out Skill
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO skills (id, level_id, name, calculated_total_time, created_at, updated_at)
		VALUES ($1, NULLIF($2,''), $3, $4, now(), now())
		RETURNING id, COALESCE(level_id,''), name, calculated_total_time
	`, s.ID, s.LevelID, s.Name, s.CalculatedTotalTime).
		Scan(&out.ID, &out.LevelID, &out.Name, &out.CalculatedTotalTime)
	if err != nil {
		return nil, fmt.Errorf("create skill: %w", err)
	}
	return &out, nil
}

func (p *PostgresStore) GetSkill(ctx context.Context, id string) (*Skill, error) {
	var out Skill
	err := p.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(level_id,''), name, calculated_total_time
		FROM skills
		WHERE id = $1
	`, id).Scan(&out.ID, &out.LevelID, &out.Name, &out.CalculatedTotalTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get skill: %w", err)
	}
	return &out, nil
}

func (p *PostgresStore) ListSkillsByLevel(ctx context.Context, levelID string) ([]Skill, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, COALESCE(level_id,''), name, calculated_total_time
		FROM skills
		WHERE level_id = $1
		ORDER BY name ASC, id ASC
	`, levelID)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	out := make([]Skill, 0)
	for rows.Next() {
		var it Skill
		if err := rows.Scan(&it.ID, &it.LevelID, &it.Name, &it.CalculatedTotalTime); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skills: %w", err)
	}
	return out, nil
}

func (p *PostgresStore) CreateContent(ctx context.Context, c Content) (*Content, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	var out Content
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO contents (id, skill_id, title, calculated_total_time, created_at, updated_at)
		VALUES ($1, NULLIF($2,''), $3, $4, now(), now())
		RETURNING id, COALESCE(skill_id,''), title, calculated_total_time
	`, c.ID, c.SkillID, c.Title, c.CalculatedTotalTime).
		Scan(&out.ID, &out.SkillID, &out.Title, &out.CalculatedTotalTime)
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return &out, nil
}

func (p *PostgresStore) GetContent(ctx context.Context, id string) (*Content, error) {
	var out Content
	err := p.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(skill_id,''), title, calculated_total_time
		FROM contents
		WHERE id = $1
	`, id).Scan(&out.ID, &out.SkillID, &out.Title, &out.CalculatedTotalTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	return &out, nil
}

func (p *PostgresStore) ListContentsBySkill(ctx context.Context, skillID string) ([]Content, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, COALESCE(skill_id,''), title, calculated_total_time
		FROM contents
		WHERE skill_id = $1
		ORDER BY title ASC, id ASC
	`, skillID)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	defer rows.Close()

	out := make([]Content, 0)
	for rows.Next() {
		var it Content
		if err := rows.Scan(&it.ID, &it.SkillID, &it.Title, &it.CalculatedTotalTime); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contents: %w", err)
	}
	return out, nil
}

func (p *PostgresStore) CreateActivity(ctx context.Context, a Activity) (*Activity, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	var out Activity
	var estimated sql.NullInt64
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO activities (id, content_id, title, activity_type, estimated_time, created_at, updated_at)
		VALUES ($1, NULLIF($2,''), $3, NULLIF($4,''), $5, now(), now())
		RETURNING id, COALESCE(content_id,''), title, COALESCE(activity_type,''), estimated_time
	`, a.ID, a.ContentID, a.Title, a.ActivityType, nullIntValue(a.EstimatedTime)).
		Scan(&out.ID, &out.ContentID, &out.Title, &out.ActivityType, &estimated)
	if err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}
	out.EstimatedTime = intPtrValue(estimated)
	return &out, nil
}

func (p *PostgresStore) GetActivity(ctx context.Context, id string) (*Activity, error) {
	var out Activity
	var estimated sql.NullInt64
	err := p.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(content_id,''), title, COALESCE(activity_type,''), estimated_time
		FROM activities
		WHERE id = $1
	`, id).Scan(&out.ID, &out.ContentID, &out.Title, &out.ActivityType, &estimated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	out.EstimatedTime = intPtrValue(estimated)
	return &out, nil
}

func (p *PostgresStore) UpdateActivity(ctx context.Context, a Activity) (*Activity, error) {
	var out Activity
	var estimated sql.NullInt64
	err := p.db.QueryRowContext(ctx, `
		UPDATE activities
		SET content_id = NULLIF($2,''),
			title = $3,
			activity_type = NULLIF($4,''),
			estimated_time = $5,
			updated_at = now()
		WHERE id = $1
		RETURNING id, COALESCE(content_id,''), title, COALESCE(activity_type,''), estimated_time
	`, a.ID, a.ContentID, a.Title, a.ActivityType, nullIntValue(a.EstimatedTime)).
		Scan(&out.ID, &out.ContentID, &out.Title, &out.ActivityType, &estimated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update activity: %w", err)
	}
	out.EstimatedTime = intPtrValue(estimated)
	return &out, nil
}

func (p *PostgresStore) DeleteActivity(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `
		DELETE FROM activities
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) ListActivitiesByContent(ctx context.Context, contentID string) ([]Activity, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, COALESCE(content_id,''), title, COALESCE(activity_type,''), estimated_time
		FROM activities
		WHERE content_id = $1
		ORDER BY title ASC, id ASC
	`, contentID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	out := make([]Activity, 0)
	for rows.Next() {
		var it Activity
		var estimated sql.NullInt64
		if err := rows.Scan(&it.ID, &it.ContentID, &it.Title, &it.ActivityType, &estimated); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		it.EstimatedTime = intPtrValue(estimated)
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return out, nil
}

func (p *PostgresStore) CountActivitiesByContent(ctx context.Context, contentID string) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM activities WHERE content_id = $1
	`, contentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}

func (p *PostgresStore) SumActivityTime(ctx context.Context, contentID string) (int, error) {
	return p.sumQuery(ctx, `
		SELECT COALESCE(SUM(estimated_time), 0) FROM activities WHERE content_id = $1
	`, contentID, "sum activity time")
}

func (p *PostgresStore) SumContentTime(ctx context.Context, skillID string) (int, error) {
	return p.sumQuery(ctx, `
		SELECT COALESCE(SUM(calculated_total_time), 0) FROM contents WHERE skill_id = $1
	`, skillID, "sum content time")
}

func (p *PostgresStore) SumSkillTime(ctx context.Context, levelID string) (int, error) {
	return p.sumQuery(ctx, `
		SELECT COALESCE(SUM(calculated_total_time), 0) FROM skills WHERE level_id = $1
	`, levelID, "sum skill time")
}

func (p *PostgresStore) SumLevelTime(ctx context.Context, languageID string) (int, error) {
	return p.sumQuery(ctx, `
		SELECT COALESCE(SUM(calculated_total_time), 0) FROM levels WHERE language_id = $1
	`, languageID, "sum level time")
}

func (p *PostgresStore) sumQuery(ctx context.Context, query, parentID, op string) (int, error) {
	var total int
	if err := p.db.QueryRowContext(ctx, query, parentID).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

func (p *PostgresStore) ListContentIDs(ctx context.Context) ([]string, error) {
	return p.listIDs(ctx, `SELECT id FROM contents ORDER BY id`, "list content ids")
}

func (p *PostgresStore) ListSkillIDs(ctx context.Context) ([]string, error) {
	return p.listIDs(ctx, `SELECT id FROM skills ORDER BY id`, "list skill ids")
}

func (p *PostgresStore) ListLevelIDs(ctx context.Context) ([]string, error) {
	return p.listIDs(ctx, `SELECT id FROM levels ORDER BY id`, "list level ids")
}

func (p *PostgresStore) ListLanguageIDs(ctx context.Context) ([]string, error) {
	return p.listIDs(ctx, `SELECT id FROM languages ORDER BY id`, "list language ids")
}

func (p *PostgresStore) listIDs(ctx context.Context, query, op string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}
	return out, nil
}

func (p *PostgresStore) SetContentTotalTime(ctx context.Context, id string, total int) error {
	return p.setTotal(ctx, `
		UPDATE contents SET calculated_total_time = $2, updated_at = now() WHERE id = $1
	`, id, total, "set content total")
}

func (p *PostgresStore) SetSkillTotalTime(ctx context.Context, id string, total int) error {
	return p.setTotal(ctx, `
		UPDATE skills SET calculated_total_time = $2, updated_at = now() WHERE id = $1
	`, id, total, "set skill total")
}

func (p *PostgresStore) SetLevelTotalTime(ctx context.Context, id string, total int) error {
	return p.setTotal(ctx, `
		UPDATE levels SET calculated_total_time = $2, updated_at = now() WHERE id = $1
	`, id, total, "set level total")
}

func (p *PostgresStore) SetLanguageTotalTime(ctx context.Context, id string, total int) error {
	return p.setTotal(ctx, `
		UPDATE languages SET calculated_total_time = $2, updated_at = now() WHERE id = $1
	`, id, total, "set language total")
}

func (p *PostgresStore) setTotal(ctx context.Context, query, id string, total int, op string) error {
	res, err := p.db.ExecContext(ctx, query, id, total)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIntValue(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtrValue(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
