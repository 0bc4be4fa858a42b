package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("catalog node not found")

// Store is the persistence surface the catalog needs: keyed lookups, sibling
// sums, and total writes. The sum methods always read current rows so that a
// recalculation sees the latest children.
type Store interface {
	CreateLanguage(ctx context.Context, l Language) (*Language, error)
	GetLanguage(ctx context.Context, id string) (*Language, error)
	ListLanguages(ctx context.Context) ([]Language, error)

	CreateLevel(ctx context.Context, l Level) (*Level, error)
	GetLevel(ctx context.Context, id string) (*Level, error)
	ListLevelsByLanguage(ctx context.Context, languageID string) ([]Level, error)

	CreateSkill(ctx context.Context, s Skill) (*Skill, error)
	GetSkill(ctx context.Context, id string) (*Skill, error)
	ListSkillsByLevel(ctx context.Context, levelID string) ([]Skill, error)

	CreateContent(ctx context.Context, c Content) (*Content, error)
	GetContent(ctx context.Context, id string) (*Content, error)
	ListContentsBySkill(ctx context.Context, skillID string) ([]Content, error)

	CreateActivity(ctx context.Context, a Activity) (*Activity, error)
	GetActivity(ctx context.Context, id string) (*Activity, error)
	UpdateActivity(ctx context.Context, a Activity) (*Activity, error)
	DeleteActivity(ctx context.Context, id string) error
	ListActivitiesByContent(ctx context.Context, contentID string) ([]Activity, error)
	CountActivitiesByContent(ctx context.Context, contentID string) (int, error)

	SumActivityTime(ctx context.Context, contentID string) (int, error)
	SumContentTime(ctx context.Context, skillID string) (int, error)
	SumSkillTime(ctx context.Context, levelID string) (int, error)
	SumLevelTime(ctx context.Context, languageID string) (int, error)

	ListContentIDs(ctx context.Context) ([]string, error)
	ListSkillIDs(ctx context.Context) ([]string, error)
	ListLevelIDs(ctx context.Context) ([]string, error)
	ListLanguageIDs(ctx context.Context) ([]string, error)

	SetContentTotalTime(ctx context.Context, id string, total int) error
	SetSkillTotalTime(ctx context.Context, id string, total int) error
	SetLevelTotalTime(ctx context.Context, id string, total int) error
	SetLanguageTotalTime(ctx context.Context, id string, total int) error
}

// MemoryStore keeps the catalog in process memory. Used by tests and by
// deployments running with the memory backend.
type MemoryStore struct {
	mu         sync.RWMutex
	languages  map[string]Language
	levels     map[string]Level
	skills     map[string]Skill
	contents   map[string]Content
	activities map[string]Activity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		languages:  make(map[string]Language),
		levels:     make(map[string]Level),
		skills:     make(map[string]Skill),
		contents:   make(map[string]Content),
		activities: make(map[string]Activity),
	}
}

func (m *MemoryStore) CreateLanguage(ctx context.Context, l Language) (*Language, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	m.languages[l.ID] = l
	out := l
	return &out, nil
}

func (m *MemoryStore) GetLanguage(ctx context.Context, id string) (*Language, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.languages[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := l
	return &out, nil
}

func (m *MemoryStore) ListLanguages(ctx context.Context) ([]Language, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Language, 0, len(m.languages))
	for _, l := range m.languages {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) CreateLevel(ctx context.Context, l Level) (*Level, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	m.levels[l.ID] = l
	out := l
	return &out, nil
}

func (m *MemoryStore) GetLevel(ctx context.Context, id string) (*Level, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.levels[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := l
	return &out, nil
}

func (m *MemoryStore) ListLevelsByLanguage(ctx context.Context, languageID string) ([]Level, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Level, 0)
	for _, l := range m.levels {
		if l.LanguageID == languageID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m *MemoryStore) CreateSkill(ctx context.Context, s Skill) (*Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.skills[s.ID] = s
	out := s
	return &out, nil
}

func (m *MemoryStore) GetSkill(ctx context.Context, id string) (*Skill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.skills[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := s
	return &out, nil
}

func (m *MemoryStore) ListSkillsByLevel(ctx context.Context, levelID string) ([]Skill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Skill, 0)
	for _, s := range m.skills {
		if s.LevelID == levelID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) CreateContent(ctx context.Context, c Content) (*Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	m.contents[c.ID] = c
	out := c
	return &out, nil
}

func (m *MemoryStore) GetContent(ctx context.Context, id string) (*Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contents[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := c
	return &out, nil
}

func (m *MemoryStore) ListContentsBySkill(ctx context.Context, skillID string) ([]Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Content, 0)
	for _, c := range m.contents {
		if c.SkillID == skillID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *MemoryStore) CreateActivity(ctx context.Context, a Activity) (*Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	m.activities[a.ID] = a
	out := a
	return &out, nil
}

func (m *MemoryStore) GetActivity(ctx context.Context, id string) (*Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.activities[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := a
	return &out, nil
}

func (m *MemoryStore) UpdateActivity(ctx context.Context, a Activity) (*Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.activities[a.ID]; !ok {
		return nil, ErrNotFound
	}
	m.activities[a.ID] = a
	out := a
	return &out, nil
}

func (m *MemoryStore) DeleteActivity(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.activities[id]; !ok {
		return ErrNotFound
	}
	delete(m.activities, id)
	return nil
}

func (m *MemoryStore) ListActivitiesByContent(ctx context.Context, contentID string) ([]Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Activity, 0)
	for _, a := range m.activities {
		if a.ContentID == contentID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *MemoryStore) CountActivitiesByContent(ctx context.Context, contentID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.activities {
		if a.ContentID == contentID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) SumActivityTime(ctx context.Context, contentID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, a := range m.activities {
		if a.ContentID == contentID {
			total += estimatedOrZero(a)
		}
	}
	return total, nil
}

func (m *MemoryStore) SumContentTime(ctx context.Context, skillID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, c := range m.contents {
		if c.SkillID == skillID {
			total += c.CalculatedTotalTime
		}
	}
	return total, nil
}

func (m *MemoryStore) SumSkillTime(ctx context.Context, levelID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, s := range m.skills {
		if s.LevelID == levelID {
			total += s.CalculatedTotalTime
		}
	}
	return total, nil
}

func (m *MemoryStore) SumLevelTime(ctx context.Context, languageID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, l := range m.levels {
		if l.LanguageID == languageID {
			total += l.CalculatedTotalTime
		}
	}
	return total, nil
}

func (m *MemoryStore) ListContentIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.contents), nil
}

func (m *MemoryStore) ListSkillIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.skills), nil
}

func (m *MemoryStore) ListLevelIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.levels), nil
}

func (m *MemoryStore) ListLanguageIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.languages), nil
}

func (m *MemoryStore) SetContentTotalTime(ctx context.Context, id string, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contents[id]
	if !ok {
		return ErrNotFound
	}
	c.CalculatedTotalTime = total
	m.contents[id] = c
	return nil
}

func (m *MemoryStore) SetSkillTotalTime(ctx context.Context, id string, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.skills[id]
	if !ok {
		return ErrNotFound
	}
	s.CalculatedTotalTime = total
	m.skills[id] = s
	return nil
}

func (m *MemoryStore) SetLevelTotalTime(ctx context.Context, id string, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.levels[id]
	if !ok {
		return ErrNotFound
	}
	l.CalculatedTotalTime = total
	m.levels[id] = l
	return nil
}

func (m *MemoryStore) SetLanguageTotalTime(ctx context.Context, id string, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.languages[id]
	if !ok {
		return ErrNotFound
	}
	l.CalculatedTotalTime = total
	m.languages[id] = l
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
