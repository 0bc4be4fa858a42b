package progress

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrProgressNotFound = errors.New("progress not found")

// Store persists progress rows and attempt history. AppendAttempt assigns the
// next attempt number for the (user, activity) pair; callers never pick one.
type Store interface {
	GetProgress(ctx context.Context, userID, contentID string) (*UserProgress, error)
	SaveProgress(ctx context.Context, p UserProgress) (*UserProgress, error)
	ListProgressByUser(ctx context.Context, userID string) ([]UserProgress, error)

	AppendAttempt(ctx context.Context, a AttemptRecord) (*AttemptRecord, error)
	ListAttempts(ctx context.Context, userID, activityID string) ([]AttemptRecord, error)
}

type MemoryStore struct {
	mu       sync.RWMutex
	rows     map[string]map[string]UserProgress // userID -> contentID -> row
	attempts map[string][]AttemptRecord         // userID+"\x00"+activityID -> history
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:     make(map[string]map[string]UserProgress),
		attempts: make(map[string][]AttemptRecord),
	}
}

func (m *MemoryStore) GetProgress(ctx context.Context, userID, contentID string) (*UserProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[userID][contentID]
	if !ok {
		return nil, ErrProgressNotFound
	}
	out := cloneProgress(row)
	return &out, nil
}

func (m *MemoryStore) SaveProgress(ctx context.Context, p UserProgress) (*UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows[p.UserID] == nil {
		m.rows[p.UserID] = make(map[string]UserProgress)
	}
	m.rows[p.UserID][p.ContentID] = cloneProgress(p)
	out := cloneProgress(p)
	return &out, nil
}

func (m *MemoryStore) ListProgressByUser(ctx context.Context, userID string) ([]UserProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]UserProgress, 0, len(m.rows[userID]))
	for _, row := range m.rows[userID] {
		out = append(out, cloneProgress(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContentID < out[j].ContentID })
	return out, nil
}

func (m *MemoryStore) AppendAttempt(ctx context.Context, a AttemptRecord) (*AttemptRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := a.UserID + "\x00" + a.ActivityID
	a.ID = uuid.NewString()
	a.AttemptNumber = len(m.attempts[key]) + 1
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	m.attempts[key] = append(m.attempts[key], a)
	out := a
	return &out, nil
}

func (m *MemoryStore) ListAttempts(ctx context.Context, userID, activityID string) ([]AttemptRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history := m.attempts[userID+"\x00"+activityID]
	out := make([]AttemptRecord, len(history))
	copy(out, history)
	return out, nil
}

func cloneProgress(p UserProgress) UserProgress {
	out := p
	out.CompletedActivityIDs = append([]string(nil), p.CompletedActivityIDs...)
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
