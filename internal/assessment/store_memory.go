package assessment

import (
	"context"
	"sync"

	"github.com/pathlight-io/pathlight/internal/apperrors"
	"github.com/pathlight-io/pathlight/internal/catalog"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore returns an in-memory Store, used in tests and single-node
// dev setups.
func NewMemoryStore() Store {
	return &memoryStore{sessions: map[string]Session{}}
}

func (m *memoryStore) CreateSession(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sessions {
		if existing.UserID == s.UserID && existing.Status == StatusInProgress {
			return apperrors.ErrConflict
		}
	}
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

func (m *memoryStore) GetSession(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, apperrors.ErrNotFound
	}
	return cloneSession(s), nil
}

func (m *memoryStore) GetInProgress(_ context.Context, userID string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.UserID == userID && s.Status == StatusInProgress {
			return cloneSession(s), nil
		}
	}
	return Session{}, apperrors.ErrNotFound
}

func (m *memoryStore) SaveSession(_ context.Context, id string, responses []Response, step int, timeSpentDelta int64, savedAt int64) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, apperrors.ErrNotFound
	}
	if s.Status == StatusCompleted {
		return Session{}, apperrors.ErrSessionClosed
	}
	for _, r := range responses {
		s.Responses = UpsertResponse(s.Responses, r)
	}
	if step > s.Step {
		s.Step = step
	}
	s.TimeSpentSec += timeSpentDelta
	s.LastSavedAt = savedAt
	m.sessions[id] = s
	return cloneSession(s), nil
}

func (m *memoryStore) CompleteSession(_ context.Context, id string, scores map[catalog.Category]int, submittedAt int64) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, apperrors.ErrNotFound
	}
	if s.Status != StatusInProgress {
		return Session{}, apperrors.ErrSessionClosed
	}
	s.Status = StatusCompleted
	s.Scores = scores
	s.SubmittedAt = &submittedAt
	s.LastSavedAt = submittedAt
	m.sessions[id] = s
	return cloneSession(s), nil
}

func cloneSession(s Session) Session {
	cp := s
	cp.Responses = append([]Response(nil), s.Responses...)
	if s.Scores != nil {
		cp.Scores = make(map[catalog.Category]int, len(s.Scores))
		for k, v := range s.Scores {
			cp.Scores[k] = v
		}
	}
	if s.SubmittedAt != nil {
		t := *s.SubmittedAt
		cp.SubmittedAt = &t
	}
	return cp
}
