package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/pathlight-io/pathlight/internal/apperrors"
)

type Store interface {
	PutArtifact(ctx context.Context, a Artifact) error
	// UpdateArtifact replaces payload, confidence, regeneration count and
	// updatedAt for an existing artifact id.
	UpdateArtifact(ctx context.Context, a Artifact) error
	GetArtifact(ctx context.Context, id string) (Artifact, error)
	// ListByUser returns the user's artifacts most-recent-first, at most
	// limit entries. Older artifacts stay retrievable by id.
	ListByUser(ctx context.Context, userID string, limit int) ([]Artifact, error)
	DeleteArtifact(ctx context.Context, id string) error
}

type memoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]Artifact
}

func NewMemoryStore() Store {
	return &memoryStore{artifacts: map[string]Artifact{}}
}

func (m *memoryStore) PutArtifact(_ context.Context, a Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts[a.ID] = a
	return nil
}

func (m *memoryStore) UpdateArtifact(_ context.Context, a Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.artifacts[a.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.artifacts[a.ID] = a
	return nil
}

func (m *memoryStore) GetArtifact(_ context.Context, id string) (Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.artifacts[id]
	if !ok {
		return Artifact{}, apperrors.ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) ListByUser(_ context.Context, userID string, limit int) ([]Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Artifact
	for _, a := range m.artifacts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) DeleteArtifact(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.artifacts[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.artifacts, id)
	return nil
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutArtifact(ctx context.Context, a Artifact) error {
	pj, err := json.Marshal(a.Payload)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO analysis_artifacts
		(id,user_id,source_id,source_kind,payload_json,confidence,regeneration_count,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.UserID, a.SourceID, string(a.SourceKind), string(pj),
		a.Confidence, a.RegenerationCount, a.CreatedAt, a.UpdatedAt)
	return err
}

func (s *SQLStore) UpdateArtifact(ctx context.Context, a Artifact) error {
	pj, err := json.Marshal(a.Payload)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE analysis_artifacts
		SET payload_json=$1, confidence=$2, regeneration_count=$3, updated_at=$4
		WHERE id=$5`,
		string(pj), a.Confidence, a.RegenerationCount, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

const artifactColumns = `SELECT id,user_id,source_id,source_kind,payload_json,confidence,regeneration_count,created_at,updated_at`

func (s *SQLStore) GetArtifact(ctx context.Context, id string) (Artifact, error) {
	row := s.db.QueryRowContext(ctx, artifactColumns+` FROM analysis_artifacts WHERE id=$1`, id)
	return scanArtifact(row.Scan)
}

func (s *SQLStore) ListByUser(ctx context.Context, userID string, limit int) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx, artifactColumns+` FROM analysis_artifacts
		WHERE user_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Artifact
	for rows.Next() {
		a, err := scanArtifact(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteArtifact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analysis_artifacts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanArtifact(scan func(dest ...interface{}) error) (Artifact, error) {
	var a Artifact
	var kind, pj string
	err := scan(&a.ID, &a.UserID, &a.SourceID, &kind, &pj,
		&a.Confidence, &a.RegenerationCount, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Artifact{}, apperrors.ErrNotFound
		}
		return Artifact{}, err
	}
	a.SourceKind = SourceKind(kind)
	if err := json.Unmarshal([]byte(pj), &a.Payload); err != nil {
		return Artifact{}, err
	}
	return a, nil
}
