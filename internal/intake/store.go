package intake

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"

	"github.com/pathlight-io/pathlight/internal/apperrors"
)

// Intake is the stored education profile, one per user.
type Intake struct {
	UserID    string                 `json:"user_id"`
	Level     Level                  `json:"level"`
	Status    Status                 `json:"status,omitempty"`
	Common    map[string]interface{} `json:"common"`
	Specific  map[string]interface{} `json:"specific"`
	UpdatedAt int64                  `json:"updated_at"`
}

type Store interface {
	UpsertIntake(ctx context.Context, in Intake) error
	GetIntake(ctx context.Context, userID string) (Intake, error)
}

type memoryStore struct {
	mu      sync.RWMutex
	intakes map[string]Intake
}

func NewMemoryStore() Store {
	return &memoryStore{intakes: map[string]Intake{}}
}

func (m *memoryStore) UpsertIntake(_ context.Context, in Intake) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intakes[in.UserID] = in
	return nil
}

func (m *memoryStore) GetIntake(_ context.Context, userID string) (Intake, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	in, ok := m.intakes[userID]
	if !ok {
		return Intake{}, apperrors.ErrNotFound
	}
	return in, nil
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) UpsertIntake(ctx context.Context, in Intake) error {
	cj, err := json.Marshal(in.Common)
	if err != nil {
		return err
	}
	sj, err := json.Marshal(in.Specific)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO education_intakes
		(user_id,level,status,common_json,specific_json,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id) DO UPDATE SET level=EXCLUDED.level, status=EXCLUDED.status,
			common_json=EXCLUDED.common_json, specific_json=EXCLUDED.specific_json,
			updated_at=EXCLUDED.updated_at`,
		in.UserID, string(in.Level), string(in.Status), string(cj), string(sj), in.UpdatedAt)
	return err
}

func (s *SQLStore) GetIntake(ctx context.Context, userID string) (Intake, error) {
	row := s.db.QueryRowContext(ctx, `SELECT user_id,level,status,common_json,specific_json,updated_at
		FROM education_intakes WHERE user_id=$1`, userID)
	var in Intake
	var level, status, cj, sj string
	if err := row.Scan(&in.UserID, &level, &status, &cj, &sj, &in.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Intake{}, apperrors.ErrNotFound
		}
		return Intake{}, err
	}
	in.Level = Level(level)
	in.Status = Status(status)
	if err := json.Unmarshal([]byte(cj), &in.Common); err != nil {
		return Intake{}, err
	}
	if err := json.Unmarshal([]byte(sj), &in.Specific); err != nil {
		return Intake{}, err
	}
	return in, nil
}
