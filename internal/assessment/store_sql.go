package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pathlight-io/pathlight/internal/apperrors"
	"github.com/pathlight-io/pathlight/internal/catalog"
)

// SQLStore persists sessions as rows with JSON-blob columns for the catalog
// snapshot and the response set. Works against sqlite and postgres.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreateSession(ctx context.Context, sess Session) error {
	cj, err := json.Marshal(sess.Catalog)
	if err != nil {
		return err
	}
	rj, err := json.Marshal(sess.Responses)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO assessment_sessions
		(id,user_id,status,step,question_count,catalog_json,responses_json,time_spent_sec,created_at,last_saved_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		sess.ID, sess.UserID, string(sess.Status), sess.Step, sess.QuestionCount,
		string(cj), string(rj), sess.TimeSpentSec, sess.CreatedAt, sess.LastSavedAt)
	if isUniqueViolation(err) {
		return apperrors.ErrConflict
	}
	return err
}

func (s *SQLStore) GetSession(ctx context.Context, id string) (Session, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		sessionColumns+` FROM assessment_sessions WHERE id=$1`, id))
}

func (s *SQLStore) GetInProgress(ctx context.Context, userID string) (Session, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		sessionColumns+` FROM assessment_sessions WHERE user_id=$1 AND status=$2`,
		userID, string(StatusInProgress)))
}

func (s *SQLStore) SaveSession(ctx context.Context, id string, responses []Response, step int, timeSpentDelta int64, savedAt int64) (Session, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess.Status == StatusCompleted {
		return Session{}, apperrors.ErrSessionClosed
	}
	for _, r := range responses {
		sess.Responses = UpsertResponse(sess.Responses, r)
	}
	if step > sess.Step {
		sess.Step = step
	}
	rj, err := json.Marshal(sess.Responses)
	if err != nil {
		return Session{}, err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE assessment_sessions
		SET responses_json=$1, step=$2, time_spent_sec=time_spent_sec+$3, last_saved_at=$4
		WHERE id=$5 AND status=$6`,
		string(rj), sess.Step, timeSpentDelta, savedAt, id, string(StatusInProgress))
	if err != nil {
		return Session{}, err
	}
	return s.GetSession(ctx, id)
}

func (s *SQLStore) CompleteSession(ctx context.Context, id string, scores map[catalog.Category]int, submittedAt int64) (Session, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess.Status != StatusInProgress {
		return Session{}, apperrors.ErrSessionClosed
	}
	sj, err := json.Marshal(scores)
	if err != nil {
		return Session{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE assessment_sessions
		SET status=$1, scores_json=$2, submitted_at=$3, last_saved_at=$3
		WHERE id=$4 AND status=$5`,
		string(StatusCompleted), string(sj), submittedAt, id, string(StatusInProgress))
	if err != nil {
		return Session{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// lost the race to another completer
		return Session{}, apperrors.ErrSessionClosed
	}
	return s.GetSession(ctx, id)
}

const sessionColumns = `SELECT id,user_id,status,step,question_count,catalog_json,responses_json,scores_json,time_spent_sec,created_at,last_saved_at,submitted_at`

func (s *SQLStore) scanOne(row *sql.Row) (Session, error) {
	var sess Session
	var status, cj, rj string
	var sj sql.NullString
	var submittedAt sql.NullInt64
	err := row.Scan(&sess.ID, &sess.UserID, &status, &sess.Step, &sess.QuestionCount,
		&cj, &rj, &sj, &sess.TimeSpentSec, &sess.CreatedAt, &sess.LastSavedAt, &submittedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, apperrors.ErrNotFound
		}
		return Session{}, err
	}
	sess.Status = Status(status)
	if err := json.Unmarshal([]byte(cj), &sess.Catalog); err != nil {
		return Session{}, fmt.Errorf("decode catalog snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(rj), &sess.Responses); err != nil {
		return Session{}, fmt.Errorf("decode responses: %w", err)
	}
	if sj.Valid && sj.String != "" {
		if err := json.Unmarshal([]byte(sj.String), &sess.Scores); err != nil {
			return Session{}, fmt.Errorf("decode scores: %w", err)
		}
	}
	if submittedAt.Valid {
		t := submittedAt.Int64
		sess.SubmittedAt = &t
	}
	return sess, nil
}

// isUniqueViolation matches unique-constraint errors from both drivers
// (pgx reports SQLSTATE 23505, modernc sqlite a UNIQUE constraint message).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "unique constraint")
}
