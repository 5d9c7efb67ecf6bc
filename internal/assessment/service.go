package assessment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pathlight-io/pathlight/internal/apperrors"
	"github.com/pathlight-io/pathlight/internal/catalog"
	"github.com/pathlight-io/pathlight/internal/scoring"
)

// Service owns the assessment session lifecycle:
// not started -> in progress -> completed (terminal).
type Service struct {
	store    Store
	provider catalog.Provider
	saver    *Autosaver
	log      *zap.Logger
	submits  singleflight.Group
	now      func() time.Time
}

// SubmitResult reports the completed session. AlreadyCompleted is set when
// a duplicate submit returned the stored result instead of recomputing.
type SubmitResult struct {
	Session          Session `json:"session"`
	AlreadyCompleted bool    `json:"already_completed"`
}

func NewService(store Store, provider catalog.Provider, debounce time.Duration, log *zap.Logger) *Service {
	s := &Service{
		store:    store,
		provider: provider,
		log:      log,
		now:      time.Now,
	}
	s.saver = NewAutosaver(debounce, s.persistPending, log)
	return s
}

// Autosaver exposes the deferred-save contract so callers can Flush on
// navigation or Cancel on teardown.
func (s *Service) Autosaver() *Autosaver { return s.saver }

// Close cancels all pending deferred saves.
func (s *Service) Close() { s.saver.Close() }

// Start returns the user's in-progress session if one exists (idempotent),
// otherwise snapshots the catalog and creates a new one.
func (s *Service) Start(ctx context.Context, userID string) (Session, error) {
	if existing, err := s.store.GetInProgress(ctx, userID); err == nil {
		return existing, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return Session{}, err
	}

	questions, err := s.provider.ListQuestions(ctx)
	if err != nil {
		return Session{}, err
	}
	snap := catalog.NewSnapshot(questions)
	now := s.now().Unix()
	sess := Session{
		ID:            uuid.NewString(),
		UserID:        userID,
		Status:        StatusInProgress,
		Step:          0,
		QuestionCount: len(snap.Questions),
		Catalog:       snap,
		Responses:     []Response{},
		CreatedAt:     now,
		LastSavedAt:   now,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// a concurrent start won the unique index; use its session
			if existing, gerr := s.store.GetInProgress(ctx, userID); gerr == nil {
				return existing, nil
			}
			return Session{}, apperrors.ErrConflict
		}
		return Session{}, err
	}
	s.log.Info("assessment session started",
		zap.String("session_id", sess.ID),
		zap.String("user_id", userID),
		zap.Int("questions", sess.QuestionCount))
	return sess, nil
}

// Resume returns the user's in-progress session, reflecting only state that
// has actually been persisted; pending debounced answers are not visible.
func (s *Service) Resume(ctx context.Context, userID string) (Session, error) {
	return s.store.GetInProgress(ctx, userID)
}

// Get returns a session, scoped to its owner: foreign sessions read as
// ErrNotFound rather than leaking their existence.
func (s *Service) Get(ctx context.Context, userID, sessionID string) (Session, error) {
	return s.ownedSession(ctx, userID, sessionID)
}

func (s *Service) ownedSession(ctx context.Context, userID, sessionID string) (Session, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if sess.UserID != userID {
		return Session{}, apperrors.ErrNotFound
	}
	return sess, nil
}

// Answer captures a response against the session's catalog snapshot and
// arms the debounced save. Nothing is persisted here.
func (s *Service) Answer(ctx context.Context, userID, sessionID, questionID, value string, step int) (Response, error) {
	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return Response{}, err
	}
	if sess.Status != StatusInProgress {
		return Response{}, apperrors.ErrSessionClosed
	}
	q, ok := sess.Catalog.Lookup(questionID)
	if !ok {
		return Response{}, apperrors.ErrInvalidQuestion
	}
	weight, ok := q.OptionWeight(value)
	if !ok {
		return Response{}, &apperrors.ValidationError{
			Fields: map[string]string{questionID: "value is not an option of this question"},
		}
	}
	r := Response{
		QuestionID: questionID,
		Value:      value,
		Weight:     weight,
		AnsweredAt: s.now().Unix(),
	}
	s.saver.Arm(sessionID, r, step)
	return r, nil
}

// Save persists the given responses and step pointer immediately and
// disarms any pending debounced batch (explicit save supersedes it).
func (s *Service) Save(ctx context.Context, userID, sessionID string, answers []AnswerInput, step int, timeSpentDelta int64) (Session, error) {
	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return Session{}, err
	}
	responses, err := s.captureAll(sess, answers)
	if err != nil {
		return Session{}, err
	}
	s.saver.Cancel(sessionID)
	return s.store.SaveSession(ctx, sessionID, responses, step, timeSpentDelta, s.now().Unix())
}

// AnswerInput is a raw answer from the caller; the weight is always derived
// server-side from the session's catalog snapshot.
type AnswerInput struct {
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`
}

func (s *Service) captureAll(sess Session, answers []AnswerInput) ([]Response, error) {
	now := s.now().Unix()
	errs := map[string]string{}
	responses := make([]Response, 0, len(answers))
	for _, a := range answers {
		q, ok := sess.Catalog.Lookup(a.QuestionID)
		if !ok {
			return nil, apperrors.ErrInvalidQuestion
		}
		weight, ok := q.OptionWeight(a.Value)
		if !ok {
			errs[a.QuestionID] = "value is not an option of this question"
			continue
		}
		responses = append(responses, Response{
			QuestionID: a.QuestionID,
			Value:      a.Value,
			Weight:     weight,
			AnsweredAt: now,
		})
	}
	if len(errs) > 0 {
		return nil, &apperrors.ValidationError{Fields: errs}
	}
	return responses, nil
}

// Submit completes the session: scores are computed once from the catalog
// snapshot and frozen. Duplicate submits return the stored result. Missing
// required answers fail with IncompleteAssessmentError and change nothing.
// Concurrent submits for the same session collapse to a single execution.
func (s *Service) Submit(ctx context.Context, userID, sessionID string) (SubmitResult, error) {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return SubmitResult{}, err
	}
	v, err, _ := s.submits.Do(sessionID, func() (interface{}, error) {
		return s.submit(ctx, sessionID)
	})
	if err != nil {
		return SubmitResult{}, err
	}
	return v.(SubmitResult), nil
}

func (s *Service) submit(ctx context.Context, sessionID string) (SubmitResult, error) {
	// pending answers must be durable before the required-question check
	s.saver.Flush(ctx, sessionID)

	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return SubmitResult{}, err
	}
	if sess.Status == StatusCompleted {
		return SubmitResult{Session: sess, AlreadyCompleted: true}, nil
	}
	if missing := sess.MissingRequired(); missing > 0 {
		return SubmitResult{}, &apperrors.IncompleteAssessmentError{Missing: missing}
	}

	scores := scoring.Score(sess.Catalog, sess.CapturedWeights())
	completed, err := s.store.CompleteSession(ctx, sessionID, scores, s.now().Unix())
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionClosed) {
			// another submit finished first; its stored scores are authoritative
			if done, gerr := s.store.GetSession(ctx, sessionID); gerr == nil && done.Status == StatusCompleted {
				return SubmitResult{Session: done, AlreadyCompleted: true}, nil
			}
		}
		return SubmitResult{}, err
	}
	s.saver.Cancel(sessionID)
	s.log.Info("assessment submitted",
		zap.String("session_id", sessionID),
		zap.Int("responses", len(completed.Responses)))
	return SubmitResult{Session: completed}, nil
}

// persistPending is the Autosaver's save hook.
func (s *Service) persistPending(ctx context.Context, sessionID string, responses []Response, step int) {
	if _, err := s.store.SaveSession(ctx, sessionID, responses, step, 0, s.now().Unix()); err != nil {
		// best effort: the next explicit save or submit flush retries
		s.log.Warn("debounced save failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}
