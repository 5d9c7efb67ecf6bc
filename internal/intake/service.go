package intake

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pathlight-io/pathlight/internal/apperrors"
)

type Service struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// Put validates and stores the user's intake. When level or status differs
// from the stored intake, specific values outside the new schema are
// discarded before validation so stale cross-schema leftovers can neither
// persist nor satisfy the new schema spuriously.
func (s *Service) Put(ctx context.Context, userID string, p Payload) (Intake, error) {
	prev, err := s.store.GetIntake(ctx, userID)
	switch {
	case err == nil:
		if prev.Level != p.Level || prev.Status != p.Status {
			p.Specific = PruneSpecific(p.Level, p.Status, p.Specific)
		}
	case errors.Is(err, apperrors.ErrNotFound):
		// first submission; nothing stale to discard
	default:
		return Intake{}, err
	}

	if p.Common == nil {
		p.Common = map[string]interface{}{}
	}
	if p.Specific == nil {
		p.Specific = map[string]interface{}{}
	}
	if errs := Validate(p); len(errs) > 0 {
		return Intake{}, &apperrors.ValidationError{Fields: errs}
	}

	in := Intake{
		UserID:    userID,
		Level:     p.Level,
		Status:    p.Status,
		Common:    p.Common,
		Specific:  p.Specific,
		UpdatedAt: s.now().Unix(),
	}
	if err := s.store.UpsertIntake(ctx, in); err != nil {
		return Intake{}, err
	}
	s.log.Info("intake saved",
		zap.String("user_id", userID),
		zap.String("level", string(p.Level)),
		zap.String("status", string(p.Status)))
	return in, nil
}

func (s *Service) Get(ctx context.Context, userID string) (Intake, error) {
	return s.store.GetIntake(ctx, userID)
}
