package assessment

import (
	"context"

	"github.com/pathlight-io/pathlight/internal/catalog"
)

// Store persists assessment sessions. Implementations must enforce at most
// one in-progress session per user (CreateSession returns
// apperrors.ErrConflict when a second one would be created) and must only
// complete sessions that are still in progress.
type Store interface {
	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	// GetInProgress returns the user's in-progress session, or
	// apperrors.ErrNotFound if none exists.
	GetInProgress(ctx context.Context, userID string) (Session, error)
	// SaveSession merges the given responses into the stored set (upsert per
	// question, never dropping stored answers), advances the step pointer,
	// adds timeSpentDelta to the accumulator and stamps lastSavedAt. Safe to
	// call redundantly.
	SaveSession(ctx context.Context, id string, responses []Response, step int, timeSpentDelta int64, savedAt int64) (Session, error)
	// CompleteSession freezes scores and stamps submittedAt. It only
	// transitions sessions that are still in progress.
	CompleteSession(ctx context.Context, id string, scores map[catalog.Category]int, submittedAt int64) (Session, error)
}
