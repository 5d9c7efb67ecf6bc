package analysis

import (
	"context"
	"fmt"

	"github.com/pathlight-io/pathlight/internal/apperrors"
	"github.com/pathlight-io/pathlight/internal/assessment"
	"github.com/pathlight-io/pathlight/internal/intake"
)

// ServiceLoader resolves sources from the live assessment and intake
// services. The intake source id is the owner id, since each user has
// exactly one intake.
type ServiceLoader struct {
	Sessions *assessment.Service
	Intakes  *intake.Service
}

func (l *ServiceLoader) LoadSource(ctx context.Context, userID, sourceID string, kind SourceKind) (Source, error) {
	switch kind {
	case SourceAssessment:
		sess, err := l.Sessions.Get(ctx, userID, sourceID)
		if err != nil {
			return Source{}, err
		}
		if sess.Status != assessment.StatusCompleted {
			return Source{}, fmt.Errorf("%w: assessment not yet submitted", apperrors.ErrConflict)
		}
		return Source{ID: sess.ID, Kind: SourceAssessment, UserID: userID, Scores: sess.Scores}, nil
	case SourceIntake:
		in, err := l.Intakes.Get(ctx, userID)
		if err != nil {
			return Source{}, err
		}
		return Source{ID: in.UserID, Kind: SourceIntake, UserID: userID, Intake: &in}, nil
	default:
		return Source{}, fmt.Errorf("%w: unknown source kind %q", apperrors.ErrNotFound, kind)
	}
}
