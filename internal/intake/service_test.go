package intake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pathlight-io/pathlight/internal/apperrors"
)

func bachelorStudying() Payload {
	return Payload{
		Level:  LevelBachelor,
		Status: StatusStudying,
		Common: map[string]interface{}{"institution": "City University"},
		Specific: map[string]interface{}{
			"degree_name":         "BS Computer Science",
			"semesters_completed": 4,
			"current_cgpa":        3.4,
			"strongest_subject":   "Algorithms",
		},
	}
}

func TestPut_RoundTrips(t *testing.T) {
	svc := NewService(NewMemoryStore(), zap.NewNop())
	ctx := context.Background()

	saved, err := svc.Put(ctx, "alice", bachelorStudying())
	require.NoError(t, err)
	assert.Equal(t, LevelBachelor, saved.Level)

	got, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestPut_InvalidPayloadReturnsAllErrors(t *testing.T) {
	svc := NewService(NewMemoryStore(), zap.NewNop())

	p := bachelorStudying()
	delete(p.Specific, "current_cgpa")
	p.Common = map[string]interface{}{}

	_, err := svc.Put(context.Background(), "alice", p)
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "common.institution")
	assert.Contains(t, ve.Fields, "specific.current_cgpa")
}

func TestPut_StatusChangeDiscardsStaleSpecificValues(t *testing.T) {
	svc := NewService(NewMemoryStore(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Put(ctx, "alice", bachelorStudying())
	require.NoError(t, err)

	// switch to completed but carry the stale studying-branch values:
	// they are discarded, so validation must demand the new branch's fields
	p := bachelorStudying()
	p.Status = StatusCompleted
	_, err = svc.Put(ctx, "alice", p)
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "specific.final_cgpa")
	assert.Contains(t, ve.Fields, "specific.graduation_year")
	assert.NotContains(t, ve.Fields, "specific.degree_name") // shared field survives

	// stored intake is unchanged
	got, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, StatusStudying, got.Status)
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(NewMemoryStore(), zap.NewNop())
	_, err := svc.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
