package assessment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pathlight-io/pathlight/internal/apperrors"
	"github.com/pathlight-io/pathlight/internal/catalog"
)

func testQuestions() []catalog.Question {
	opts := []catalog.Option{
		{Value: "low", Weight: 0},
		{Value: "mid", Weight: 6},
		{Value: "high", Weight: 10},
	}
	return []catalog.Question{
		{ID: "q1", Category: catalog.CategoryInvestigative, Kind: catalog.KindScale, Options: opts, Required: true, Order: 1},
		{ID: "q2", Category: catalog.CategoryInvestigative, Kind: catalog.KindScale, Options: opts, Required: true, Order: 2},
		{ID: "q3", Category: catalog.CategorySocial, Kind: catalog.KindScale, Options: opts, Required: true, Order: 3},
		{ID: "q4", Category: catalog.CategorySocial, Kind: catalog.KindScale, Options: opts, Required: false, Order: 4},
	}
}

// longDebounce keeps the timer from ever firing within a test.
const longDebounce = time.Hour

func newTestService(debounce time.Duration) *Service {
	return NewService(NewMemoryStore(), catalog.NewStaticProvider(testQuestions()), debounce, zap.NewNop())
}

func TestStart_Idempotent(t *testing.T) {
	svc := newTestService(longDebounce)
	ctx := context.Background()

	first, err := svc.Start(ctx, "alice")
	require.NoError(t, err)
	second, err := svc.Start(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, StatusInProgress, second.Status)
	assert.Equal(t, 4, second.QuestionCount)
}

func TestStart_SeparateUsersGetSeparateSessions(t *testing.T) {
	svc := newTestService(longDebounce)
	ctx := context.Background()

	a, err := svc.Start(ctx, "alice")
	require.NoError(t, err)
	b, err := svc.Start(ctx, "bob")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestResume_NotFoundBeforeStart(t *testing.T) {
	svc := newTestService(longDebounce)

	_, err := svc.Resume(context.Background(), "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAnswer_PendingUntilSaved(t *testing.T) {
	svc := newTestService(longDebounce)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "alice")
	require.NoError(t, err)

	r, err := svc.Answer(ctx, "alice", sess.ID, "q1", "high", 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, r.Weight)

	// no save happened yet: resume reflects only persisted state
	resumed, err := svc.Resume(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, resumed.Responses)

	// flushing the pending batch makes it durable
	require.True(t, svc.Autosaver().Flush(ctx, sess.ID))
	resumed, err = svc.Resume(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, resumed.Responses, 1)
	assert.Equal(t, "q1", resumed.Responses[0].QuestionID)
	assert.Equal(t, 10.0, resumed.Responses[0].Weight)
}

func TestAnswer_DebounceEventuallyPersists(t *testing.T) {
	svc := newTestService(20 * time.Millisecond)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "alice")
	require.NoError(t, err)

	_, err = svc.Answer(ctx, "alice", sess.ID, "q1", "mid", 1)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		resumed, err := svc.Resume(ctx, "alice")
		return err == nil && len(resumed.Responses) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestAnswer_InvalidQuestion(t *testing.T) {
	svc := newTestService(longDebounce)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "alice")
	require.NoError(t, err)

	_, err = svc.Answer(ctx, "alice", sess.ID, "ghost", "high", 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuestion)
}

func TestAnswer_InvalidOptionValue(t *testing.T) {
	svc := newTestService(longDebounce)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "alice")
	require.NoError(t, err)

	_, err = svc.Answer(ctx, "alice", sess.ID, "q1", "nonsense", 1)
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "q1")
}

func TestAnswer_ForeignSessionReadsAsNotFound(t *testing.T) {
	svc := newTestService(longDebounce)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "alice")
	require.NoError(t, err)

	_, err = svc.Answer(ctx, "mallory", sess.ID, "q1", "high", 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSave_UpsertsAndAdvancesStep(t *testing.T) {
	svc := newTestService(longDebounce)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "alice")
	require.NoError(t, err)

	saved, err := svc.Save(ctx, "alice", sess.ID, []AnswerInput{
		{QuestionID: "q1", Value: "mid"},
		{QuestionID: "q2", Value: "high"},
	}, 2, 30)
	require.NoError(t, err)
	assert.Len(t, saved.Responses, 2)
	assert.Equal(t, 2, saved.Step)
	assert.Equal(t, int64(30), saved.TimeSpentSec)

	// redundant save with an updated answer: upsert, never duplicate
	saved, err = svc.Save(ctx, "alice", sess.ID, []AnswerInput{
		{QuestionID: "q1", Value: "high"},
	}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, saved.Responses, 2)
	r, ok := saved.ResponseFor("q1")
	require.True(t, ok)
	assert.Equal(t, 10.0, r.Weight)
	// step never rolls back
	assert.Equal(t, 2, saved.Step)
	assert.Equal(t, int64(40), saved.TimeSpentSec)
}

func TestSubmit_IncompleteLeavesSessionInProgress(t *testing.T) {
	svc := newTestService(longDebounce)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "alice")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "alice", sess.ID)
	var ie *apperrors.IncompleteAssessmentError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 3, ie.Missing) // q1..q3 required, q4 optional

	after, err := svc.Resume(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, after.Status)
}

func TestSubmit_ComputesAndFreezesScores(t *testing.T) {
	svc := newTestService(longDebounce)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "alice")
	require.NoError(t, err)

	_, err = svc.Save(ctx, "alice", sess.ID, []AnswerInput{
		{QuestionID: "q1", Value: "high"}, // 10
		{QuestionID: "q2", Value: "mid"},  // 6
		{QuestionID: "q3", Value: "high"}, // 10
	}, 3, 0)
	require.NoError(t, err)

	result, err := svc.Submit(ctx, "alice", sess.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadyCompleted)
	assert.Equal(t, StatusCompleted, result.Session.Status)
	require.NotNil(t, result.Session.SubmittedAt)
	// investigative: (16/20)*100 = 80; social: 10/20 = 50 (q4 unanswered, counts 0)
	assert.Equal(t, 80, result.Session.Scores[catalog.CategoryInvestigative])
	assert.Equal(t, 50, result.Session.Scores[catalog.CategorySocial])
}

func TestSubmit_DuplicateReturnsStoredResult(t *testing.T) {
	svc := newTestService(longDebounce)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.Save(ctx, "alice", sess.ID, []AnswerInput{
		{QuestionID: "q1", Value: "high"},
		{QuestionID: "q2", Value: "mid"},
		{QuestionID: "q3", Value: "high"},
	}, 3, 0)
	require.NoError(t, err)

	first, err := svc.Submit(ctx, "alice", sess.ID)
	require.NoError(t, err)

	second, err := svc.Submit(ctx, "alice", sess.ID)
	require.NoError(t, err)
	assert.True(t, second.AlreadyCompleted)
	assert.Equal(t, first.Session.Scores, second.Session.Scores)
	assert.Equal(t, first.Session.SubmittedAt, second.Session.SubmittedAt)
}

func TestSubmit_FlushesPendingAnswersFirst(t *testing.T) {
	svc := newTestService(longDebounce)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "alice")
	require.NoError(t, err)

	for _, q := range []string{"q1", "q2", "q3"} {
		_, err = svc.Answer(ctx, "alice", sess.ID, q, "high", 1)
		require.NoError(t, err)
	}

	// nothing was explicitly saved, but submit flushes the pending batch
	result, err := svc.Submit(ctx, "alice", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, result.Session.Status)
	assert.Len(t, result.Session.Responses, 3)
}

func TestStart_AfterSubmitCreatesFreshSession(t *testing.T) {
	svc := newTestService(longDebounce)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.Save(ctx, "alice", sess.ID, []AnswerInput{
		{QuestionID: "q1", Value: "high"},
		{QuestionID: "q2", Value: "high"},
		{QuestionID: "q3", Value: "high"},
	}, 3, 0)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "alice", sess.ID)
	require.NoError(t, err)

	fresh, err := svc.Start(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID, fresh.ID)
	assert.Empty(t, fresh.Responses)
}

func TestCompletedSessionRejectsMutation(t *testing.T) {
	svc := newTestService(longDebounce)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.Save(ctx, "alice", sess.ID, []AnswerInput{
		{QuestionID: "q1", Value: "high"},
		{QuestionID: "q2", Value: "high"},
		{QuestionID: "q3", Value: "high"},
	}, 3, 0)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "alice", sess.ID)
	require.NoError(t, err)

	_, err = svc.Answer(ctx, "alice", sess.ID, "q4", "high", 4)
	assert.ErrorIs(t, err, apperrors.ErrSessionClosed)

	_, err = svc.Save(ctx, "alice", sess.ID, []AnswerInput{{QuestionID: "q4", Value: "high"}}, 4, 0)
	assert.True(t, errors.Is(err, apperrors.ErrSessionClosed))
}
