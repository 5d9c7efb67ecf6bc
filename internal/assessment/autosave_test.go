package assessment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type saveRecorder struct {
	mu    sync.Mutex
	calls []savedBatch
}

type savedBatch struct {
	sessionID string
	responses []Response
	step      int
}

func (r *saveRecorder) save(_ context.Context, sessionID string, responses []Response, step int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, savedBatch{sessionID: sessionID, responses: responses, step: step})
}

func (r *saveRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *saveRecorder) last() savedBatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func TestAutosaver_FiresOnceAfterQuietWindow(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutosaver(20*time.Millisecond, rec.save, zap.NewNop())
	defer a.Close()

	a.Arm("s1", Response{QuestionID: "q1", Value: "high", Weight: 10}, 1)
	a.Arm("s1", Response{QuestionID: "q2", Value: "mid", Weight: 6}, 2)

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	batch := rec.last()
	assert.Equal(t, "s1", batch.sessionID)
	assert.Len(t, batch.responses, 2)
	assert.Equal(t, 2, batch.step)

	// window long quiet: no second fire
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestAutosaver_RearmReplacesAnswer(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutosaver(20*time.Millisecond, rec.save, zap.NewNop())
	defer a.Close()

	a.Arm("s1", Response{QuestionID: "q1", Value: "low", Weight: 0}, 1)
	a.Arm("s1", Response{QuestionID: "q1", Value: "high", Weight: 10}, 1)

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	batch := rec.last()
	require.Len(t, batch.responses, 1)
	assert.Equal(t, 10.0, batch.responses[0].Weight)
}

func TestAutosaver_FlushSavesImmediatelyAndDisarms(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutosaver(time.Hour, rec.save, zap.NewNop())
	defer a.Close()

	a.Arm("s1", Response{QuestionID: "q1", Value: "high", Weight: 10}, 1)
	require.True(t, a.Flush(context.Background(), "s1"))
	assert.Equal(t, 1, rec.count())

	// nothing pending anymore
	assert.False(t, a.Flush(context.Background(), "s1"))
}

func TestAutosaver_CancelPreventsSave(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutosaver(15*time.Millisecond, rec.save, zap.NewNop())
	defer a.Close()

	a.Arm("s1", Response{QuestionID: "q1", Value: "high", Weight: 10}, 1)
	a.Cancel("s1")

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
}

func TestAutosaver_CloseCancelsEverything(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutosaver(15*time.Millisecond, rec.save, zap.NewNop())

	a.Arm("s1", Response{QuestionID: "q1"}, 1)
	a.Arm("s2", Response{QuestionID: "q1"}, 1)
	a.Close()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, rec.count())

	// arming after close is a no-op
	a.Arm("s3", Response{QuestionID: "q1"}, 1)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
}

func TestAutosaver_SessionsDebounceIndependently(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutosaver(20*time.Millisecond, rec.save, zap.NewNop())
	defer a.Close()

	a.Arm("s1", Response{QuestionID: "q1"}, 1)
	a.Arm("s2", Response{QuestionID: "q1"}, 1)

	require.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, 5*time.Millisecond)
}
