package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pathlight-io/pathlight/internal/apperrors"
	"github.com/pathlight-io/pathlight/internal/catalog"
)

type fakeProducer struct {
	mu      sync.Mutex
	calls   int
	payload RecommendationPayload
	err     error
	block   chan struct{} // when set, Produce waits until closed
}

func (f *fakeProducer) Produce(_ context.Context, _ Source) (RecommendationPayload, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.err != nil {
		return RecommendationPayload{}, f.err
	}
	return f.payload, nil
}

func (f *fakeProducer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeLoader struct{ src Source }

func (l *fakeLoader) LoadSource(_ context.Context, _, _ string, _ SourceKind) (Source, error) {
	return l.src, nil
}

func validPayload() RecommendationPayload {
	return RecommendationPayload{
		Summary:    "Strong investigative profile",
		Confidence: 0.82,
		Categories: map[string][]Recommendation{
			"careers": {{Title: "Software Engineer", Match: 0.9}},
			"degrees": {{Title: "BS Computer Science"}},
			"skills":  {}, // empty is acceptable
		},
	}
}

func assessmentSource(userID string) Source {
	return Source{
		ID:     "sess-1",
		Kind:   SourceAssessment,
		UserID: userID,
		Scores: map[catalog.Category]int{catalog.CategoryInvestigative: 80},
	}
}

func newTestService(p Producer, loader SourceLoader, historyLimit int) *Service {
	return NewService(NewMemoryStore(), p, NewMemoryCache(time.Minute), loader, historyLimit, zap.NewNop())
}

func TestGenerate_PersistsArtifact(t *testing.T) {
	prod := &fakeProducer{payload: validPayload()}
	svc := newTestService(prod, &fakeLoader{}, 20)
	ctx := context.Background()

	a, err := svc.Generate(ctx, assessmentSource("alice"))
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "alice", a.UserID)
	assert.Equal(t, 0, a.RegenerationCount)
	assert.Equal(t, 0.82, a.Confidence)

	got, err := svc.Get(ctx, "alice", a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestGenerate_ProducerErrorSurfacesAsGenerationFailed(t *testing.T) {
	prod := &fakeProducer{err: errors.New("upstream timeout")}
	svc := newTestService(prod, &fakeLoader{}, 20)

	_, err := svc.Generate(context.Background(), assessmentSource("alice"))
	assert.ErrorIs(t, err, apperrors.ErrGenerationFailed)

	// no retry on the manager's side
	assert.Equal(t, 1, prod.callCount())
}

func TestGenerate_MissingCategoryIsGenerationFailed(t *testing.T) {
	payload := validPayload()
	delete(payload.Categories, "skills")
	prod := &fakeProducer{payload: payload}
	svc := newTestService(prod, &fakeLoader{}, 20)

	_, err := svc.Generate(context.Background(), assessmentSource("alice"))
	assert.ErrorIs(t, err, apperrors.ErrGenerationFailed)

	// nothing persisted
	history, err := svc.ListHistory(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGenerate_ConcurrentDuplicateGetsBusy(t *testing.T) {
	block := make(chan struct{})
	prod := &fakeProducer{payload: validPayload(), block: block}
	svc := newTestService(prod, &fakeLoader{}, 20)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(ctx, assessmentSource("alice"))
		done <- err
	}()

	require.Eventually(t, func() bool { return prod.callCount() == 1 }, time.Second, time.Millisecond)

	_, err := svc.Generate(ctx, assessmentSource("alice"))
	assert.ErrorIs(t, err, apperrors.ErrBusy)

	close(block)
	require.NoError(t, <-done)
}

func TestRegenerate_PreservesIdentityAndIncrementsCounter(t *testing.T) {
	prod := &fakeProducer{payload: validPayload()}
	src := assessmentSource("alice")
	svc := newTestService(prod, &fakeLoader{src: src}, 20)
	ctx := context.Background()

	a, err := svc.Generate(ctx, src)
	require.NoError(t, err)

	prod.payload.Summary = "Updated recommendation"
	regen, err := svc.Regenerate(ctx, "alice", a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, regen.ID)
	assert.Equal(t, 1, regen.RegenerationCount)
	assert.Equal(t, "Updated recommendation", regen.Payload.Summary)
	assert.Equal(t, a.CreatedAt, regen.CreatedAt)

	again, err := svc.Regenerate(ctx, "alice", a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.RegenerationCount)

	// regeneration never adds a history entry
	history, err := svc.ListHistory(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, a.ID, history[0].ID)
}

func TestRegenerate_FailureLeavesArtifactUntouched(t *testing.T) {
	prod := &fakeProducer{payload: validPayload()}
	src := assessmentSource("alice")
	svc := newTestService(prod, &fakeLoader{src: src}, 20)
	ctx := context.Background()

	a, err := svc.Generate(ctx, src)
	require.NoError(t, err)

	prod.err = errors.New("producer down")
	_, err = svc.Regenerate(ctx, "alice", a.ID)
	assert.ErrorIs(t, err, apperrors.ErrGenerationFailed)

	got, err := svc.Get(ctx, "alice", a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Payload, got.Payload)
	assert.Equal(t, 0, got.RegenerationCount)
}

func TestListHistory_BoundedMostRecentFirst(t *testing.T) {
	prod := &fakeProducer{payload: validPayload()}
	svc := newTestService(prod, &fakeLoader{}, 3)
	ctx := context.Background()

	// deterministic artificial clock so ordering is unambiguous
	tick := int64(1000)
	svc.now = func() time.Time {
		tick++
		return time.Unix(tick, 0)
	}

	var last Artifact
	for i := 0; i < 5; i++ {
		src := assessmentSource("alice")
		src.ID = "sess-" + string(rune('a'+i))
		a, err := svc.Generate(ctx, src)
		require.NoError(t, err)
		last = a
	}

	history, err := svc.ListHistory(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, last.ID, history[0].ID)

	// older artifacts fall off the list but stay retrievable by id
	for i := 1; i < len(history); i++ {
		assert.GreaterOrEqual(t, history[i-1].CreatedAt, history[i].CreatedAt)
	}
}

func TestDelete_RemovesArtifactAndCacheEntry(t *testing.T) {
	prod := &fakeProducer{payload: validPayload()}
	svc := newTestService(prod, &fakeLoader{}, 20)
	ctx := context.Background()

	a, err := svc.Generate(ctx, assessmentSource("alice"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "alice", a.ID))
	_, err = svc.Get(ctx, "alice", a.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOwnership_ForeignArtifactReadsAsNotFound(t *testing.T) {
	prod := &fakeProducer{payload: validPayload()}
	svc := newTestService(prod, &fakeLoader{}, 20)
	ctx := context.Background()

	a, err := svc.Generate(ctx, assessmentSource("alice"))
	require.NoError(t, err)

	_, err = svc.Get(ctx, "mallory", a.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = svc.Regenerate(ctx, "mallory", a.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	err = svc.Delete(ctx, "mallory", a.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
