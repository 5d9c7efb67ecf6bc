package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pathlight-io/pathlight/internal/apperrors"
)

// Service is the analysis lifecycle manager: sole writer of artifacts.
// Generation is never auto-retried; a failed produce surfaces
// ErrGenerationFailed and the caller decides whether to regenerate.
type Service struct {
	store        Store
	producer     Producer
	cache        Cache
	loader       SourceLoader
	historyLimit int
	log          *zap.Logger
	now          func() time.Time

	mu       sync.Mutex
	inflight map[string]bool // source or artifact id currently generating
}

func NewService(store Store, producer Producer, cache Cache, loader SourceLoader, historyLimit int, log *zap.Logger) *Service {
	return &Service{
		store:        store,
		producer:     producer,
		cache:        cache,
		loader:       loader,
		historyLimit: historyLimit,
		log:          log,
		now:          time.Now,
		inflight:     map[string]bool{},
	}
}

// acquire marks key as in flight; a second concurrent request for the same
// key gets ErrBusy instead of a duplicate producer call.
func (s *Service) acquire(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[key] {
		return apperrors.ErrBusy
	}
	s.inflight[key] = true
	return nil
}

func (s *Service) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}

// Generate produces and persists a new artifact for the source, appending
// it to the owner's history.
func (s *Service) Generate(ctx context.Context, src Source) (Artifact, error) {
	if err := s.acquire(src.ID); err != nil {
		return Artifact{}, err
	}
	defer s.release(src.ID)

	payload, err := s.produce(ctx, src)
	if err != nil {
		return Artifact{}, err
	}

	now := s.now().Unix()
	a := Artifact{
		ID:         uuid.NewString(),
		UserID:     src.UserID,
		SourceID:   src.ID,
		SourceKind: src.Kind,
		Payload:    payload,
		Confidence: payload.Confidence,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.PutArtifact(ctx, a); err != nil {
		return Artifact{}, err
	}
	s.cache.Set(ctx, a)
	s.log.Info("artifact generated",
		zap.String("artifact_id", a.ID),
		zap.String("source_kind", string(a.SourceKind)),
		zap.Float64("confidence", a.Confidence))
	return a, nil
}

// Regenerate re-runs generation against the artifact's original source.
// The artifact id is stable: only payload, confidence and the counter
// change, and no new history entry appears.
func (s *Service) Regenerate(ctx context.Context, userID, artifactID string) (Artifact, error) {
	a, err := s.ownedArtifact(ctx, userID, artifactID)
	if err != nil {
		return Artifact{}, err
	}
	if err := s.acquire(artifactID); err != nil {
		return Artifact{}, err
	}
	defer s.release(artifactID)

	src, err := s.loader.LoadSource(ctx, a.UserID, a.SourceID, a.SourceKind)
	if err != nil {
		return Artifact{}, err
	}
	payload, err := s.produce(ctx, src)
	if err != nil {
		return Artifact{}, err
	}

	a.Payload = payload
	a.Confidence = payload.Confidence
	a.RegenerationCount++
	a.UpdatedAt = s.now().Unix()
	if err := s.store.UpdateArtifact(ctx, a); err != nil {
		return Artifact{}, err
	}
	s.cache.Delete(ctx, artifactID)
	s.cache.Set(ctx, a)
	s.log.Info("artifact regenerated",
		zap.String("artifact_id", a.ID),
		zap.Int("regeneration_count", a.RegenerationCount))
	return a, nil
}

func (s *Service) produce(ctx context.Context, src Source) (RecommendationPayload, error) {
	payload, err := s.producer.Produce(ctx, src)
	if err != nil {
		return RecommendationPayload{}, fmt.Errorf("%w: %v", apperrors.ErrGenerationFailed, err)
	}
	if err := payload.CheckShape(); err != nil {
		return RecommendationPayload{}, err
	}
	return payload, nil
}

// ownedArtifact scopes reads to the owner: foreign artifacts read as
// ErrNotFound rather than leaking their existence.
func (s *Service) ownedArtifact(ctx context.Context, userID, id string) (Artifact, error) {
	a, err := s.store.GetArtifact(ctx, id)
	if err != nil {
		return Artifact{}, err
	}
	if a.UserID != userID {
		return Artifact{}, apperrors.ErrNotFound
	}
	return a, nil
}

// Get returns an artifact, serving from cache when possible.
func (s *Service) Get(ctx context.Context, userID, id string) (Artifact, error) {
	if a, ok := s.cache.Get(ctx, id); ok && a.UserID == userID {
		return a, nil
	}
	a, err := s.ownedArtifact(ctx, userID, id)
	if err != nil {
		return Artifact{}, err
	}
	s.cache.Set(ctx, a)
	return a, nil
}

// ListHistory returns the owner's artifacts most-recent-first, bounded to
// the retention window.
func (s *Service) ListHistory(ctx context.Context, userID string) ([]Artifact, error) {
	return s.store.ListByUser(ctx, userID, s.historyLimit)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.ownedArtifact(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteArtifact(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(ctx, id)
	return nil
}
