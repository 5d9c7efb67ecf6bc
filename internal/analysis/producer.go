package analysis

import "context"

// Producer is the external recommendation generator: possibly slow,
// possibly failing. The lifecycle manager never retries it on its own.
type Producer interface {
	Produce(ctx context.Context, src Source) (RecommendationPayload, error)
}

// SourceLoader resolves an artifact's source back into producer input so a
// regeneration runs against the same assessment or intake.
type SourceLoader interface {
	LoadSource(ctx context.Context, userID, sourceID string, kind SourceKind) (Source, error)
}
