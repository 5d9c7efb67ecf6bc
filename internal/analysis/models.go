package analysis

import (
	"fmt"

	"github.com/pathlight-io/pathlight/internal/apperrors"
	"github.com/pathlight-io/pathlight/internal/catalog"
	"github.com/pathlight-io/pathlight/internal/intake"
)

type SourceKind string

const (
	SourceAssessment SourceKind = "assessment"
	SourceIntake     SourceKind = "intake"
)

// Source is what the recommendation producer consumes: either the frozen
// score set of a completed assessment or an education intake.
type Source struct {
	ID     string
	Kind   SourceKind
	UserID string

	Scores map[catalog.Category]int // assessment sources
	Intake *intake.Intake           // intake sources
}

type Recommendation struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Match       float64 `json:"match,omitempty"` // 0..1 producer-reported fit
}

// RequiredCategories are the keys every recommendation payload must carry.
// Empty lists are acceptable; missing keys are not.
var RequiredCategories = []string{"careers", "degrees", "skills"}

// RecommendationPayload is the structural contract with the producer. The
// platform treats the content as opaque beyond this shape.
type RecommendationPayload struct {
	Summary    string                      `json:"summary"`
	Confidence float64                     `json:"confidence"`
	Categories map[string][]Recommendation `json:"categories"`
}

// CheckShape verifies the payload carries every required category key.
func (p RecommendationPayload) CheckShape() error {
	for _, c := range RequiredCategories {
		if _, ok := p.Categories[c]; !ok {
			return fmt.Errorf("%w: payload missing category %q", apperrors.ErrGenerationFailed, c)
		}
	}
	return nil
}

// Artifact is a stored recommendation. Its id stays stable across
// regenerations; only the payload and the counter change.
type Artifact struct {
	ID                string                `json:"id"`
	UserID            string                `json:"user_id"`
	SourceID          string                `json:"source_id"`
	SourceKind        SourceKind            `json:"source_kind"`
	Payload           RecommendationPayload `json:"payload"`
	Confidence        float64               `json:"confidence"`
	RegenerationCount int                   `json:"regeneration_count"`
	CreatedAt         int64                 `json:"created_at"`
	UpdatedAt         int64                 `json:"updated_at"`
}
