package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathlight-io/pathlight/internal/catalog"
)

func interestQ(id string, order int) catalog.Question {
	return catalog.Question{
		ID:       id,
		Category: catalog.CategoryInvestigative,
		Kind:     catalog.KindScale,
		Options: []catalog.Option{
			{Value: "low", Weight: 0},
			{Value: "mid", Weight: 6},
			{Value: "high", Weight: 10},
		},
		Required: true,
		Order:    order,
	}
}

func TestScore_NormalizesAgainstCategoryMax(t *testing.T) {
	// two questions, max weight 10 each => theoretical max 20
	snap := catalog.NewSnapshot([]catalog.Question{
		interestQ("q1", 1),
		interestQ("q2", 2),
	})

	scores := Score(snap, map[string]float64{"q1": 10, "q2": 6})
	// round((16/20)*100) = 80
	assert.Equal(t, 80, scores[catalog.CategoryInvestigative])
}

func TestScore_Deterministic(t *testing.T) {
	snap := catalog.NewSnapshot([]catalog.Question{
		interestQ("q1", 1),
		interestQ("q2", 2),
	})
	weights := map[string]float64{"q1": 6, "q2": 10}

	first := Score(snap, weights)
	second := Score(snap, weights)
	assert.Equal(t, first, second)
}

func TestScore_UnansweredContributesZero(t *testing.T) {
	snap := catalog.NewSnapshot([]catalog.Question{
		interestQ("q1", 1),
		interestQ("q2", 2),
	})

	scores := Score(snap, map[string]float64{"q1": 10})
	assert.Equal(t, 50, scores[catalog.CategoryInvestigative])
}

func TestScore_BoundsAndRounding(t *testing.T) {
	snap := catalog.NewSnapshot([]catalog.Question{
		interestQ("q1", 1),
		interestQ("q2", 2),
		interestQ("q3", 3),
	})

	// 5/30 => 16.66... rounds half-up to 17, never floored to 16
	scores := Score(snap, map[string]float64{"q1": 5})
	assert.Equal(t, 17, scores[catalog.CategoryInvestigative])

	full := Score(snap, map[string]float64{"q1": 10, "q2": 10, "q3": 10})
	assert.Equal(t, 100, full[catalog.CategoryInvestigative])

	empty := Score(snap, nil)
	assert.Equal(t, 0, empty[catalog.CategoryInvestigative])

	for _, v := range scores {
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 100)
	}
}

func TestScore_ZeroMaxCategoryScoresZero(t *testing.T) {
	snap := catalog.NewSnapshot([]catalog.Question{
		{ID: "q1", Category: catalog.CategoryAcademic, Kind: catalog.KindYesNo,
			Options: []catalog.Option{{Value: "yes", Weight: 0}, {Value: "no", Weight: 0}},
			Order:   1},
	})

	scores := Score(snap, map[string]float64{"q1": 0})
	require.Contains(t, scores, catalog.CategoryAcademic)
	assert.Equal(t, 0, scores[catalog.CategoryAcademic])
}

func TestScore_IgnoresResponsesOutsideSnapshot(t *testing.T) {
	snap := catalog.NewSnapshot([]catalog.Question{interestQ("q1", 1)})

	scores := Score(snap, map[string]float64{"q1": 10, "ghost": 10})
	assert.Equal(t, 100, scores[catalog.CategoryInvestigative])
	assert.Len(t, scores, 1)
}
