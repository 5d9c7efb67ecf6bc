// Package scoring turns captured response weights into normalized
// per-category scores. Score is a pure function of its inputs: no clock,
// no randomness, no storage.
package scoring

import (
	"math"

	"github.com/pathlight-io/pathlight/internal/catalog"
)

// Score sums captured weights per category and normalizes each sum against
// the category's theoretical maximum in the snapshot, yielding integers in
// [0,100]. weights maps questionID to the weight captured at answer time;
// unanswered questions simply contribute zero. Rounding is half-up.
func Score(snap catalog.Snapshot, weights map[string]float64) map[catalog.Category]int {
	totals := make(map[catalog.Category]float64)
	for id, w := range weights {
		q, ok := snap.Lookup(id)
		if !ok {
			continue // not part of this snapshot; never scored
		}
		totals[q.Category] += w
	}

	max := snap.CategoryMax()
	scores := make(map[catalog.Category]int, len(max))
	for _, cat := range snap.Categories() {
		m := max[cat]
		if m <= 0 {
			scores[cat] = 0
			continue
		}
		v := totals[cat] / m * 100
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		scores[cat] = int(math.Floor(v + 0.5)) // round half-up, never plain floor
	}
	return scores
}
