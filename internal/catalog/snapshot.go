package catalog

import "sort"

// Snapshot is the ordered question set captured at session start. A session
// keeps scoring against its snapshot even if the live catalog changes later.
type Snapshot struct {
	Questions []Question `json:"questions"`
}

// NewSnapshot copies and orders the given questions by their order index.
func NewSnapshot(qs []Question) Snapshot {
	cp := make([]Question, len(qs))
	copy(cp, qs)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Order < cp[j].Order })
	return Snapshot{Questions: cp}
}

// Lookup returns the snapshot question with the given id.
func (s Snapshot) Lookup(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// RequiredIDs lists the ids of all required questions, in catalog order.
func (s Snapshot) RequiredIDs() []string {
	var ids []string
	for _, q := range s.Questions {
		if q.Required {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// CategoryMax returns each category's theoretical maximum achievable weight:
// the sum of the highest-weight option across that category's questions in
// this snapshot, not the global catalog.
func (s Snapshot) CategoryMax() map[Category]float64 {
	max := make(map[Category]float64)
	for _, q := range s.Questions {
		max[q.Category] += q.MaxWeight()
	}
	return max
}

// Categories lists the distinct categories present, in catalog order.
func (s Snapshot) Categories() []Category {
	seen := make(map[Category]bool)
	var out []Category
	for _, q := range s.Questions {
		if !seen[q.Category] {
			seen[q.Category] = true
			out = append(out, q.Category)
		}
	}
	return out
}
