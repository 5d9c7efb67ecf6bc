package assessment

import (
	"github.com/pathlight-io/pathlight/internal/catalog"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Response records an answer together with the option weight captured at
// answer time. The denormalized weight keeps historical scores stable even
// if the catalog changes later.
type Response struct {
	QuestionID string  `json:"question_id"`
	Value      string  `json:"value"`
	Weight     float64 `json:"weight"`
	AnsweredAt int64   `json:"answered_at"`
}

type Session struct {
	ID            string                   `json:"id"`
	UserID        string                   `json:"user_id"`
	Status        Status                   `json:"status"`
	Step          int                      `json:"step"`
	QuestionCount int                      `json:"question_count"`
	Catalog       catalog.Snapshot         `json:"catalog"`
	Responses     []Response               `json:"responses"` // answer order; question order comes from the catalog
	Scores        map[catalog.Category]int `json:"scores,omitempty"`
	TimeSpentSec  int64                    `json:"time_spent_sec"`
	CreatedAt     int64                    `json:"created_at"`
	LastSavedAt   int64                    `json:"last_saved_at"`
	SubmittedAt   *int64                   `json:"submitted_at,omitempty"`
}

// ResponseFor returns the session's response to the given question, if any.
func (s *Session) ResponseFor(questionID string) (Response, bool) {
	for _, r := range s.Responses {
		if r.QuestionID == questionID {
			return r, true
		}
	}
	return Response{}, false
}

// UpsertResponse keeps at most one response per question: an existing entry
// is replaced in place, a new one is appended in answer order.
func UpsertResponse(responses []Response, r Response) []Response {
	for i := range responses {
		if responses[i].QuestionID == r.QuestionID {
			responses[i] = r
			return responses
		}
	}
	return append(responses, r)
}

// MissingRequired counts required snapshot questions without a response.
func (s *Session) MissingRequired() int {
	missing := 0
	for _, id := range s.Catalog.RequiredIDs() {
		if _, ok := s.ResponseFor(id); !ok {
			missing++
		}
	}
	return missing
}

// CapturedWeights maps questionID to the weight captured at answer time,
// the shape the scoring engine consumes.
func (s *Session) CapturedWeights() map[string]float64 {
	w := make(map[string]float64, len(s.Responses))
	for _, r := range s.Responses {
		w[r.QuestionID] = r.Weight
	}
	return w
}
