package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pathlight-io/pathlight/internal/assessment"
	"github.com/pathlight-io/pathlight/internal/auth"
)

// StartAssessmentHandler starts (or idempotently returns) the caller's
// in-progress session.
func StartAssessmentHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.Start(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, sess)
	}
}

// ResumeAssessmentHandler returns the caller's in-progress session; 404
// means the caller should start a new one.
func ResumeAssessmentHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.Resume(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, sess)
	}
}

func AnswerHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuestionID string `json:"question_id"`
			Value      string `json:"value"`
			Step       int    `json:"step"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json", nil)
			return
		}
		if req.QuestionID == "" {
			writeError(w, http.StatusBadRequest, "question_id required", nil)
			return
		}
		resp, err := svc.Answer(r.Context(), auth.SubjectFromContext(r.Context()),
			chi.URLParam(r, "sessionID"), req.QuestionID, req.Value, req.Step)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, resp)
	}
}

func SaveAssessmentHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Responses    []assessment.AnswerInput `json:"responses"`
			Step         int                      `json:"step"`
			TimeSpentSec int64                    `json:"time_spent_sec"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json", nil)
			return
		}
		sess, err := svc.Save(r.Context(), auth.SubjectFromContext(r.Context()),
			chi.URLParam(r, "sessionID"), req.Responses, req.Step, req.TimeSpentSec)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, sess)
	}
}

func SubmitAssessmentHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Submit(r.Context(), auth.SubjectFromContext(r.Context()),
			chi.URLParam(r, "sessionID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, result)
	}
}

func GetAssessmentHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.Get(r.Context(), auth.SubjectFromContext(r.Context()),
			chi.URLParam(r, "sessionID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, sess)
	}
}
