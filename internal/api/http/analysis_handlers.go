package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pathlight-io/pathlight/internal/analysis"
	"github.com/pathlight-io/pathlight/internal/auth"
)

// GenerateAnalysisHandler produces a new recommendation artifact from a
// completed assessment or the caller's intake.
func GenerateAnalysisHandler(svc *analysis.Service, loader analysis.SourceLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SourceKind analysis.SourceKind `json:"source_kind"`
			SourceID   string              `json:"source_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json", nil)
			return
		}
		userID := auth.SubjectFromContext(r.Context())
		if req.SourceKind == analysis.SourceIntake && req.SourceID == "" {
			req.SourceID = userID
		}
		src, err := loader.LoadSource(r.Context(), userID, req.SourceID, req.SourceKind)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		a, err := svc.Generate(r.Context(), src)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusCreated, a)
	}
}

func RegenerateAnalysisHandler(svc *analysis.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.Regenerate(r.Context(), auth.SubjectFromContext(r.Context()),
			chi.URLParam(r, "artifactID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, a)
	}
}

func GetAnalysisHandler(svc *analysis.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.Get(r.Context(), auth.SubjectFromContext(r.Context()),
			chi.URLParam(r, "artifactID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, a)
	}
}

func ListAnalysesHandler(svc *analysis.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := svc.ListHistory(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if history == nil {
			history = []analysis.Artifact{}
		}
		writeData(w, http.StatusOK, history)
	}
}

func DeleteAnalysisHandler(svc *analysis.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.Delete(r.Context(), auth.SubjectFromContext(r.Context()),
			chi.URLParam(r, "artifactID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}
