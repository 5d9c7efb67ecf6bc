package http

import (
	"encoding/json"
	"net/http"

	"github.com/pathlight-io/pathlight/internal/auth"
	"github.com/pathlight-io/pathlight/internal/intake"
)

func PutIntakeHandler(svc *intake.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p intake.Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "bad json", nil)
			return
		}
		in, err := svc.Put(r.Context(), auth.SubjectFromContext(r.Context()), p)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, in)
	}
}

func GetIntakeHandler(svc *intake.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := svc.Get(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, in)
	}
}

// ValidateIntakeHandler runs the pure schema check without persisting,
// so clients can validate before submitting.
func ValidateIntakeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p intake.Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "bad json", nil)
			return
		}
		errs := intake.Validate(p)
		writeData(w, http.StatusOK, map[string]interface{}{
			"valid":  len(errs) == 0,
			"errors": errs,
		})
	}
}

// IntakeSchemaHandler returns the field schema derived from (level, status)
// so clients can render the form.
func IntakeSchemaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level := intake.Level(r.URL.Query().Get("level"))
		if !intake.KnownLevel(level) {
			writeError(w, http.StatusBadRequest, "unknown education level", nil)
			return
		}
		status := intake.Status(r.URL.Query().Get("status"))
		writeData(w, http.StatusOK, map[string]interface{}{
			"common":   intake.CommonFields(level),
			"specific": intake.SpecificFields(level, status),
		})
	}
}
