package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pathlight-io/pathlight/internal/apperrors"
)

// writeData writes the success envelope {"success": true, "data": ...}.
func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// writeError writes the failure envelope. extra fields (e.g. validation
// error maps) are merged in alongside success/message.
func writeError(w http.ResponseWriter, status int, message string, extra map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]interface{}{
		"success": false,
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	_ = json.NewEncoder(w).Encode(body)
}

// writeServiceError maps the error taxonomy onto HTTP statuses:
// NotFound->404, validation/incomplete/invalid-question->400,
// conflict/busy/closed->409, generation failure->502.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, "validation failed",
			map[string]interface{}{"errors": ve.Fields})
		return
	}
	var ie *apperrors.IncompleteAssessmentError
	if errors.As(err, &ie) {
		writeError(w, http.StatusBadRequest, err.Error(),
			map[string]interface{}{"missing_count": ie.Missing})
		return
	}
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", nil)
	case errors.Is(err, apperrors.ErrInvalidQuestion):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrBusy),
		errors.Is(err, apperrors.ErrSessionClosed):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, apperrors.ErrGenerationFailed):
		writeError(w, http.StatusBadGateway, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}
