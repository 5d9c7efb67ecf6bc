package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrBusy             = errors.New("operation already in flight")
	ErrInvalidQuestion  = errors.New("question not in catalog snapshot")
	ErrSessionClosed    = errors.New("session already completed")
	ErrGenerationFailed = errors.New("recommendation generation failed")
)

// IncompleteAssessmentError reports how many required questions are still
// unanswered. It deliberately carries a count, not question identities.
type IncompleteAssessmentError struct {
	Missing int
}

func (e *IncompleteAssessmentError) Error() string {
	return fmt.Sprintf("assessment incomplete: %d required questions unanswered", e.Missing)
}

// ValidationError carries the full set of field violations at once.
type ValidationError struct {
	Fields map[string]string // field path -> message
}

func (e *ValidationError) Error() string {
	paths := make([]string, 0, len(e.Fields))
	for p := range e.Fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return "validation failed: " + strings.Join(paths, ", ")
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
