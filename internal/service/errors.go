package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vbonduro/briefdesk/internal/api"
)

var (
	ErrUploadsPending     = errors.New("uploads still in progress")
	ErrStepInvalid        = errors.New("draft has incomplete steps")
	ErrAccessLocked       = errors.New("documents are locked")
	ErrReportIncomplete   = errors.New("every document needs a description")
	ErrAlreadySubmitted   = errors.New("report already submitted")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrNotAgent           = errors.New("only agents can do this")
	ErrNotFound           = errors.New("not found")
)

// StepError reports the first step of a draft that does not validate.
type StepError struct {
	Step  int
	Label string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s) is incomplete", e.Step+1, e.Label)
}

func (e *StepError) Unwrap() error { return ErrStepInvalid }

// ValidationError maps form fields to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid input: " + strings.Join(keys, ", ")
}

// isTransportFailure separates an unreachable backend from one that answered
// with a rejection.
func isTransportFailure(err error) bool {
	if err == nil || errors.Is(err, api.ErrUnauthorized) {
		return false
	}
	var apiErr *api.Error
	return !errors.As(err, &apiErr)
}
