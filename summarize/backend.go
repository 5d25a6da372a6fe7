package summarize

import (
	"context"
	"fmt"
	"strings"

	"ewintr.nl/councilbrief/model"
)

// Backend is one interchangeable summarization provider in the fallback
// chain.
type Backend interface {
	Spec() model.BackendSpec
	Summarize(ctx context.Context, prompt string) (string, error)
}

// BackendError records a single backend's failure within a fallback chain.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned when every configured backend failed for one
// meeting. Failures are listed in priority order.
type ExhaustedError struct {
	Failures []*BackendError
}

func (e *ExhaustedError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Error())
	}

	return fmt.Sprintf("all backends exhausted: %s", strings.Join(msgs, "; "))
}
