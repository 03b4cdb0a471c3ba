package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// stopError ends a FirstSuccess run early.
type stopError struct{ err error }

func (e *stopError) Error() string { return e.err.Error() }
func (e *stopError) Unwrap() error { return e.err }

// Stop marks err as final: FirstSuccess records it and tries no further
// candidates.
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return &stopError{err: err}
}

// FirstSuccess tries candidates in order and returns the first successful
// result with its candidate. Every failure is collected; a failure wrapped
// with Stop, or a done context, ends the run.
func FirstSuccess[C, T any](ctx context.Context, candidates []C, try func(context.Context, C) (T, error)) (T, C, []error) {
	var (
		zero     T
		none     C
		failures []error
	)
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return zero, none, append(failures, err)
		}
		result, err := try(ctx, c)
		if err == nil {
			return result, c, nil
		}
		var stop *stopError
		if errors.As(err, &stop) {
			return zero, none, append(failures, stop.err)
		}
		failures = append(failures, err)
	}
	return zero, none, failures
}

// AttemptError is one failed (model, egress) attempt.
type AttemptError struct {
	Model  string
	Egress string
	Err    error
}

func (e *AttemptError) Error() string {
	if e.Egress == "" {
		return fmt.Sprintf("model %s: %v", e.Model, e.Err)
	}
	return fmt.Sprintf("model %s via %s: %v", e.Model, e.Egress, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// ExhaustedError is returned when every candidate model failed.
type ExhaustedError struct {
	Errors []error
}

func (e *ExhaustedError) Error() string {
	if len(e.Errors) == 0 {
		return "llm: no candidate models configured"
	}
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("llm: all candidate models failed: %s", strings.Join(parts, " | "))
}

func (e *ExhaustedError) Unwrap() []error { return e.Errors }
