package mpmq

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Namespace prefixes every sentinel error this package defines.
const Namespace = "mpmq"

var (
	// ErrBadFrame is returned when a line on the message stream does not match
	// the "#<offset>-<body>" grammar.
	ErrBadFrame = errors.New(Namespace + ": malformed message frame")

	// ErrProtocol wraps ErrBadFrame (and other stream-contract violations) as
	// the fatal condition that aborts the scheduler loop.
	ErrProtocol = errors.New(Namespace + ": message stream protocol violation")

	// ErrInterrupted is returned by Execute when the caller's context is
	// canceled mid-run.
	ErrInterrupted = errors.New(Namespace + ": execution interrupted")

	// ErrUnknownFunction is returned by the worker-side registry lookup when
	// no function is registered under the requested name. New does not check
	// the registry; the worker reports the failure as a *WorkerError with
	// ClassName "UnknownFunction".
	ErrUnknownFunction = errors.New(Namespace + ": no function registered under that name")

	// ErrInvalidConfig is returned when option assembly produces an invalid
	// configuration.
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
)

// WorkerError is the stable, serializable representation of a worker-side
// failure. It crosses the process boundary as JSON and is placed directly
// into the results slice in place of a successful return value; it never
// crashes the parent.
type WorkerError struct {
	Offset    int    `json:"offset"`
	ClassName string `json:"class_name"`
	Message   string `json:"message"`
	Trace     string `json:"trace,omitempty"`
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker at offset %d failed: %s: %s", e.Offset, e.ClassName, e.Message)
}

// LaunchError indicates the Worker Launcher failed to start an OS process for
// an offset — an infrastructure failure distinct from a user-function failure.
type LaunchError struct {
	Offset int
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("%s: failed to launch worker at offset %d: %v", Namespace, e.Offset, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// AggregateError is returned by Execute when raiseIfError is true and one or
// more results is a *WorkerError. It names every offending offset.
type AggregateError struct {
	Offsets []int
	errs    []error
}

func (e *AggregateError) Error() string {
	parts := make([]string, len(e.Offsets))
	for i, o := range e.Offsets {
		parts[i] = strconv.Itoa(o)
	}
	return fmt.Sprintf("%s: worker(s) at offset(s) %s had errors", Namespace, strings.Join(parts, ","))
}

// Unwrap exposes the underlying per-offset errors for errors.Is/errors.As.
func (e *AggregateError) Unwrap() []error { return e.errs }

// newAggregateError builds an AggregateError from the offsets (in ascending
// order) whose result is a *WorkerError.
func newAggregateError(results []any) *AggregateError {
	var offsets []int
	var errs []error
	for i, v := range results {
		if we, ok := v.(*WorkerError); ok {
			offsets = append(offsets, i)
			errs = append(errs, we)
		}
	}
	if len(offsets) == 0 {
		return nil
	}
	return &AggregateError{Offsets: offsets, errs: errs}
}
