package router

import (
	"fmt"

	"go.uber.org/zap"
)

// ErrorHandler accumulates diagnostics the way Click's ErrorHandler
// object does: every fallible lifecycle call takes one instead of
// returning only an error, so multiple problems (e.g. every element's
// configure() failure) can be collected before the router gives up,
// per spec.md §7. It wraps a *zap.Logger for the actual sink, matching
// how caddyserver-caddy threads a *zap.Logger through Context.
type ErrorHandler struct {
	log     *zap.Logger
	nerrors int
	nwarns  int
}

// NewErrorHandler returns an ErrorHandler that writes through log.
func NewErrorHandler(log *zap.Logger) *ErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ErrorHandler{log: log}
}

// Errorf records a hard error with the given landmark/element context
// prefix, per spec.md §7's propagation policy (context prefix = element
// name + landmark).
func (eh *ErrorHandler) Errorf(context, format string, args ...any) error {
	eh.nerrors++
	msg := fmt.Sprintf(format, args...)
	eh.log.Error(msg, zap.String("context", context))
	return fmt.Errorf("%s: %s", context, msg)
}

// Warnf records a non-fatal warning.
func (eh *ErrorHandler) Warnf(context, format string, args ...any) {
	eh.nwarns++
	msg := fmt.Sprintf(format, args...)
	eh.log.Warn(msg, zap.String("context", context))
}

// NErrors returns the number of errors recorded so far.
func (eh *ErrorHandler) NErrors() int { return eh.nerrors }

// NWarnings returns the number of warnings recorded so far.
func (eh *ErrorHandler) NWarnings() int { return eh.nwarns }

// OK reports whether no errors have been recorded.
func (eh *ErrorHandler) OK() bool { return eh.nerrors == 0 }

// Logger returns the underlying structured logger, for elements that
// want to log outside the error/warning taxonomy (e.g. informational
// messages).
func (eh *ErrorHandler) Logger() *zap.Logger { return eh.log }

// ErrorClass categorizes a diagnostic per spec.md §7's taxonomy. It is
// informational only; Go's error wrapping
// (%w, errors.Is/As) carries the actual error chain.
type ErrorClass int

const (
	ErrClassParse ErrorClass = iota
	ErrClassType
	ErrClassRange
	ErrClassTopology
	ErrClassLifecycle
	ErrClassResource
	ErrClassRuntime
)

func (c ErrorClass) String() string {
	switch c {
	case ErrClassParse:
		return "parse"
	case ErrClassType:
		return "type-mismatch"
	case ErrClassRange:
		return "out-of-range"
	case ErrClassTopology:
		return "topology"
	case ErrClassLifecycle:
		return "lifecycle"
	case ErrClassResource:
		return "resource"
	case ErrClassRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// ClassifiedError pairs an error with its taxonomy class and the
// landmark/element context that produced it.
type ClassifiedError struct {
	Class    ErrorClass
	Context  string
	Landmark string
	Err      error
}

func (e *ClassifiedError) Error() string {
	if e.Landmark != "" {
		return fmt.Sprintf("%s (%s): %s: %v", e.Context, e.Landmark, e.Class, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Context, e.Class, e.Err)
}

func (e *ClassifiedError) Unwrap() error { return e.Err }
