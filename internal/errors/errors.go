// Package errors defines the failure taxonomy for provisioning runs.
package errors

import (
	"errors"
	"fmt"
)

// Error kind constants
const (
	MissingParameter  = "MISSING_PARAMETER"
	InvalidParameter  = "INVALID_PARAMETER"
	DuplicateName     = "DUPLICATE_NAME"
	UnknownDependency = "UNKNOWN_DEPENDENCY"
	CycleDetected     = "CYCLE_DETECTED"
	ActionCheckFailed = "ACTION_CHECK_FAILED"
	ActionApplyFailed = "ACTION_APPLY_FAILED"
	Timeout           = "TIMEOUT"
	StateCorrupt      = "STATE_CORRUPT"
	PermissionDenied  = "PERMISSION_DENIED"
	Internal          = "INTERNAL"
)

// RunError is a structured provisioning error.
type RunError struct {
	Kind    string `json:"kind"`
	Action  string `json:"action,omitempty"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
	Cause   error  `json:"-"`
}

func (e *RunError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("[%s] action %s: %s", e.Kind, e.Action, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped collaborator error to errors.Is/As.
func (e *RunError) Unwrap() error {
	return e.Cause
}

// New creates a RunError with no action attribution.
func New(kind, msg string) *RunError {
	return &RunError{Kind: kind, Message: msg}
}

// Newf creates a RunError with a formatted message.
func Newf(kind, format string, args ...any) *RunError {
	return &RunError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ForAction creates a RunError attributed to an action, wrapping its cause.
func ForAction(kind, action string, cause error) *RunError {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &RunError{Kind: kind, Action: action, Message: msg, Cause: cause}
}

// KindOf returns the kind of err, or Internal for errors outside the taxonomy.
func KindOf(err error) string {
	var re *RunError
	if errors.As(err, &re) {
		return re.Kind
	}
	return Internal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind string) bool {
	return KindOf(err) == kind
}
