// Package errors provides the categorized errors shared by every changever
// component. Each error carries a Kind so callers can branch with errors.Is
// against the Err* sentinels while the message keeps the wrapped context.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind represents the category of a failure.
type Kind int

const (
	// Configuration errors are caused by a missing or malformed option.
	Configuration Kind = iota
	// Extraction errors come from the version-control tool.
	Extraction
	// InvalidVersion errors are raised for strings that are not semantic versions.
	InvalidVersion
	// Input errors are caused by unusable data handed to a component.
	Input
)

// String returns a human-readable name for the error kind.
func (k Kind) String() string {
	switch k {
	case Configuration:
		return "Configuration Error"
	case Extraction:
		return "Extraction Error"
	case InvalidVersion:
		return "Invalid Version"
	case Input:
		return "Input Error"
	default:
		return "Error"
	}
}

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrConfiguration  = &Error{Kind: Configuration, Message: "configuration error"}
	ErrExtraction     = &Error{Kind: Extraction, Message: "extraction error"}
	ErrInvalidVersion = &Error{Kind: InvalidVersion, Message: "invalid version"}
	ErrInput          = &Error{Kind: Input, Message: "input error"}
)

// Error is a categorized failure.
type Error struct {
	Kind    Kind
	Message string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewConfigError creates a configuration error.
func NewConfigError(format string, args ...any) *Error {
	return &Error{Kind: Configuration, Message: fmt.Sprintf(format, args...)}
}

// NewExtractionError creates an extraction error.
func NewExtractionError(format string, args ...any) *Error {
	return &Error{Kind: Extraction, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidVersionError creates an invalid version error for the given input.
func NewInvalidVersionError(version string, cause error) *Error {
	return &Error{Kind: InvalidVersion, Message: fmt.Sprintf("invalid semantic version %q", version), Err: cause}
}

// NewInputError creates an input error.
func NewInputError(format string, args ...any) *Error {
	return &Error{Kind: Input, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err in an *Error of the given kind with a context message.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
