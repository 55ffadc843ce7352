package errcodes

import (
	"github.com/pkg/errors"
)

// Code classifies why a book could not be turned into a record.
type Code string

const (
	// CodeMalformedInput is an unreadable or corrupt container, or invalid XML.
	CodeMalformedInput Code = "malformed_input"
	// CodeMissingRequiredSection is an FB2 document without title-info.
	CodeMissingRequiredSection Code = "missing_required_section"
	// CodeIOFailure is a cover resource that couldn't be read, decoded or written.
	CodeIOFailure Code = "io_failure"
)

// Error is a parse failure for a single file. The whole record is discarded
// when one of these is returned.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (err *Error) Error() string {
	if err.Err == nil {
		return err.Message
	}
	return err.Message + ": " + err.Err.Error()
}

func (err *Error) Unwrap() error {
	return err.Err
}

// Cause lets github.com/pkg/errors.Cause walk through the failure.
func (err *Error) Cause() error {
	return err.Err
}

// Is matches any *Error with the same code, so callers can compare against the
// zero-message values returned by the constructors below.
func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.Code == err.Code
}

// MalformedInput wraps err as an unreadable container or invalid document.
func MalformedInput(err error, msg string) error {
	return &Error{
		Code:    CodeMalformedInput,
		Message: msg,
		Err:     errors.WithStack(err),
	}
}

// MissingRequiredSection reports that a mandatory schema node is absent.
func MissingRequiredSection(msg string) error {
	return &Error{
		Code:    CodeMissingRequiredSection,
		Message: msg,
	}
}

// IOFailure wraps err as a cover read/decode/write failure.
func IOFailure(err error, msg string) error {
	return &Error{
		Code:    CodeIOFailure,
		Message: msg,
		Err:     errors.WithStack(err),
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there
// isn't one.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Has reports whether err carries the given code.
func Has(err error, code Code) bool {
	return CodeOf(err) == code
}
