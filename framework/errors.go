package framework

import (
	"errors"
	"fmt"
	"strings"
)

// ElementNotFoundError means that a locator matched nothing in the current scope, or that a
// positional index was beyond the number of matches.
type ElementNotFoundError struct {
	Locator string
	Detail  string
}

func (e ElementNotFoundError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("element not found: %s (%s)", e.Locator, e.Detail)
	}
	return "element not found: " + e.Locator
}

// AmbiguousLocatorError means that a locator used by an operation with single-element semantics
// matched more than one element.
type AmbiguousLocatorError struct {
	Locator string
	Count   int
}

func (e AmbiguousLocatorError) Error() string {
	return fmt.Sprintf("locator is ambiguous, %d elements match: %s", e.Count, e.Locator)
}

// UnsupportedOperationError means that the backend in use cannot perform the operation. The
// Capabilities reported by the engine can be checked ahead of time to avoid it.
type UnsupportedOperationError struct {
	Operation string
	Backend   string
}

func (e UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation %q is not supported by the %s backend", e.Operation, e.Backend)
}

// UnexpectedDialogError means that the page raised a JavaScript dialog that was not expected, or
// whose kind or message did not match the next expectation.
type UnexpectedDialogError struct {
	Kind     string
	Message  string
	Expected string // description of the next pending expectation, if any
}

func (e UnexpectedDialogError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("unexpected %s dialog with message %q; no dialogs were expected", e.Kind, e.Message)
	}
	return fmt.Sprintf("unexpected %s dialog with message %q; expected %s", e.Kind, e.Message, e.Expected)
}

// ExpectedDialogMissingError means that dialogs were expected during an action but none
// appeared. The expectations remain pending.
type ExpectedDialogMissingError struct {
	Expected []string
}

func (e ExpectedDialogMissingError) Error() string {
	return "expected dialog(s) did not appear: " + strings.Join(e.Expected, ", ")
}

// ResponseError is a failure of navigation or of communication with the backend: an HTTP error
// status, a network failure, a driver error, or a timeout while waiting for a page or a driver.
type ResponseError struct {
	Operation  string
	URL        string
	StatusCode int
	Timeout    bool
	Err        error
}

func (e ResponseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Operation)
	if e.URL != "" {
		b.WriteString(" " + e.URL)
	}
	switch {
	case e.Timeout:
		b.WriteString(": timed out")
	case e.StatusCode != 0:
		fmt.Fprintf(&b, ": server returned status %d", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e ResponseError) Unwrap() error { return e.Err }

func IsElementNotFound(err error) bool {
	var target ElementNotFoundError
	return errors.As(err, &target)
}

func IsAmbiguousLocator(err error) bool {
	var target AmbiguousLocatorError
	return errors.As(err, &target)
}

func IsUnsupported(err error) bool {
	var target UnsupportedOperationError
	return errors.As(err, &target)
}

func IsUnexpectedDialog(err error) bool {
	var target UnexpectedDialogError
	return errors.As(err, &target)
}

func IsExpectedDialogMissing(err error) bool {
	var target ExpectedDialogMissingError
	return errors.As(err, &target)
}

func IsResponseError(err error) bool {
	var target ResponseError
	return errors.As(err, &target)
}

// IsTimeout returns true if the error is a ResponseError caused by a timeout.
func IsTimeout(err error) bool {
	var target ResponseError
	return errors.As(err, &target) && target.Timeout
}

// ErrorKind returns a short name for the kind of engine error, or "" if the error is not one of
// the types defined in this package. The names are the ones used by scenario files.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsElementNotFound(err):
		return "elementNotFound"
	case IsAmbiguousLocator(err):
		return "ambiguousLocator"
	case IsUnsupported(err):
		return "unsupportedOperation"
	case IsUnexpectedDialog(err):
		return "unexpectedDialog"
	case IsExpectedDialogMissing(err):
		return "expectedDialogMissing"
	case IsTimeout(err):
		return "timeout"
	case IsResponseError(err):
		return "response"
	}
	return ""
}
