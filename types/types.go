// Package types provides shared types and errors for the wukong library.
//
// This is a "leaf" package with no imports from other wukong packages,
// allowing it to be imported by any package without causing import cycles.
package types

import (
	"errors"
	"strconv"
)

// Logger is the structured logger used across wukong.
//
// Messages are accompanied by alternating key/value pairs. *slog.Logger
// satisfies this interface directly.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// ErrorKind classifies a client error.
type ErrorKind int

const (
	// KindConstruction covers malformed filters: missing operator separator,
	// unsupported operator, NOT with several operands, non-list in/nin values.
	KindConstruction ErrorKind = iota + 1
	// KindDuplicateKey is returned when creating a document whose unique key exists.
	KindDuplicateKey
	// KindNotFound is returned when updating a document that does not exist.
	KindNotFound
	// KindTransport is returned when no node produced a successful response.
	KindTransport
	// KindParse is returned when a successful response body is not valid JSON.
	KindParse
	// KindMembership is returned by membership sources. Routers treat it as soft.
	KindMembership
	// KindSchema covers schema validation and schema update failures.
	KindSchema
	// KindMissingSection is returned when a response lacks a requested section.
	KindMissingSection
	// KindConfiguration is returned for invalid client configuration.
	KindConfiguration
)

// String returns the name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindConstruction:
		return "construction"
	case KindDuplicateKey:
		return "duplicate_key"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	case KindMembership:
		return "membership"
	case KindSchema:
		return "schema"
	case KindMissingSection:
		return "missing_section"
	case KindConfiguration:
		return "configuration"
	}

	return "unknown(" + strconv.Itoa(int(k)) + ")"
}

// Sentinel errors, one per error kind. Every *Error unwraps to the sentinel of
// its kind, so callers can branch with errors.Is.
var (
	ErrConstruction   = errors.New("wukong: invalid query construction")
	ErrDuplicateKey   = errors.New("wukong: duplicate unique key")
	ErrNotFound       = errors.New("wukong: document not found")
	ErrTransport      = errors.New("wukong: no node returned a successful response")
	ErrParse          = errors.New("wukong: response parsing failed")
	ErrMembership     = errors.New("wukong: membership source failure")
	ErrSchema         = errors.New("wukong: schema error")
	ErrMissingSection = errors.New("wukong: response section missing")
	ErrConfiguration  = errors.New("wukong: invalid configuration")
)

// Sentinel returns the sentinel error associated with the kind.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindConstruction:
		return ErrConstruction
	case KindDuplicateKey:
		return ErrDuplicateKey
	case KindNotFound:
		return ErrNotFound
	case KindTransport:
		return ErrTransport
	case KindParse:
		return ErrParse
	case KindMembership:
		return ErrMembership
	case KindSchema:
		return ErrSchema
	case KindMissingSection:
		return ErrMissingSection
	case KindConfiguration:
		return ErrConfiguration
	}

	return nil
}

// Error is the single client error type surfaced by wukong.
//
// Message is human readable and matches what operators see in logs.
// Cause, when set, carries the underlying failure (for example the
// aggregated per-node errors of a failed request).
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Message is the human-readable description.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// NewError creates an Error of the given kind.
//
// Parameters:
//   - kind: The error kind
//   - message: Human-readable message
//
// Returns:
//   - *Error: The new error
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates an Error of the given kind with an underlying cause.
func WrapError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}

	return e.Message + ": " + e.Cause.Error()
}

// Unwrap returns the kind sentinel and the cause for errors.Is/As compatibility.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}

	return errs
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	return e.Kind == kind
}

// StatusError records a node that answered with a non-200 status.
type StatusError struct {
	// Node is the address that answered.
	Node string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Reason is the status reason phrase (e.g. "Service Unavailable").
	Reason string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return "wukong: node " + e.Node + " answered " + strconv.Itoa(e.StatusCode) + ": " + e.Reason
}

// NodeError wraps a connection failure against a specific node.
type NodeError struct {
	// Node is the address that failed.
	Node string

	// Cause is the transport error.
	Cause error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return "wukong: node " + e.Node + " failed: " + e.Cause.Error()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *NodeError) Unwrap() error {
	return e.Cause
}
