package service

import "errors"

// Kind classifies a login or logout failure. Kinds are errors themselves so
// callers can match them with errors.Is.
type Kind string

const (
	NotFound     Kind = "NotFound"
	Forbidden    Kind = "Forbidden"
	Inactive     Kind = "Inactive"
	InvalidToken Kind = "InvalidToken"
	TokenExpired Kind = "TokenExpired"
	Unexpected   Kind = "Unexpected"
)

func (k Kind) Error() string {
	return string(k)
}

// Error is a classified failure with a message safe to show to the caller
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error against its Kind
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err. Unclassified errors are Unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return Unexpected
}

// MessageOf returns the caller-facing message of err
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Something went wrong"
}
