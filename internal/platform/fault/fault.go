package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can branch on the class of error
// instead of matching message text. The set is closed.
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindValidation    Kind = "validation_failure"
	KindStorage       Kind = "storage_failure"
	KindUpstream      Kind = "upstream_failure"
	KindConfiguration Kind = "configuration_error"
)

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a kind to err. Already-classified errors keep their
// original kind so the first classification wins.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf reports the kind of err, or "" for unclassified errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable reports whether a worker should redeliver after err.
// Missing rows, bad input, and missing configuration never heal on retry.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindValidation, KindConfiguration:
		return false
	default:
		return true
	}
}
