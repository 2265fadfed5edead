package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies application errors so the HTTP layer can map them to
// status codes in one place instead of per handler.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindUpstreamFailure
	KindPersistenceFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "INVALID_ARGUMENT"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUpstreamFailure:
		return "UPSTREAM_FAILURE"
	case KindPersistenceFailure:
		return "PERSISTENCE_FAILURE"
	default:
		return "UNKNOWN"
	}
}

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func InvalidArgument(message string) *AppError {
	return New(KindInvalidArgument, message)
}

func Unauthenticated(message string) *AppError {
	return New(KindUnauthenticated, message)
}

func Forbidden(message string) *AppError {
	return New(KindForbidden, message)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message)
}

func Upstream(message string, err error) *AppError {
	return Wrap(KindUpstreamFailure, message, err)
}

func Persistence(message string, err error) *AppError {
	return Wrap(KindPersistenceFailure, message, err)
}

// KindOf extracts the Kind from any error in the chain, KindUnknown if none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
