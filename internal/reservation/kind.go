package reservation

import "errors"

// Kind classifies submission failures by how the caller can recover.
type Kind string

const (
	KindNone          Kind = ""
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindConflict      Kind = "conflict"
	KindSystem        Kind = "system"
)

// KindOf maps err to its Kind. Unrecognized errors are system errors.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMissingField),
		errors.Is(err, ErrInvalidPriority),
		errors.Is(err, ErrInvalidTimeRange),
		errors.Is(err, ErrDurationExceeded):
		return KindValidation
	case errors.Is(err, ErrOwnerNotFound),
		errors.Is(err, ErrRoomNotAllowedForRole):
		return KindAuthorization
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindSystem
	}
}
