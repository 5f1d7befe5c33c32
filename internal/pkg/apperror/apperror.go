package apperror

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Reason  string // Stable machine-readable reason (e.g., "conflict"), optional
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same status and reason.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Reason != "" && e.Reason == t.Reason && e.Code == t.Code
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewWithReason creates a new AppError carrying a machine-readable reason.
func NewWithReason(code int, reason, message string) *AppError {
	return &AppError{
		Code:    code,
		Reason:  reason,
		Message: message,
	}
}

// Wrap returns a copy of base carrying err as its cause. The copy still
// matches base under errors.Is.
func Wrap(err error, base *AppError) *AppError {
	return &AppError{
		Code:    base.Code,
		Reason:  base.Reason,
		Message: base.Message,
		Err:     err,
	}
}
