package core

// Error codes for domain errors.
const (
	ErrCodeUsage          = "usage_error"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeNotFound       = "not_found"
	ErrCodeUnknownCommand = "unknown_command"
	ErrCodeStorage        = "storage_error"
)

// CoreError wraps a code and human-readable message. It is delivered to the
// issuing session only, never broadcast.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

func usageError(msg string) *CoreError {
	return coreError(ErrCodeUsage, msg)
}

func storageError(msg string) *CoreError {
	return coreError(ErrCodeStorage, msg)
}
