package errors

import "fmt"

// ErrorCode represents a diffclip error code.
type ErrorCode string

const (
	ErrConfigInvalid       ErrorCode = "CONFIG_INVALID"       // 400
	ErrSelectorNotFound    ErrorCode = "SELECTOR_NOT_FOUND"   // 404
	ErrSizeExceeded        ErrorCode = "SIZE_EXCEEDED"        // 413
	ErrDecodeFailed        ErrorCode = "DECODE_FAILED"        // 502
	ErrRendererUnavailable ErrorCode = "RENDERER_UNAVAILABLE" // 503
	ErrInternal            ErrorCode = "INTERNAL"             // 500
)

// ClipError represents a structured error with code, status, and details.
type ClipError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *ClipError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewConfigInvalid creates a 400 error for invalid capture configuration.
// No capture is attempted once this is raised.
func NewConfigInvalid(msg string) *ClipError {
	return &ClipError{
		Code:    ErrConfigInvalid,
		Status:  400,
		Message: msg,
	}
}

// NewSelectorNotFound creates a 404 error for a selector with zero visible
// matches. Raised before any frame is captured.
func NewSelectorNotFound(selector string) *ClipError {
	return &ClipError{
		Code:    ErrSelectorNotFound,
		Status:  404,
		Message: fmt.Sprintf("selector matched no visible elements: %s", selector),
		Details: map[string]any{"selector": selector},
	}
}

// NewSizeExceeded creates a 413 error for an encoded clip over the byte limit.
// Measured size is reported in decimal MB to one decimal place; the limit is
// reported as a whole number of MiB.
func NewSizeExceeded(measured, limit int) *ClipError {
	return &ClipError{
		Code:    ErrSizeExceeded,
		Status:  413,
		Message: fmt.Sprintf("encoded clip is %.1f MB which exceeds the %d MB limit", float64(measured)/1e6, limit/(1024*1024)),
		Details: map[string]any{"measured_bytes": measured, "limit_bytes": limit},
	}
}

// NewDecodeFailed creates a 502 error for a frame that failed to decode.
// Aborts the in-progress capture; no partial clip is returned.
func NewDecodeFailed(frame int, err error) *ClipError {
	return &ClipError{
		Code:    ErrDecodeFailed,
		Status:  502,
		Message: fmt.Sprintf("failed to decode frame %d: %v", frame, err),
		Details: map[string]any{"frame": frame},
	}
}

// NewRendererUnavailable creates a 503 error for a renderer that cannot be
// reached. Renderer lifecycle belongs to the caller; this is not retried.
func NewRendererUnavailable(err error) *ClipError {
	return &ClipError{
		Code:    ErrRendererUnavailable,
		Status:  503,
		Message: fmt.Sprintf("renderer unavailable: %v", err),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *ClipError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ClipError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a ClipError with the given code.
func Is(err error, code ErrorCode) bool {
	if cErr, ok := err.(*ClipError); ok {
		return cErr.Code == code
	}
	return false
}
