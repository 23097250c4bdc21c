package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the client-side failure taxonomy.
var (
	// ErrUnauthorized means the session is invalid or expired. It is recovered
	// by clearing the session and returning to the login screen, never shown
	// as an inline error.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNetwork means the transport failed and no HTTP response was received.
	// The operation is retryable by the user re-submitting.
	ErrNetwork = errors.New("network error")

	// ErrAPI means the gateway rejected the request with a non-2xx status.
	ErrAPI = errors.New("api error")

	// ErrValidation means client-side input rejection. It is surfaced next to
	// the offending field and never sent to the gateway.
	ErrValidation = errors.New("validation error")

	// ErrNoSession means an operation required an authenticated session and
	// none was present.
	ErrNoSession = errors.New("no active session")
)

// AppError represents a structured client error with an optional gateway
// status code.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Unauthorized creates an error for a 401/403 gateway response.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Network wraps a transport failure where no HTTP response arrived.
func Network(err error) *AppError {
	return &AppError{
		Code:    "NETWORK_ERROR",
		Message: "could not reach the server, check your connection",
		Err:     fmt.Errorf("%w: %w", ErrNetwork, err),
	}
}

// API creates an error for any other non-2xx gateway response. The message is
// the server-provided one when present, else a generic fallback.
func API(status int, message string) *AppError {
	if message == "" {
		message = "something went wrong, please try again"
	}
	return &AppError{
		Code:    "API_ERROR",
		Message: message,
		Status:  status,
		Err:     ErrAPI,
	}
}

// Validation creates a client-side input rejection error.
func Validation(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Err:     ErrValidation,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// IsUnauthorized reports whether err is a session-invalid failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsValidation reports whether err is a client-side input rejection.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// UserMessage derives the text shown to the user for a failed operation:
// the structured message when one exists, else a generic fallback.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}

	switch {
	case errors.Is(err, ErrNetwork):
		return "could not reach the server, check your connection"
	case errors.Is(err, ErrUnauthorized):
		return "your session has expired, please sign in again"
	default:
		return "something went wrong, please try again"
	}
}
