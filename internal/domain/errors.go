package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMessageRequired  = errors.New("message is required")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
)

// APIError is any non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// NetworkError is a transport failure talking to the backend.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError is a rejected login or registration. Message is the backend's text, verbatim.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// ProviderError is a chat-completion provider failure. It is logged, never shown to end users.
type ProviderError struct {
	Status int
	Detail string
	Err    error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("provider error: %v", e.Err)
	case e.Detail != "":
		return fmt.Sprintf("provider error %d: %s", e.Status, e.Detail)
	default:
		return fmt.Sprintf("provider error %d", e.Status)
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Message extracts a human-readable message suitable for inline display.
func Message(err error) string {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "Network error, please try again"
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
