// ABOUTME: Error taxonomy for backend calls
// ABOUTME: Separates auth rejections, non-2xx API errors, and transport failures

package client

import (
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// AuthError means credentials or tokens were rejected or are missing
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NetworkError is a transport-level failure: no response was received
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	return e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// newAPIError builds the uniform error for a non-2xx response.
// detail is the JSON body's "detail" field, if any.
func newAPIError(statusCode int, detail string) *APIError {
	msg := detail
	if msg == "" {
		msg = fmt.Sprintf("API Error: %d %s", statusCode, http.StatusText(statusCode))
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}

// asAuthError re-tags an API error as an authentication failure,
// keeping the backend's message
func asAuthError(err error) error {
	if apiErr, ok := err.(*APIError); ok {
		return &AuthError{Message: apiErr.Message, Err: apiErr}
	}
	return err
}

// isAuthStatus reports whether a status means the token was rejected
func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
