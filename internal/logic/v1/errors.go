// Package v1 provides the authentication rules of the gate for API version 1:
// credential verification, the per-request gate decision and the login flow.
//
// Error Handling:
// This package defines sentinel errors that represent authentication failures.
// They are wrapped with context using fmt.Errorf("%w") when returned.
//
// Example Usage:
//
//	if _, ok := store.Lookup(username); !ok {
//	    return fmt.Errorf("verify user %q: %w", username, ErrUserNotFound)
//	}
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrInvalidInput):
//	    c.JSON(http.StatusBadRequest, gin.H{"error": logicv1.UserMessage(err)})
//	case errors.Is(err, logicv1.ErrAuthenticationFailed):
//	    c.JSON(http.StatusUnauthorized, gin.H{"error": logicv1.UserMessage(err)})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": logicv1.UserMessage(err)})
//	}
//
// ErrUserNotFound and ErrInvalidCredentials never reach a user on their own:
// the login flow folds both into ErrAuthenticationFailed so the response
// cannot be used to enumerate usernames.
package v1

import (
	"errors"
)

// Sentinel errors for authentication operations.
var (
	// ErrInvalidInput indicates a login form was submitted with an empty field.
	// HTTP Status: 400 Bad Request
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthenticationFailed is the only credential failure exposed to users.
	// HTTP Status: 401 Unauthorized
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrUserNotFound indicates the username is not in the credential table.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials indicates the password does not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMalformedHeader indicates an Authorization header that is not valid Basic credentials.
	ErrMalformedHeader = errors.New("malformed basic authorization header")

	// ErrSessionNotFound indicates the session cookie names no live session.
	// Expired sessions are deleted on lookup, so they end up here too.
	// Never shown to users: it results in a redirect to the login page.
	ErrSessionNotFound = errors.New("session not found")
)

// User-visible messages. They are plain strings, not codes.
const (
	MessageInvalidInput  = "enter both fields"
	MessageAuthFailed    = "invalid username or password"
	MessageInternalError = "something went wrong, please try again"
)

// UserMessage maps an error from this package to the text shown on the login form.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return MessageInvalidInput
	case errors.Is(err, ErrAuthenticationFailed),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrMalformedHeader):
		return MessageAuthFailed
	default:
		return MessageInternalError
	}
}
