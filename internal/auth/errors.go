package auth

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/smartshuttle/shuttle/internal/storage"
)

// Public messages shown on the forms and returned by the JSON API.
const (
	MessageNameRequired       = "Name is required"
	MessageEmailRequired      = "Email is required"
	MessageEmailInvalid       = "Invalid email address"
	MessagePasswordRequired   = "Password is required"
	MessagePasswordTooShort   = "Password must be at least 6 characters"
	MessageEmailTaken         = "A user with this email already exists"
	MessageInvalidCredentials = "Invalid email or password"
)

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or a
	// wrong password. Both cases are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden is returned when an authenticated user lacks the role.
	ErrForbidden = errors.New("forbidden")
)

// FieldErrors maps form fields to a validation message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// First returns one message, preferring the fields in form order.
func (fe FieldErrors) First() string {
	for _, k := range []string{"name", "email", "password"} {
		if msg, ok := fe[k]; ok {
			return msg
		}
	}
	for _, msg := range fe {
		return msg
	}
	return ""
}

// StatusFor maps an auth or storage error to an HTTP status and the
// message safe to show the user.
func StatusFor(err error) (int, string) {
	var fe FieldErrors
	switch {
	case errors.As(err, &fe):
		return http.StatusBadRequest, fe.First()
	case errors.Is(err, storage.ErrEmailTaken):
		return http.StatusConflict, MessageEmailTaken
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, MessageInvalidCredentials
	case errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized, "Session expired"
	case errors.Is(err, ErrTokenMissing), errors.Is(err, ErrTokenInvalid):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}
