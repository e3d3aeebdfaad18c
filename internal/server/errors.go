// Package server provides the HTTP REST API for the career portal.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/jonathan/career-portal/internal/activity"
	"github.com/jonathan/career-portal/internal/assessment"
	"github.com/jonathan/career-portal/internal/db"
)

// ErrInvalidCredentials indicates a login identifier or password did not match.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid credentials"
}

// ErrUserNotFound indicates an identifier did not resolve to a user.
type ErrUserNotFound struct {
	Identifier string
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.Identifier)
}

// ErrValidation indicates request validation failure. Message is shown to
// the client as is.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		credentials *ErrInvalidCredentials
		notFound    *ErrUserNotFound
		validation  *ErrValidation
		persistence *assessment.PersistenceError
		upstream    *assessment.UpstreamError
	)
	switch {
	case errors.As(err, &persistence), errors.As(err, &upstream):
		return http.StatusInternalServerError
	case errors.As(err, &credentials):
		return http.StatusUnauthorized
	case errors.As(err, &validation),
		errors.Is(err, assessment.ErrInvalidInput),
		errors.Is(err, activity.ErrUnknownType):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.Is(err, assessment.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage returns the text shown to clients for a 4xx error.
func clientMessage(err error) string {
	var (
		credentials *ErrInvalidCredentials
		validation  *ErrValidation
	)
	switch {
	case errors.As(err, &credentials):
		return "Invalid credentials"
	case errors.As(err, &validation):
		return validation.Message
	case HTTPStatus(err) == http.StatusNotFound:
		return "User not found"
	case errors.Is(err, db.ErrDuplicate):
		return "User already exists"
	case errors.Is(err, activity.ErrUnknownType):
		return "Unknown activityType"
	case errors.Is(err, assessment.ErrInvalidInput):
		return sentence(strings.TrimPrefix(err.Error(), assessment.ErrInvalidInput.Error()+": "))
	default:
		return sentence(err.Error())
	}
}

func sentence(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
