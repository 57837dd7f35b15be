package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/stackplate/pkg/httpx"
)

// APIError is the uniform error document returned by every endpoint. It is
// used by the server to write responses and by the client to report them.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Type is the machine readable error kind, e.g. "WrongCredentials"
	Type string `json:"error_type"`

	// Message is a human readable description, never internal detail
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Type, e.StatusCode, e.Message)
}

// Is matches on Type so callers can use errors.Is(err, authsdk.ErrWrongCredentials).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Type == e.Type
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Type, e.Message)
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrWrongCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Type:       httpx.ErrTypeWrongCredentials,
		Message:    "wrong username or password",
	}

	ErrUserDoesNotExist = &APIError{
		StatusCode: http.StatusNotFound,
		Type:       httpx.ErrTypeUserDoesNotExist,
		Message:    "user does not exist",
	}

	ErrUserAlreadyExists = &APIError{
		StatusCode: http.StatusConflict,
		Type:       httpx.ErrTypeUserAlreadyExists,
		Message:    "a user with that username or email already exists",
	}

	ErrMissingFields = &APIError{
		StatusCode: http.StatusBadRequest,
		Type:       httpx.ErrTypeMissingFields,
		Message:    "required fields are missing",
	}

	ErrBadRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Type:       httpx.ErrTypeBadRequest,
		Message:    "malformed request",
	}

	ErrInvalidUsername = &APIError{
		StatusCode: http.StatusBadRequest,
		Type:       httpx.ErrTypeBadRequest,
		Message:    "username must not contain @",
	}

	ErrInvalidEmail = &APIError{
		StatusCode: http.StatusBadRequest,
		Type:       httpx.ErrTypeInvalidEmail,
		Message:    "invalid email address",
	}

	ErrInvalidToken = &APIError{
		StatusCode: http.StatusForbidden,
		Type:       httpx.ErrTypeInvalidToken,
		Message:    "invalid token",
	}

	ErrAccessDenied = &APIError{
		StatusCode: http.StatusForbidden,
		Type:       httpx.ErrTypeAccessDenied,
		Message:    "access denied",
	}

	ErrTokenCreation = &APIError{
		StatusCode: http.StatusInternalServerError,
		Type:       httpx.ErrTypeTokenCreation,
		Message:    "failed to create token",
	}

	ErrResetLinkInvalid = &APIError{
		StatusCode: http.StatusBadRequest,
		Type:       httpx.ErrTypeResetLinkInvalid,
		Message:    "reset link is invalid or has expired",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Type:       httpx.ErrTypeServerError,
		Message:    "internal server error",
	}
)

// parseErrorResponse turns a non-success response into an *APIError. Bodies
// that aren't an error document still produce one, typed from the status.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Type == "" {
		apiErr.Type = strings.ReplaceAll(http.StatusText(resp.StatusCode), " ", "")
		apiErr.Message = strings.TrimSpace(string(body))
	}
	apiErr.StatusCode = resp.StatusCode
	return apiErr
}
