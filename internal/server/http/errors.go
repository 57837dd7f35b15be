package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/stackplate/internal/server/service"
	"github.com/aussiebroadwan/stackplate/pkg/authsdk"
	"github.com/aussiebroadwan/stackplate/pkg/slogx"
)

// apiError maps a service error onto its wire form. Anything unrecognised is
// a ServerError.
func apiError(err error) *authsdk.APIError {
	switch {
	case errors.Is(err, service.ErrWrongCredentials):
		return authsdk.ErrWrongCredentials
	case errors.Is(err, service.ErrUserDoesNotExist):
		return authsdk.ErrUserDoesNotExist
	case errors.Is(err, service.ErrUserAlreadyExists):
		return authsdk.ErrUserAlreadyExists
	case errors.Is(err, service.ErrMissingFields):
		return authsdk.ErrMissingFields
	case errors.Is(err, service.ErrBadRequest):
		return authsdk.ErrBadRequest
	case errors.Is(err, service.ErrInvalidEmail):
		return authsdk.ErrInvalidEmail
	case errors.Is(err, service.ErrInvalidUsername):
		return authsdk.ErrInvalidUsername
	case errors.Is(err, service.ErrInvalidToken):
		return authsdk.ErrInvalidToken
	case errors.Is(err, service.ErrAccessDenied):
		return authsdk.ErrAccessDenied
	case errors.Is(err, service.ErrTokenCreation):
		return authsdk.ErrTokenCreation
	case errors.Is(err, service.ErrResetLinkInvalid):
		return authsdk.ErrResetLinkInvalid
	default:
		return authsdk.ErrServerError
	}
}

// writeError logs server side failures with their cause and writes the
// sanitized error document.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apiError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed",
			slog.String("error_type", apiErr.Type),
			slog.Any("error", err),
		)
	}
	apiErr.WriteError(w)
}
