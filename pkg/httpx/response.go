package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error types shared by the guard middleware and the API handlers.
const (
	ErrTypeWrongCredentials  = "WrongCredentials"
	ErrTypeUserDoesNotExist  = "UserDoesNotExist"
	ErrTypeUserAlreadyExists = "UserAlreadyExists"
	ErrTypeMissingFields     = "MissingFields"
	ErrTypeBadRequest        = "BadRequest"
	ErrTypeInvalidEmail      = "InvalidEmail"
	ErrTypeInvalidToken      = "InvalidToken"
	ErrTypeAccessDenied      = "AccessDenied"
	ErrTypeTokenCreation     = "TokenCreation"
	ErrTypeResetLinkInvalid  = "ResetLinkInvalid"
	ErrTypeTooManyRequests   = "TooManyRequests"
	ErrTypeServerError       = "ServerError"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrorBody is the uniform error document.
type ErrorBody struct {
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error_type": ..., "message": ...} with code.
func WriteError(w http.ResponseWriter, code int, errType, msg string) {
	WriteJSON(w, code, ErrorBody{ErrorType: errType, Message: msg})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// ErrBadBody is returned by DecodeJSON for anything that isn't a single JSON
// document within MaxBodyBytes.
var ErrBadBody = errors.New("malformed request body")

// DecodeJSON reads one JSON document from the request body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrBadBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", ErrBadBody)
	}
	return nil
}
