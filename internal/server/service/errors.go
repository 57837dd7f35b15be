package service

import "errors"

// Every error a service hands to the HTTP layer is either one of these or
// treated as a server error.
var (
	ErrWrongCredentials  = errors.New("wrong credentials")
	ErrUserDoesNotExist  = errors.New("user does not exist")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrMissingFields     = errors.New("missing fields")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrInvalidUsername   = errors.New("invalid username")
	ErrInvalidToken      = errors.New("invalid token")
	ErrAccessDenied      = errors.New("access denied")
	ErrTokenCreation     = errors.New("token creation failed")
	ErrResetLinkInvalid  = errors.New("reset link invalid")
	ErrBadRequest        = errors.New("bad request")
)
