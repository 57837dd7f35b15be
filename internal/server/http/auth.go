package http

import (
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/stackplate/internal/server/service"
	"github.com/aussiebroadwan/stackplate/pkg/authsdk"
	"github.com/aussiebroadwan/stackplate/pkg/httpx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Creates an account. The session token is returned in the Authorization header.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.RegisterRequest	true	"username, pass, email"
//	@Success		201		{object}	authsdk.UserInfo
//	@Header			201		{string}	Authorization	"Bearer {session token}"
//	@Failure		400		{object}	authsdk.APIError	"MissingFields, InvalidEmail or BadRequest"
//	@Failure		409		{object}	authsdk.APIError	"UserAlreadyExists"
//	@Failure		500		{object}	authsdk.APIError	"ServerError"
//	@Router			/auth/register [post]
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrBadRequest.WriteError(w)
		return
	}

	user, token, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.SetBearer(w, token)
	httpx.WriteJSON(w, http.StatusCreated, toUserInfo(user))
}

// HandleLogin godoc
//
//	@Summary		Login
//	@Description	username may be the account's username or email address. The session token is returned in the Authorization header.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.LoginRequest	true	"username, pass"
//	@Success		201		{object}	authsdk.UserInfo
//	@Header			201		{string}	Authorization	"Bearer {session token}"
//	@Failure		401		{object}	authsdk.APIError	"WrongCredentials"
//	@Failure		404		{object}	authsdk.APIError	"UserDoesNotExist"
//	@Failure		429		{object}	authsdk.APIError	"TooManyRequests"
//	@Router			/auth/login [post]
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrBadRequest.WriteError(w)
		return
	}

	user, token, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.SetBearer(w, token)
	httpx.WriteJSON(w, http.StatusCreated, toUserInfo(user))
}

// HandleRequest godoc
//
//	@Summary		Request an access token
//	@Description	Exchanges a session token for a short-lived access token, returned in the Authorization header.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		201
//	@Header			201	{string}	Authorization	"Bearer {access token}"
//	@Failure		403	{object}	authsdk.APIError	"InvalidToken or AccessDenied"
//	@Failure		500	{object}	authsdk.APIError	"TokenCreation"
//	@Router			/auth/request [get]
func (h *AuthHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	token, err := h.AuthService.RequestAccess(r.Context(), r.Header.Get(httpx.UserUUIDHeader))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.SetBearer(w, token)
	w.WriteHeader(http.StatusCreated)
}

// HandleTest godoc
//
//	@Summary		Check an access token
//	@Description	Diagnostic endpoint, answers in plain text when the access token is valid.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		plain
//	@Success		200	{string}	string
//	@Failure		403	{object}	authsdk.APIError	"InvalidToken"
//	@Router			/auth/test [get]
func (h *AuthHandler) HandleTest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "access token valid for %s", httpx.UserIDFromContext(r.Context()))
}

// HandleRequestReset godoc
//
//	@Summary		Request a password reset
//	@Description	Mails a one-time reset link to the account's address.
//	@Tags			Reset
//	@Accept			json
//	@Param			body	body	authsdk.ResetRequest	true	"email"
//	@Success		201
//	@Failure		400	{object}	authsdk.APIError	"InvalidEmail"
//	@Failure		404	{object}	authsdk.APIError	"UserDoesNotExist"
//	@Failure		500	{object}	authsdk.APIError	"ServerError"
//	@Router			/auth/reset [post]
func (h *AuthHandler) HandleRequestReset(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrBadRequest.WriteError(w)
		return
	}

	if err := h.AuthService.RequestReset(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// HandleResetPassword godoc
//
//	@Summary		Reset a password
//	@Description	Redeems a reset key. The key is single use and valid for the configured window.
//	@Tags			Reset
//	@Accept			json
//	@Param			key		path	string							true	"reset key from the mailed link"
//	@Param			body	body	authsdk.ResetPasswordRequest	true	"email, pass"
//	@Success		202
//	@Failure		400	{object}	authsdk.APIError	"ResetLinkInvalid or MissingFields"
//	@Failure		404	{object}	authsdk.APIError	"UserDoesNotExist"
//	@Router			/auth/reset/{key} [post]
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrBadRequest.WriteError(w)
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), r.PathValue("key"), req.Email, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
