package http

import (
	"net/http"

	"github.com/aussiebroadwan/stackplate/internal/server/domain"
	"github.com/aussiebroadwan/stackplate/internal/server/service"
	"github.com/aussiebroadwan/stackplate/pkg/authsdk"
	"github.com/aussiebroadwan/stackplate/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
}

func toUserInfo(u domain.User) authsdk.UserInfo {
	info := u.Info()
	return authsdk.UserInfo{
		UUID:     info.UUID,
		Username: info.Username,
		Email:    info.Email,
		IsAdmin:  info.IsAdmin,
	}
}

// HandleInfo godoc
//
//	@Summary		Get my user information
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserInfo
//	@Failure		403	{object}	authsdk.APIError	"InvalidToken"
//	@Failure		404	{object}	authsdk.APIError	"UserDoesNotExist"
//	@Router			/user/info [get]
func (h *UsersHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	// Set by the guard from the verified session token
	userUUID := r.Header.Get(httpx.UserUUIDHeader)
	if userUUID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	user, err := h.UserService.GetUser(r.Context(), userUUID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserInfo(user))
}

// HandleList godoc
//
//	@Summary		List users
//	@Description	Requires an access token minted for an admin account.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		authsdk.UserInfo
//	@Failure		403	{object}	authsdk.APIError	"InvalidToken or AccessDenied"
//	@Router			/user/all [get]
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]authsdk.UserInfo, 0, len(users))
	for _, u := range users {
		out = append(out, toUserInfo(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleDelete godoc
//
//	@Summary		Delete a user
//	@Description	Requires an access token minted for an admin account.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Param			body	body	authsdk.DeleteUserRequest	true	"uuid"
//	@Success		200
//	@Failure		403	{object}	authsdk.APIError	"InvalidToken or AccessDenied"
//	@Failure		404	{object}	authsdk.APIError	"UserDoesNotExist"
//	@Router			/user [delete]
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req authsdk.DeleteUserRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrBadRequest.WriteError(w)
		return
	}

	if err := h.UserService.DeleteUser(r.Context(), req.UUID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
