/*
Package authsdk provides wire types and a Go client for the stackplate API server.

# SDKClient vs Session

  - SDKClient: unauthenticated operations (register, login, password reset, health)
  - Session: operations on behalf of a logged in user

Register or log in to obtain a Session:

	client := authsdk.NewSDKClient("http://localhost:3001")

	session, me, err := client.Login(ctx, authsdk.LoginRequest{
		Username: "alice",
		Password: "p1",
	})

# Two tokens

Login and registration return a long-lived session token, which is what a
Session holds. Privileged calls need a short-lived access token instead, minted
from the session token by GET /auth/request. Session does that for you and
caches the access token until shortly before it expires:

	users, err := session.ListUsers(ctx) // mints an access token first

# Error Handling

Every non-success response is returned as *APIError. Match on the predefined
errors with errors.Is:

	_, _, err := client.Login(ctx, req)
	if errors.Is(err, authsdk.ErrWrongCredentials) {
		// bad password
	}

# Password reset

	err := client.RequestReset(ctx, "alice@example.com")
	// the key arrives by mail as part of the reset link
	err = client.ResetPassword(ctx, key, authsdk.ResetPasswordRequest{
		Email:    "alice@example.com",
		Password: "p2",
	})
*/
package authsdk
