package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the stackplate API server.
// It provides access to unauthenticated operations and creates Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new API client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates an account and returns a Session holding its session token.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*Session, *UserInfo, error) {
	return c.authenticate(ctx, "/auth/register", req)
}

// Login exchanges credentials for a Session.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*Session, *UserInfo, error) {
	return c.authenticate(ctx, "/auth/login", req)
}

func (c *SDKClient) authenticate(ctx context.Context, path string, body any) (*Session, *UserInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, path, body, "")
	if err != nil {
		return nil, nil, err
	}

	// Grab the header before decodeJSON closes the body
	token, tokenErr := bearerFrom(resp)

	var info UserInfo
	if err := decodeJSON(resp, &info, http.StatusCreated); err != nil {
		return nil, nil, err
	}
	if tokenErr != nil {
		return nil, nil, tokenErr
	}

	return c.NewSession(token), &info, nil
}

// RequestReset asks the server to mail a password reset link to email.
func (c *SDKClient) RequestReset(ctx context.Context, email string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/reset", ResetRequest{Email: email}, "")
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusCreated)
}

// ResetPassword redeems a reset key for a new password.
func (c *SDKClient) ResetPassword(ctx context.Context, key string, req ResetPasswordRequest) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/reset/"+url.PathEscape(key), req, "")
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusAccepted)
}
