package authsdk

// ============================================================================
// Auth Types
// ============================================================================

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"pass"     example:"correct horse battery staple"`
	Email    string `json:"email"    example:"alice@example.com"`
}

// LoginRequest is the body of POST /auth/login. Username may also hold the
// account's email address.
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"pass"     example:"correct horse battery staple"`
}

// ResetRequest is the body of POST /auth/reset.
type ResetRequest struct {
	Email string `json:"email" example:"alice@example.com"`
}

// ResetPasswordRequest is the body of POST /auth/reset/{key}.
type ResetPasswordRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"pass"  example:"a brand new password"`
}

// ============================================================================
// User Types
// ============================================================================

// UserInfo is the public projection of a user. The password hash never
// leaves the server.
type UserInfo struct {
	UUID     string `json:"uuid"     example:"9f0f6f38-4a7b-4c1e-9c49-5ad1a3d6b0c2"`
	Username string `json:"username" example:"alice"`
	Email    string `json:"email"    example:"alice@example.com"`
	IsAdmin  bool   `json:"is_admin" example:"false"`
}

// DeleteUserRequest is the body of DELETE /user.
type DeleteUserRequest struct {
	UUID string `json:"uuid" example:"9f0f6f38-4a7b-4c1e-9c49-5ad1a3d6b0c2"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Service names the answering binary
	Service string `json:"service"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the user store connection status
	Database string `json:"database"`

	// ResetStore indicates the reset key store status
	ResetStore string `json:"reset_store"`
}
