package domain

import "time"

// User is the persisted account record. PasswordHash never leaves the server,
// use Info for anything client facing.
type User struct {
	ID           int64  // store assigned
	UUID         string // client facing identity
	Username     string
	PasswordHash string // argon2id PHC string
	Email        string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserInfo is the public projection of a User.
type UserInfo struct {
	UUID     string
	Username string
	Email    string
	IsAdmin  bool
}

// Info projects u for clients.
func (u User) Info() UserInfo {
	return UserInfo{
		UUID:     u.UUID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
	}
}
