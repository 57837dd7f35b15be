package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/stackplate/internal/server/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this and expose sub-repositories to keep concerns tidy.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Close releases the connection pool.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// CreateUser inserts u and returns it with ID and timestamps filled in.
	// Duplicate uuid, username or email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// GetUserByUUID is used by the token exchange and the user endpoints.
	GetUserByUUID(ctx context.Context, uuid string) (domain.User, error)

	// GetUserByUsername is an exact match, usernames are stored as given.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail is used by the reset flow.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns every user ordered by ID.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, uuid, newHash string) error

	// DeleteUser removes the user, ErrNotFound if there was none.
	DeleteUser(ctx context.Context, uuid string) error
}
