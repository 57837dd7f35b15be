// Package resetkeys keeps pending password reset keys. Keys are one-time:
// whoever manages to Delete a key owns the reset.
package resetkeys

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/stackplate/internal/server/domain"
)

// ErrNotFound is returned for keys that were never issued, already redeemed
// or purged.
var ErrNotFound = errors.New("resetkeys: not found")

// Store maps a reset key to the record it was issued with. All methods are
// safe for concurrent use.
type Store interface {
	// Put stores rec under key, replacing any previous record.
	Put(ctx context.Context, key string, rec domain.ResetRecord) error

	// Get returns the record for key without consuming it.
	Get(ctx context.Context, key string) (domain.ResetRecord, error)

	// Delete removes key. Of several concurrent callers exactly one gets nil,
	// the rest get ErrNotFound.
	Delete(ctx context.Context, key string) error

	// Purge drops records issued before cutoff and reports how many went.
	Purge(ctx context.Context, cutoff time.Time) (int, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
