package domain

import "time"

// DefaultResetWindow is how long a reset key stays redeemable.
const DefaultResetWindow = 24 * time.Hour

// ResetRecord binds a one-time reset key to the email it was issued for.
type ResetRecord struct {
	Email    string
	IssuedAt time.Time
}

// Expired reports whether the record is older than window at now. A record
// exactly window old is still valid.
func (r ResetRecord) Expired(now time.Time, window time.Duration) bool {
	return now.Sub(r.IssuedAt) > window
}
