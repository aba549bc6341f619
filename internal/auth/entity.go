// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// lockRecord is the JSON shape stored under login:lock:<email>. The
// remaining time is always derived from LockedAt at check time; only
// the start and the duration are persisted.
type lockRecord struct {
	LockedAt int64 `json:"locked_at"`
	Duration int64 `json:"duration"`
}

// ResetCredential is the reset-token slice of a user row: the hashed
// one-time token and its expiry, cleared exactly once on whichever
// path consumes the token first.
type ResetCredential struct {
	UserID    string     `db:"id"`
	Email     string     `db:"email"`
	ExpiresAt *time.Time `db:"reset_token_expires"`
}

func (c *ResetCredential) Expired(now time.Time) bool {
	return c.ExpiresAt == nil || now.After(*c.ExpiresAt)
}
