package models

import "time"

// RefreshToken is the persisted half of a refresh credential. TokenIdentifier
// is embedded in the signed refresh JWT; at most one row exists per UserID.
type RefreshToken struct {
	ID              int64
	TokenIdentifier string
	UserID          string
	ExpiresAt       time.Time
	CreatedAt       time.Time
}

// ExpiredAt reports whether the row is past its expiry at now.
func (t *RefreshToken) ExpiredAt(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
