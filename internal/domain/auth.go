package domain

import "time"

// Identity is the set of claims a session token asserts about its holder.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

// IssuedToken is a signed session token with its expiry.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}
