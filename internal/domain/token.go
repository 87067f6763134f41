package domain

import "time"

// RefreshToken is the server-side half of a session. Only a SHA-256 hash of
// the token is stored; deleting the row invalidates the session.
type RefreshToken struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
