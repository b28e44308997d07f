package models

import "time"

// RefreshToken is a long-lived token stored in the 'refresh_tokens' table
type RefreshToken struct {
	Token      string    `db:"token"`
	UserID     int64     `db:"user_id"`
	ExpiryDate time.Time `db:"expiry_date"`
	IsRevoked  bool      `db:"is_revoked"`
	CreatedAt  time.Time `db:"created_at"`
}

// Valid reports whether the token can still be exchanged at now
func (t *RefreshToken) Valid(now time.Time) bool {
	return t != nil && !t.IsRevoked && now.Before(t.ExpiryDate)
}
