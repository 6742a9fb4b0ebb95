package session

import "time"

// Session is the record stored under session:<token>. The token itself is
// the key and is never part of the value.
type Session struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the embedded expiry is before now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
