package auth

import "time"

// Session is a time-bounded proof of identity bound to one user's email.
type Session struct {
	ID        string
	Token     string
	Email     string
	ExpiresAt time.Time
}

// TTL returns the remaining lifetime of the session relative to now.
func (s Session) TTL(now time.Time) time.Duration {
	if !now.Before(s.ExpiresAt) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// ExternalIdentity is the verified subject of an external identity provider token.
type ExternalIdentity struct {
	Subject string
	Email   string
	Name    string
}
