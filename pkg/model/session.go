package model

import "time"

// Session represents a logged-in browser session of the web admin panel.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"-"` // pricing API bearer token (not exposed via JSON)
	TokenExp  time.Time `json:"-"` // zero when the token carries no expiry
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsTokenExpired reports whether the API token has expired.
// A zero expiry is treated as not expired.
func (s *Session) IsTokenExpired() bool {
	if s.TokenExp.IsZero() {
		return false
	}
	return time.Now().After(s.TokenExp)
}

// HasToken reports whether the session still holds an API token.
// The token is cleared when the pricing API answers 401.
func (s *Session) HasToken() bool {
	return s.Token != ""
}
