// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User is the session principal: the identity established by the GitHub OAuth
// callback and held server-side for the lifetime of the session.
//
// WHY IS THE ACCESS TOKEN HERE?
// Every GitHub proxy call is made on behalf of the signed-in user, with THEIR
// OAuth token. The token is the bearer credential for the GitHub API, so it
// must never reach the browser. The `json:"-"` tag guarantees that: even when
// a handler serialises the whole User (GET /user does exactly that), the token
// is omitted from the output.
type User struct {
	ID          string `json:"id"`       // GitHub's numeric user ID, as a string (mirrors the OAuth profile)
	Username    string `json:"username"` // GitHub login, e.g. "octocat"
	Avatar      string `json:"avatar"`   // Profile picture URL
	AccessToken string `json:"-"`        // OAuth bearer token — server-side only, never serialised
}

// Session is a server-side session record: a principal plus its expiry.
// The browser only ever holds the session ID (wrapped in a signed cookie);
// everything else stays in the sessions table.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry time.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
