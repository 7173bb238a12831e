// Package auth provides the GitHub OAuth flow, the session cookie, and the
// middleware that gates everything behind "is this request authenticated".
//
// SESSION DESIGN — COOKIE + SERVER-SIDE RECORD:
// The browser holds ONE HttpOnly cookie containing a signed JWT whose only
// payload is a session ID. The principal itself — including the GitHub
// access token — lives in a server-side session record keyed by that ID.
//
// Why both mechanisms instead of a pure stateless JWT?
//  - The access token must NEVER leave the server. A stateless JWT would
//    have to carry it (signed but readable by anyone who gets the cookie).
//  - Logout must actually kill the session. Deleting the server-side record
//    invalidates the cookie immediately; a stateless JWT stays valid until
//    it expires no matter what the server does.
// The JWT wrapper still buys us tamper-evidence: a forged or bit-flipped
// cookie fails signature validation before we ever touch the database.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionDuration is how long a login lasts. Matches the 24h session
// lifetime of the original deployment.
const SessionDuration = 24 * time.Hour

// CookieName is the session cookie's name.
const CookieName = "session"

// TokenService signs and validates the session cookie's JWT envelope.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: SESSION_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The "sub" (Subject) claim carries the session
// ID — nothing else. All real state is server-side.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs the cookie value for the given session ID.
// Expiry matches the server-side record so the cookie and the session die
// together.
func (s *TokenService) Generate(sessionID string, expiresAt time.Time) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "pr-reviewer",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a cookie value, returning the session ID.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired
//   - Issuer matches "pr-reviewer" (rejects tokens minted by other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("pr-reviewer"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: session token expired")
		}
		return "", fmt.Errorf("auth: invalid session token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid session token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: session token has no subject")
	}

	return c.Subject, nil
}
