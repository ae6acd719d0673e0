// Package auth implements verification of the opaque identity tokens that
// accompany every API request. Tokens are HMAC-SHA256 JWTs minted by the
// identity service; this package only verifies, it never issues.
//
// The verifier is the single authentication gate for the whole API: it is
// called once per request by the HTTP middleware, is stateless, and caches
// nothing; every call re-verifies the token. Failures are reported as
// typed errors so callers can decide how a failed verification maps onto
// their operation; no verifier error is ever fatal to the process.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure classes. Callers discriminate with errors.Is.
var (
	// ErrEmptyToken is returned for an empty or whitespace-only token,
	// before any cryptographic work happens.
	ErrEmptyToken = errors.New("auth: empty token")

	// ErrExpiredToken is returned when the token's validity window has
	// passed (beyond the configured clock skew).
	ErrExpiredToken = errors.New("auth: token expired")

	// ErrInvalidToken covers every other failure: malformed token, wrong
	// signing method, bad signature, missing subject.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Verifier validates identity tokens against a shared HMAC secret.
// It is safe for concurrent use.
type Verifier struct {
	signingKey []byte
	clockSkew  time.Duration
	timeFunc   func() time.Time // injectable for tests
}

// NewVerifier constructs a Verifier. The secret must be at least 32 bytes;
// shorter keys make HS256 brute-forceable.
func NewVerifier(secret string) (*Verifier, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("auth: jwt secret must be at least 32 bytes")
	}
	return &Verifier{
		signingKey: []byte(secret),
		clockSkew:  2 * time.Minute, // tolerate minor drift between issuer and us
		timeFunc:   time.Now,
	}, nil
}

// Verify checks token and returns the stable user identifier it was issued
// for (the subject claim).
//
// An empty or whitespace-only token fails fast with ErrEmptyToken before
// any parsing work. Expired tokens yield ErrExpiredToken; everything else
// yields ErrInvalidToken.
func (v *Verifier) Verify(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrEmptyToken
	}

	now := v.timeFunc()
	parsed, err := jwt.Parse(
		token,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return v.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
