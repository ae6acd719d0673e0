// Package middleware contains the shared Gin middleware of the HTTP layer.
//
// This file implements RequireAuth, the gate in front of every API route.
// Token verification itself lives in internal/auth; this middleware only
// extracts the credential from the request, invokes the verifier, and turns
// a rejection into the standard 401 envelope. No handler runs for a request
// that fails here.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studykit/go-tutor-backend/internal/auth"
)

// userIDKey is the Gin context key under which the verified caller identity
// is stored. Downstream middleware and handlers read it via c.GetString.
const userIDKey = "userID"

// TokenVerifier is the narrow slice of internal/auth this middleware needs.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// RequireAuth authenticates every request with a bearer token.
//
// The token is taken from the Authorization header ("Bearer <token>",
// scheme matched case-insensitively). A missing, malformed, expired, or
// otherwise invalid token aborts the request with a 401 and the standard
// error envelope; the message distinguishes an expired token so clients
// know to refresh rather than re-authenticate. On success the verified
// user ID is stored under the "userID" context key.
func RequireAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		uid, err := v.Verify(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "token expired"
			}
			unauthorized(c, msg)
			return
		}

		c.Set(userIDKey, uid)
		c.Next()
	}
}

// bearerToken extracts the credential from an Authorization header value.
// Returns "" unless the scheme is Bearer and a non-blank token follows.
func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
