// Package middleware contains the shared Gin middleware of the HTTP layer.
//
// This file implements idempotency support for the unsafe routes (session
// and flashcard saves). It validates the Idempotency-Key request header,
// optionally consults a lookup to detect a previously completed request,
// and annotates the context so downstream code can:
//   - read the normalized key (GetIdempotencyKey)
//   - detect replays (IsReplay) and read the stored outcome
//     (IdempotencyResult, ReplayStatus)
//   - skip rate limiting for replays (flag read by RateLimiter)
//
// Persistence stays behind the narrow IdempotencyLookup function type; the
// middleware itself never serves a cached payload. Handlers decide how a
// replay is answered: the session create returns the originally created
// resource, the flashcard merge simply re-runs because it is a no-op on
// duplicates.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients use to deduplicate
// retried saves. The value must be stable across retries of one semantic
// operation.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys stashing idempotency state; read through the accessors.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyIdemResult = "idem.result"
	ctxKeyIdemStatus = "idem.status"
	ctxKeyRateBypass = "rate.bypass"
)

// GetIdempotencyKey returns the validated key stored by
// IdempotencyValidator. Handlers should use this instead of reading the
// header themselves.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request repeats a previously completed
// operation for the same user, route, and key.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyResult returns the resource identifier associated with the
// idempotency key. On a replay it carries the stored outcome of the
// original request; on a fresh request it carries whatever the handler
// recorded via SetIdempotencyResult for persistence.
func IdempotencyResult(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemResult)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// SetIdempotencyResult records the identifier of the resource a successful
// write produced, so the idempotency record can point retries at it.
func SetIdempotencyResult(c *gin.Context, id string) {
	c.Set(ctxKeyIdemResult, id)
}

// ReplayStatus returns the HTTP status the original request answered with.
// Only set on replays.
func ReplayStatus(c *gin.Context) (int, bool) {
	v, ok := c.Get(ctxKeyIdemStatus)
	if !ok {
		return 0, false
	}
	n, _ := v.(int)
	return n, n != 0
}

// IdempotencyOptions configures header validation. TTL enforcement belongs
// in the lookup, not here.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. Defaults to a conservative
	// token pattern: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyLookup answers whether a completed, still-valid result exists
// for (userID, scope, key) at the given time, and if so which resource it
// produced and with what status. Scope is the registered route path, so the
// same key on different endpoints never collides. Errors mean the lookup
// itself failed and must not block the request.
type IdempotencyLookup func(ctx context.Context, userID, scope, key string, now time.Time) (resultID string, status int, exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present,
// stashes the key, and marks replays detected via lookup. Requests without
// the header pass through untouched; an invalid header is a 400.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_request",
				"message":    "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			uid := c.GetString(userIDKey)
			if uid != "" {
				scope := c.FullPath()
				if resultID, status, exists, _ := lookup(c.Request.Context(), uid, scope, key, time.Now().UTC()); exists {
					c.Set(ctxKeyIdemReplay, true)
					c.Set(ctxKeyRateBypass, true)
					c.Set(ctxKeyIdemResult, resultID)
					c.Set(ctxKeyIdemStatus, status)
				}
			}
		}

		c.Next()
	}
}
