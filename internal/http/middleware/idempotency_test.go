package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func idemRouter(lookup IdempotencyLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(func(c *gin.Context) { c.Set(userIDKey, "u1") })
	r.Use(IdempotencyValidator(IdempotencyOptions{}, lookup))
	r.POST("/sessions", func(c *gin.Context) {
		key, _ := GetIdempotencyKey(c)
		result, _ := IdempotencyResult(c)
		status, _ := ReplayStatus(c)
		c.JSON(http.StatusOK, gin.H{
			"key":    key,
			"replay": IsReplay(c),
			"bypass": IsRateBypass(c),
			"result": result,
			"status": status,
		})
	})
	return r
}

func TestIdempotency_NoHeaderPassesThrough(t *testing.T) {
	r := idemRouter(nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"replay":false`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestIdempotency_InvalidKeyRejected(t *testing.T) {
	r := idemRouter(nil)
	for _, key := range []string{"has space", "bad!char", strings.Repeat("x", 201)} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
		req.Header.Set(HeaderIdempotencyKey, key)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("key %q: status = %d, want 400", key, w.Code)
		}
	}
}

func TestIdempotency_ReplayMarksContext(t *testing.T) {
	var gotScope, gotKey, gotUser string
	lookup := func(_ context.Context, userID, scope, key string, _ time.Time) (string, int, bool, error) {
		gotUser, gotScope, gotKey = userID, scope, key
		return "sess-original", http.StatusCreated, true, nil
	}
	r := idemRouter(lookup)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
	req.Header.Set(HeaderIdempotencyKey, "retry-1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"replay":true`) || !strings.Contains(body, `"bypass":true`) {
		t.Fatalf("replay flags not set: %s", body)
	}
	if !strings.Contains(body, `"result":"sess-original"`) || !strings.Contains(body, `"status":201`) {
		t.Fatalf("stored outcome not exposed: %s", body)
	}
	if gotUser != "u1" || gotKey != "retry-1" {
		t.Fatalf("lookup saw user=%q key=%q", gotUser, gotKey)
	}
	if gotScope != "/sessions" {
		t.Fatalf("scope = %q, want the route path", gotScope)
	}
}

func TestIdempotency_FreshKeyNotReplay(t *testing.T) {
	lookup := func(context.Context, string, string, string, time.Time) (string, int, bool, error) {
		return "", 0, false, nil
	}
	r := idemRouter(lookup)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
	req.Header.Set(HeaderIdempotencyKey, "fresh-key")
	r.ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.Contains(body, `"key":"fresh-key"`) || !strings.Contains(body, `"replay":false`) {
		t.Fatalf("unexpected body: %s", body)
	}
}
