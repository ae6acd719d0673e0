// Package handlers provides the HTTP handler implementations of the public
// API.
//
// This file defines the response utilities shared by every endpoint: the
// structured error envelope and small helpers for the common success
// shapes. Uniformity is the point; clients branch on `code`, humans read
// `message`, and `request_id` ties the response to the server logs.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "session not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studykit/go-tutor-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
// Referenced by the Swagger annotations throughout this package.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"session not found"`
}

// fail aborts the request with the structured error envelope. Server-side
// failures (>= 500) are additionally logged through the request-scoped
// logger so they carry the correlation ID.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	})
}

// Fail is the exported variant of fail, used by router-level handlers
// (404/405) that live outside this package's endpoints.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a JSON success response with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
