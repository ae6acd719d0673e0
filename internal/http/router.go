// Package httpapi wires the HTTP transport (Gin) to the application
// services, middleware, and route handlers. It centralizes the
// cross-cutting concerns: tracing, correlation IDs, logging with
// redaction, panic recovery, metrics, compression, authentication,
// idempotency, rate limiting, CORS, and security headers.
//
// Middleware ordering is deliberate: observability first, then the access
// log, then recovery, then the traffic-shaping layers. Authentication runs
// on the API group only, so /health, /metrics, and the Swagger UI stay
// reachable without a token, and the idempotency and rate-limit layers run
// after it so both can key on the verified user.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/studykit/go-tutor-backend/internal/config"
	"github.com/studykit/go-tutor-backend/internal/http/handlers"
	"github.com/studykit/go-tutor-backend/internal/http/middleware"
	"github.com/studykit/go-tutor-backend/internal/repo"
	"github.com/studykit/go-tutor-backend/internal/services"
	"github.com/studykit/go-tutor-backend/internal/tutor"
)

// RegisterRoutes attaches all middleware and endpoints to the Gin engine.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, verifier middleware.TokenVerifier, tut tutor.Service, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access log with redaction; transcripts carry PII
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 4) Panic recovery to JSON 500
	r.Use(middleware.Recovery())

	// 5) Body size cap (1 MiB covers the largest session logs comfortably)
	r.Use(limitBody(1 << 20))

	// 6) Response compression; message logs compress well
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) CORS
	r.Use(corsLayer(cfg.CORS.AllowedOrigins))

	// 9) Security headers (HSTS only when enabled and the request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (off by default outside dev)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/tutor
	fcSvc := services.NewFlashcardService(db)
	sessSvc := services.NewSessionService(services.GormSessionRepo{DB: db}, tut, cfg.Summary.MinChars)
	h := handlers.New(fcSvc, sessSvc, tut)

	// Public API: token-gated, idempotency-aware, rate-limited
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.RequireAuth(verifier))
	api.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, userID, scope, key string, now time.Time) (string, int, bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
			if err != nil || rec == nil {
				return "", 0, false, nil
			}
			return rec.ResultID, rec.Status, true, nil
		},
	))
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	api.Use(rl.Handler())
	{
		// Flashcards
		api.POST("/flashcards", recordIdempotency(db, cfg.IdempotencyTTL), h.SaveFlashcards)
		api.GET("/flashcards", h.GetFlashcards)

		// Sessions
		api.POST("/sessions", recordIdempotency(db, cfg.IdempotencyTTL), h.SaveSession)
		api.GET("/sessions", h.ListSessions)
		api.GET("/sessions/:id", h.GetSession)

		// Tutor
		api.POST("/tutor/reply", h.TutorReply)
		api.POST("/tutor/flashcards", h.ExtractFlashcards)
	}
}

// corsLayer builds the CORS middleware. With no allowlist configured the
// API answers any origin, which suits local development; credentials must
// then stay disabled.
func corsLayer(origins []string) gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		base.AllowAllOrigins = true
	} else {
		base.AllowOrigins = origins
	}
	return cors.New(base)
}

// recordIdempotency persists the outcome of a successful write so a retry
// carrying the same Idempotency-Key is detected as a replay and answered
// with the original resource. Best effort: a failure to record only means
// the retry does the work again.
func recordIdempotency(db *gorm.DB, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		key, present := middleware.GetIdempotencyKey(c)
		if !present || middleware.IsReplay(c) {
			return
		}
		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		uid := c.GetString("userID")
		if uid == "" {
			return
		}
		resultID, _ := middleware.IdempotencyResult(c)
		_, _ = repo.CreateIdempotency(c.Request.Context(), db, uid, c.FullPath(), key, resultID, status, ttl)
	}
}

// limitBody caps the request body size using http.MaxBytesReader; reads
// beyond the cap error downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
