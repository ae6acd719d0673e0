// Session HTTP handlers.
//
// This file exposes the session endpoints:
//   - POST /sessions      (create or update, with summary refresh)
//   - GET  /sessions      (list, paginated, ordered by recent activity,
//     weak-ETag support)
//   - GET  /sessions/{id} (single session with full message log)
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studykit/go-tutor-backend/internal/domain"
	"github.com/studykit/go-tutor-backend/internal/http/middleware"
	"github.com/studykit/go-tutor-backend/internal/repo"
	"github.com/studykit/go-tutor-backend/internal/services"
	"github.com/studykit/go-tutor-backend/internal/tutor"
	"github.com/studykit/go-tutor-backend/internal/utils"
)

//
// DTOs
//

// MessagePayload is one utterance in a session save request.
type MessagePayload struct {
	Role    string `json:"role"    binding:"required,oneof=user model" example:"user"`
	Content string `json:"content" binding:"required" example:"What is superposition?"`
}

// SaveSessionRequest creates a session (no id) or replaces the message log
// of an existing one (id set).
type SaveSessionRequest struct {
	ID string `json:"id,omitempty" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// Topic is required on create and ignored on update.
	Topic    string           `json:"topic,omitempty" example:"Quantum Computing"`
	Messages []MessagePayload `json:"messages" binding:"required,min=1,dive"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListSessionsResponse wraps a page of sessions and pagination information.
type ListSessionsResponse struct {
	Sessions   []domain.Session `json:"sessions"`
	Pagination Pagination       `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds the page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// SaveSession godoc
// @ID          saveSession
// @Summary     Create or update a session
// @Description Persists the full message log and refreshes the summary. Without an id a new session is created (topic required); with an id the existing session's log is replaced last-writer-wins. Very short transcripts get a placeholder summary without a model call.
// @Tags        Sessions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Client retry deduplication key"
// @Param       body  body  handlers.SaveSessionRequest  true  "Session payload"
//
// @Success     200  {object}  domain.Session "Updated session"
// @Success     201  {object}  domain.Session "Created session"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse "Session not found"
// @Failure     502  {object}  handlers.ErrorResponse "Model failure"
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /sessions [post]
func (h *Handlers) SaveSession(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}

	// A replayed Idempotency-Key answers with the session the original
	// request produced instead of creating a second one. A record without a
	// result (or whose session has since vanished) falls through and redoes
	// the work.
	if middleware.IsReplay(c) {
		if rid, found := middleware.IdempotencyResult(c); found {
			if sess, err := h.sessSvc.Get(c.Request.Context(), uid, rid); err == nil {
				status := http.StatusOK
				if st, stored := middleware.ReplayStatus(c); stored {
					status = st
				}
				ok(c, status, sess)
				return
			}
		}
	}

	var req SaveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: messages require a role (user|model) and content")
		return
	}
	if req.ID != "" {
		if _, err := uuid.Parse(req.ID); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id must be a UUID")
			return
		}
	}

	msgs := make([]domain.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, domain.Message{Role: m.Role, Content: m.Content})
	}

	sess, created, err := h.sessSvc.Save(c.Request.Context(), uid, services.SaveInput{
		ID:       req.ID,
		Topic:    req.Topic,
		Messages: msgs,
	})
	if err != nil {
		switch {
		case err == services.ErrEmptyTopic:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "topic is required when creating a session")
		case err == services.ErrEmptyMessages:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "at least one message is required")
		case err == services.ErrSessionNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "session not found")
		case tutorFailure(err):
			fail(c, http.StatusBadGateway, ErrCodeModelFailure, "summary generation failed")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeStoreFailure, err.Error())
		}
		return
	}

	middleware.SetIdempotencyResult(c, sess.ID)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ok(c, status, sess)
}

// ListSessions godoc
// @ID          listSessions
// @Summary     List sessions (paginated)
// @Description Returns a page of the caller's sessions ordered by most recent activity. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Sessions
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListSessionsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Store failure"
// @Router      /sessions [get]
func (h *Handlers) ListSessions(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort); needs direct store access, so it only
	// runs for the concrete service.
	var db *gorm.DB
	if svc, okCast := h.sessSvc.(*services.SessionService); okCast {
		if gr, okCast := svc.Repo.(services.GormSessionRepo); okCast {
			db = gr.DB
		}
	}
	if db != nil {
		count, maxTS, err := repo.SessionsStats(ctx, db, uid)
		if err == nil {
			// Nanosecond precision: two saves within the same second must
			// still produce distinct tags.
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			etag := fmt.Sprintf(`W/"sessions:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.sessSvc.List(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStoreFailure, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListSessionsResponse{
		Sessions: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetSession godoc
// @ID          getSession
// @Summary     Get one session
// @Description Returns a single session owned by the caller, including the full message log.
// @Tags        Sessions
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Session ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Session
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Session not found"
// @Failure     500  {object} handlers.ErrorResponse "Store failure"
// @Router      /sessions/{id} [get]
func (h *Handlers) GetSession(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id must be a UUID")
		return
	}

	sess, err := h.sessSvc.Get(c.Request.Context(), uid, id)
	if err != nil {
		if err == services.ErrSessionNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "session not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeStoreFailure, err.Error())
		return
	}
	ok(c, http.StatusOK, sess)
}

// tutorFailure reports whether err originated at the model boundary.
func tutorFailure(err error) bool {
	return errors.Is(err, tutor.ErrUnavailable) || errors.Is(err, tutor.ErrMalformedOutput)
}
