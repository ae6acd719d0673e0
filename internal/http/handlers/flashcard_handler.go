// Flashcard HTTP handlers.
//
// This file exposes the deck endpoints:
//   - POST /flashcards  (dedup-merge save into a topic deck)
//   - GET  /flashcards  (all decks of the user, keyed by topic)
//
// Handlers are transport-thin: they validate input, call the service, and
// translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studykit/go-tutor-backend/internal/domain"
	"github.com/studykit/go-tutor-backend/internal/http/middleware"
	"github.com/studykit/go-tutor-backend/internal/services"
	"github.com/studykit/go-tutor-backend/internal/tutor"
)

//
// Service contracts (context-aware)
//

// FlashcardService defines the deck operations consumed by HTTP handlers.
// Implementations must be safe for concurrent use and honor the context.
type FlashcardService interface {
	// Save merges cards into the user's deck for topic; returns how many
	// were actually added.
	Save(ctx context.Context, userID, topic string, cards []domain.Flashcard) (int, error)
	// GetAll returns every deck of the user keyed by topic.
	GetAll(ctx context.Context, userID string) (map[string][]domain.Flashcard, error)
}

// SessionService defines the session operations consumed by HTTP handlers.
type SessionService interface {
	Save(ctx context.Context, userID string, in services.SaveInput) (*domain.Session, bool, error)
	List(ctx context.Context, userID string, page, pageSize int) ([]domain.Session, int64, error)
	Get(ctx context.Context, userID, id string) (*domain.Session, error)
	// RecordFlashcards bumps the informational per-session card counter.
	RecordFlashcards(ctx context.Context, userID, sessionID string, n int) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for flashcards, sessions, and tutoring.
type Handlers struct {
	fcSvc   FlashcardService
	sessSvc SessionService
	tut     tutor.Service
}

// New constructs a Handlers bound to the given services.
func New(fcSvc FlashcardService, sessSvc SessionService, tut tutor.Service) *Handlers {
	return &Handlers{fcSvc: fcSvc, sessSvc: sessSvc, tut: tut}
}

// userID returns the authenticated user set by middleware.RequireAuth. An
// empty result means the request is unauthenticated; the verified context
// key is the only accepted identity source.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// requireUser extracts the caller identity or fails the request with 401.
func requireUser(c *gin.Context) (string, bool) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing caller identity")
		return "", false
	}
	return uid, true
}

//
// DTOs
//

// FlashcardPayload is one question/answer pair in a request body.
type FlashcardPayload struct {
	Question string `json:"question" binding:"required" example:"What is a qubit?"`
	Answer   string `json:"answer"   binding:"required" example:"The basic unit of quantum information."`
}

// SaveFlashcardsRequest is the JSON payload for saving cards into a deck.
type SaveFlashcardsRequest struct {
	// Topic selects the deck; casing and spacing are normalized server-side.
	Topic string `json:"topic" binding:"required" example:"Quantum Computing"`
	// SessionID optionally attributes the cards to a session, bumping its
	// informational counter.
	SessionID string `json:"session_id,omitempty" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// Flashcards may be empty; an empty save is a no-op.
	Flashcards []FlashcardPayload `json:"flashcards"`
}

// SaveFlashcardsResponse reports the outcome of a deck save.
type SaveFlashcardsResponse struct {
	Topic string `json:"topic" example:"Quantum Computing"`
	// Added counts the cards actually merged; duplicates are skipped.
	Added int `json:"added" example:"2"`
}

//
// Handlers
//

// SaveFlashcards godoc
// @ID          saveFlashcards
// @Summary     Save flashcards into a topic deck
// @Description Merges the submitted cards into the caller's deck for the topic. Cards whose question already exists in the deck are skipped; the response reports how many were added.
// @Tags        Flashcards
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Client retry deduplication key"
// @Param       body  body  handlers.SaveFlashcardsRequest  true  "Cards to merge"
//
// @Success     200  {object}  handlers.SaveFlashcardsResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /flashcards [post]
func (h *Handlers) SaveFlashcards(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}

	var req SaveFlashcardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	cards := make([]domain.Flashcard, 0, len(req.Flashcards))
	for _, p := range req.Flashcards {
		q, a := strings.TrimSpace(p.Question), strings.TrimSpace(p.Answer)
		if q == "" || a == "" {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "each flashcard needs a question and an answer")
			return
		}
		cards = append(cards, domain.Flashcard{Question: q, Answer: a})
	}

	ctx := c.Request.Context()
	added, err := h.fcSvc.Save(ctx, uid, req.Topic, cards)
	if err != nil {
		if err == services.ErrEmptyTopic {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "topic is required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeStoreFailure, err.Error())
		return
	}

	if req.SessionID != "" && added > 0 {
		// Informational counter only; a failure here must not fail the save.
		if err := h.sessSvc.RecordFlashcards(ctx, uid, req.SessionID, added); err != nil {
			middleware.LoggerFrom(c).Warn().
				Err(err).
				Str("session_id", req.SessionID).
				Msg("flashcard counter not updated")
		}
	}

	topic := req.Topic
	if svc, okCast := h.fcSvc.(*services.FlashcardService); okCast {
		topic = svc.CanonicalTopic(req.Topic)
	}
	ok(c, http.StatusOK, SaveFlashcardsResponse{Topic: topic, Added: added})
}

// GetFlashcards godoc
// @ID          getFlashcards
// @Summary     Get all flashcards grouped by topic
// @Description Returns every deck of the caller keyed by topic name. A first-time caller is seeded with a starter Machine Learning deck; the default topic keys are always present.
// @Tags        Flashcards
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  map[string][]domain.Flashcard
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /flashcards [get]
func (h *Handlers) GetFlashcards(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}

	decks, err := h.fcSvc.GetAll(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStoreFailure, err.Error())
		return
	}
	ok(c, http.StatusOK, decks)
}
