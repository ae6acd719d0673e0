// Tutor HTTP handlers.
//
// This file exposes the model-backed endpoints:
//   - POST /tutor/reply      (topic-scoped tutoring answer)
//   - POST /tutor/flashcards (flashcard extraction from a conversation)
//
// Both endpoints are stateless pass-throughs to the tutor service; nothing
// is persisted here. Clients save sessions and decks through the dedicated
// endpoints.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/studykit/go-tutor-backend/internal/domain"
	"github.com/studykit/go-tutor-backend/internal/tutor"
)

// maxQuestionRunes bounds a single tutoring question. Long pastes belong in
// the conversation, not in one prompt.
const maxQuestionRunes = 8000

//
// DTOs
//

// TutorReplyRequest asks the tutor a question within a topic, optionally
// with prior conversation for context.
type TutorReplyRequest struct {
	Topic    string           `json:"topic"    binding:"required" example:"Quantum Computing"`
	Question string           `json:"question" binding:"required" example:"Why does measurement collapse a superposition?"`
	History  []MessagePayload `json:"history,omitempty" binding:"omitempty,dive"`
}

// TutorReplyResponse carries the model's answer.
type TutorReplyResponse struct {
	Reply string `json:"reply" example:"Measurement couples the qubit to the environment..."`
}

// ExtractFlashcardsRequest submits a conversation for card extraction.
type ExtractFlashcardsRequest struct {
	Messages []MessagePayload `json:"messages" binding:"required,min=1,dive"`
}

// ExtractFlashcardsResponse returns the generated cards. An empty list is a
// valid outcome for a conversation with nothing worth reviewing.
type ExtractFlashcardsResponse struct {
	Flashcards []domain.Flashcard `json:"flashcards"`
}

//
// Handlers
//

// TutorReply godoc
// @ID          tutorReply
// @Summary     Ask the tutor a question
// @Description Returns a model-generated tutoring answer for the question, scoped to the topic, using the supplied history for conversational context. Nothing is persisted.
// @Tags        Tutor
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.TutorReplyRequest  true  "Question payload"
//
// @Success     200  {object}  handlers.TutorReplyResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     502  {object}  handlers.ErrorResponse "Model failure"
// @Router      /tutor/reply [post]
func (h *Handlers) TutorReply(c *gin.Context) {
	if _, authed := requireUser(c); !authed {
		return
	}

	var req TutorReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "topic and question are required")
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "question must not be blank")
		return
	}
	if utf8.RuneCountInString(question) > maxQuestionRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "question is too long")
		return
	}

	history := make([]domain.Message, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, domain.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := h.tut.Reply(c.Request.Context(), req.Topic, question, history)
	if err != nil {
		fail(c, http.StatusBadGateway, ErrCodeModelFailure, modelErrMessage(err))
		return
	}
	ok(c, http.StatusOK, TutorReplyResponse{Reply: reply})
}

// ExtractFlashcards godoc
// @ID          extractFlashcards
// @Summary     Extract flashcards from a conversation
// @Description Runs the conversation through the model and returns candidate question/answer cards. The cards are not stored; submit them to POST /flashcards to keep them.
// @Tags        Tutor
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.ExtractFlashcardsRequest  true  "Conversation payload"
//
// @Success     200  {object}  handlers.ExtractFlashcardsResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     502  {object}  handlers.ErrorResponse "Model failure"
// @Router      /tutor/flashcards [post]
func (h *Handlers) ExtractFlashcards(c *gin.Context) {
	if _, authed := requireUser(c); !authed {
		return
	}

	var req ExtractFlashcardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "at least one message with role and content is required")
		return
	}

	msgs := make([]domain.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, domain.Message{Role: m.Role, Content: m.Content})
	}

	cards, err := h.tut.ExtractFlashcards(c.Request.Context(), domain.Transcript(msgs))
	if err != nil {
		fail(c, http.StatusBadGateway, ErrCodeModelFailure, modelErrMessage(err))
		return
	}
	ok(c, http.StatusOK, ExtractFlashcardsResponse{Flashcards: cards})
}

// modelErrMessage maps tutor failures to client-safe messages; provider
// details stay in the logs.
func modelErrMessage(err error) string {
	if errors.Is(err, tutor.ErrMalformedOutput) {
		return "the model returned an unusable response, try again"
	}
	return "the model provider is unavailable, try again later"
}
