// Package tutor wraps the hosted language model behind a small request/
// response interface with three fixed prompt templates: topic-scoped
// tutoring replies, flashcard extraction from a transcript, and session
// summarization.
//
// The Service boundary keeps the rest of the application ignorant of the
// provider: callers see typed failures and plain Go values. All operations
// are stateless and safe to retry; none of them is deterministic, since
// the model may answer differently call to call.
package tutor

import (
	"context"
	"errors"

	"github.com/studykit/go-tutor-backend/internal/domain"
)

// Provider failure classes. Callers discriminate with errors.Is and must
// not substitute fabricated data for either of them.
var (
	// ErrUnavailable indicates the provider could not be reached or did
	// not answer in time.
	ErrUnavailable = errors.New("tutor: model provider unavailable")

	// ErrMalformedOutput indicates the provider answered, but the output
	// could not be parsed into the expected structure. Distinct from a
	// well-formed empty result, which is a success.
	ErrMalformedOutput = errors.New("tutor: malformed model output")
)

// Service is the prompt boundary consumed by the HTTP and service layers.
type Service interface {
	// Reply answers question as a tutor specializing in topic, with the
	// conversation history supplied for context. Implementations may cap
	// the history window; they never mutate it.
	Reply(ctx context.Context, topic, question string, history []domain.Message) (string, error)

	// ExtractFlashcards turns a rendered transcript into question/answer
	// pairs. A zero-length result is valid; an unparseable model response
	// is ErrMalformedOutput.
	ExtractFlashcards(ctx context.Context, transcript string) ([]domain.Flashcard, error)

	// Summarize produces the configured summary form (keyword list or one
	// sentence) for a transcript. Callers are responsible for the
	// short-transcript shortcut; Summarize always calls the model.
	Summarize(ctx context.Context, transcript, topic string) (string, error)
}
