// This file implements the SessionService, which owns the session lifecycle:
// the create-or-update save with summary refresh, activity-ordered listing,
// and single-session retrieval. The storage dependency is abstracted behind
// SessionRepo so tests can substitute in-memory fakes.
package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/studykit/go-tutor-backend/internal/domain"
	"github.com/studykit/go-tutor-backend/internal/repo"
	"github.com/studykit/go-tutor-backend/internal/tutor"
)

// PlaceholderSummary labels sessions whose transcript is too short to be
// worth a model call.
const PlaceholderSummary = "New Session"

// SessionRepo abstracts session persistence.
type SessionRepo interface {
	Create(ctx context.Context, userID, topic string, msgs []domain.Message, summary string) (*domain.Session, error)
	Update(ctx context.Context, id, userID string, msgs []domain.Message, summary string) error
	Get(ctx context.Context, id, userID string) (*domain.Session, error)
	ListPage(ctx context.Context, userID string, offset, limit int) ([]domain.Session, error)
	Count(ctx context.Context, userID string) (int64, error)
	AddFlashcards(ctx context.Context, id, userID string, n int) error
}

// GormSessionRepo adapts the package-level repo functions to SessionRepo.
type GormSessionRepo struct {
	DB *gorm.DB
}

func (r GormSessionRepo) Create(ctx context.Context, userID, topic string, msgs []domain.Message, summary string) (*domain.Session, error) {
	return repo.CreateSession(ctx, r.DB, userID, topic, msgs, summary)
}

func (r GormSessionRepo) Update(ctx context.Context, id, userID string, msgs []domain.Message, summary string) error {
	return repo.UpdateSession(ctx, r.DB, id, userID, msgs, summary)
}

func (r GormSessionRepo) Get(ctx context.Context, id, userID string) (*domain.Session, error) {
	return repo.GetSession(ctx, r.DB, id, userID)
}

func (r GormSessionRepo) ListPage(ctx context.Context, userID string, offset, limit int) ([]domain.Session, error) {
	return repo.ListSessionsPage(ctx, r.DB, userID, offset, limit)
}

func (r GormSessionRepo) Count(ctx context.Context, userID string) (int64, error) {
	return repo.CountSessions(ctx, r.DB, userID)
}

func (r GormSessionRepo) AddFlashcards(ctx context.Context, id, userID string, n int) error {
	return repo.AddSessionFlashcards(ctx, r.DB, id, userID, n)
}

// SessionService provides session persistence with automatic summaries.
type SessionService struct {
	Repo  SessionRepo
	Tutor tutor.Service

	// MinSummaryChars is the transcript length below which the placeholder
	// summary is stored instead of calling the model.
	MinSummaryChars int
}

// NewSessionService wires the service with its collaborators.
func NewSessionService(r SessionRepo, t tutor.Service, minSummaryChars int) *SessionService {
	return &SessionService{Repo: r, Tutor: t, MinSummaryChars: minSummaryChars}
}

// SaveInput carries a session save request. An empty ID means create.
type SaveInput struct {
	ID       string
	Topic    string
	Messages []domain.Message
}

// Save persists a session and refreshes its summary.
//
// When the rendered transcript is shorter than MinSummaryChars the
// placeholder summary is stored without touching the model. Otherwise the
// summary comes from the tutor service, and a tutor failure aborts the save
// so a stale or fabricated summary is never written.
func (s *SessionService) Save(ctx context.Context, userID string, in SaveInput) (*domain.Session, bool, error) {
	tr := otel.Tracer("services/SessionService")
	ctx, span := tr.Start(ctx, "Save",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Bool("session.create", in.ID == ""),
		),
	)
	defer span.End()

	if len(in.Messages) == 0 {
		return nil, false, ErrEmptyMessages
	}

	transcript := domain.Transcript(in.Messages)
	summary := PlaceholderSummary
	if len(transcript) >= s.MinSummaryChars {
		var err error
		if summary, err = s.Tutor.Summarize(ctx, transcript, in.Topic); err != nil {
			return nil, false, err
		}
	}

	if in.ID == "" {
		if in.Topic == "" {
			return nil, false, ErrEmptyTopic
		}
		sess, err := s.Repo.Create(ctx, userID, in.Topic, in.Messages, summary)
		if err != nil {
			return nil, false, err
		}
		return sess, true, nil
	}

	if err := s.Repo.Update(ctx, in.ID, userID, in.Messages, summary); err != nil {
		if err == repo.ErrNotFound || err == gorm.ErrRecordNotFound {
			return nil, false, ErrSessionNotFound
		}
		return nil, false, err
	}
	sess, err := s.Repo.Get(ctx, in.ID, userID)
	if err != nil {
		if err == repo.ErrNotFound || err == gorm.ErrRecordNotFound {
			return nil, false, ErrSessionNotFound
		}
		return nil, false, err
	}
	return sess, false, nil
}

// List returns one page of the user's sessions ordered by most recent
// activity, plus the total count for pagination.
func (s *SessionService) List(ctx context.Context, userID string, page, pageSize int) ([]domain.Session, int64, error) {
	tr := otel.Tracer("services/SessionService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	total, err := s.Repo.Count(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.Repo.ListPage(ctx, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get returns one session owned by the user.
func (s *SessionService) Get(ctx context.Context, userID, id string) (*domain.Session, error) {
	sess, err := s.Repo.Get(ctx, id, userID)
	if err != nil {
		if err == repo.ErrNotFound || err == gorm.ErrRecordNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

// RecordFlashcards bumps the session's flashcard counter after a deck save.
// The counter is informational; a failure here does not unwind the deck
// write, so callers typically log and continue.
func (s *SessionService) RecordFlashcards(ctx context.Context, userID, sessionID string, n int) error {
	if sessionID == "" || n <= 0 {
		return nil
	}
	if err := s.Repo.AddFlashcards(ctx, sessionID, userID, n); err != nil {
		if err == repo.ErrNotFound || err == gorm.ErrRecordNotFound {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}
