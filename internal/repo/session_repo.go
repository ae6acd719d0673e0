// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Session
// model.
//
// Session saves are last-writer-wins at whole-record granularity: updates
// replace the message log and summary without a transaction, which is an
// accepted limitation of the session store (unlike the deck merge, which
// is transactional).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studykit/go-tutor-backend/internal/domain"
)

// CreateSession inserts a new session row owned by userID. The session ID
// is a randomly generated UUID and CreatedAt/UpdatedAt are set to UTC now.
func CreateSession(ctx context.Context, db *gorm.DB, userID, topic string, msgs []domain.Message, summary string) (*domain.Session, error) {
	now := time.Now().UTC()
	s := &domain.Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		Topic:          topic,
		Summary:        summary,
		FlashcardCount: 0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.SetMessages(msgs); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateSession replaces the message log and summary of an existing session
// and refreshes its activity timestamp. Ownership is enforced through the
// WHERE clause; a missing or foreign session yields ErrNotFound.
func UpdateSession(ctx context.Context, db *gorm.DB, id, userID string, msgs []domain.Message, summary string) error {
	var s domain.Session
	if err := s.SetMessages(msgs); err != nil {
		return err
	}
	res := db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"messages":   s.Messages,
			"summary":    summary,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetSession fetches a single session by its ID and owner (userID). If the
// record does not exist, it returns ErrNotFound.
func GetSession(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Session, error) {
	var s domain.Session
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions returns all sessions belonging to userID, ordered by last
// activity descending (most recently saved first).
func ListSessions(ctx context.Context, db *gorm.DB, userID string) ([]domain.Session, error) {
	var out []domain.Session
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&out).Error
	return out, err
}

// CountSessions returns the total number of sessions owned by userID.
func CountSessions(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListSessionsPage returns a paginated slice of sessions for userID, ordered
// by last activity descending. Use CountSessions for pagination metadata.
func ListSessionsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Session, error) {
	var out []domain.Session
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// AddSessionFlashcards bumps the informational flashcard counter of a
// session. Best effort: callers treat failures as non-fatal since the deck
// store is authoritative for card counts.
func AddSessionFlashcards(ctx context.Context, db *gorm.DB, id, userID string, n int) error {
	if n <= 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("flashcard_count", gorm.Expr("flashcard_count + ?", n))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NewSessionID exposes ID generation for callers that need an identifier
// before the row exists (e.g. idempotent create flows in tests).
func NewSessionID() string { return uuid.NewString() }
