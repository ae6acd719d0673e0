// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Deck model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. The dedup-merge itself lives in
// services.FlashcardService, which calls these functions inside a single
// gorm transaction.
//
// Error semantics:
//   - When a deck is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studykit/go-tutor-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetDeck fetches the deck for (userID, topic), or ErrNotFound.
func GetDeck(ctx context.Context, db *gorm.DB, userID, topic string) (*domain.Deck, error) {
	var d domain.Deck
	err := db.WithContext(ctx).
		Where("user_id = ? AND topic = ?", userID, topic).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDecks returns every deck owned by userID ordered by topic name, so
// callers produce a stable topic->cards mapping. Empty slice when the user
// has no decks.
func ListDecks(ctx context.Context, db *gorm.DB, userID string) ([]domain.Deck, error) {
	var out []domain.Deck
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("topic ASC").
		Find(&out).Error
	return out, err
}

// CountDecks returns the total number of decks owned by userID.
func CountDecks(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Deck{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// CreateDeck inserts a new deck row with a UUID primary key and the given
// cards. The (user_id, topic) unique index rejects a concurrent duplicate.
func CreateDeck(ctx context.Context, db *gorm.DB, userID, topic string, cards []domain.Flashcard) (*domain.Deck, error) {
	d := &domain.Deck{
		ID:        uuid.NewString(),
		UserID:    userID,
		Topic:     topic,
		CreatedAt: time.Now().UTC(),
	}
	if err := d.SetCards(cards); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateDeckCards replaces the cards column of an existing deck. If no rows
// are affected (deck missing), it returns ErrNotFound.
func UpdateDeckCards(ctx context.Context, db *gorm.DB, id string, cards []domain.Flashcard) error {
	var d domain.Deck
	if err := d.SetCards(cards); err != nil {
		return err
	}
	res := db.WithContext(ctx).
		Model(&domain.Deck{}).
		Where("id = ?", id).
		Update("cards", d.Cards)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
