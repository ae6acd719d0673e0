// Package domain defines the persistence models for flashcard decks and
// tutoring sessions. These types are mapped with GORM and form the core
// data layer of the tutoring backend.
//
// The store is deliberately document-shaped: a deck row holds the full
// ordered card list for one (user, topic) pair as a JSON column, and a
// session row holds the full ordered message log. Decks are only mutated
// by the dedup-merge write; sessions are replaced wholesale on save.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Message roles. Assistant output is stored under RoleModel to match the
// wire format the clients use.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Flashcard is a single question/answer pair. Cards are immutable once
// stored; the question text is the dedup key within a deck (exact,
// case-sensitive match).
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Message is a single utterance within a session, authored either by the
// user or by the model. Content may carry markdown for model messages.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Deck represents a user's flashcard collection for one topic. Topic names
// partition cards per user; a deck is created implicitly on first save and
// never deleted.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID / Topic: ownership key; unique together.
//   - Cards: ordered JSON array of Flashcard. Existing order is preserved
//     by the merge write; new unique cards are appended in input order.
type Deck struct {
	ID        string         `json:"id"      gorm:"type:char(36);primaryKey"`
	UserID    string         `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_user_topic,priority:1"`
	Topic     string         `json:"topic"   gorm:"type:varchar(255);not null;uniqueIndex:ux_user_topic,priority:2"`
	Cards     datatypes.JSON `json:"cards"   gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName returns the database table name for Deck.
func (Deck) TableName() string { return "decks" }

// CardList decodes the JSON cards column. A NULL/empty column decodes to an
// empty slice rather than an error.
func (d *Deck) CardList() ([]Flashcard, error) {
	if len(d.Cards) == 0 {
		return []Flashcard{}, nil
	}
	var out []Flashcard
	if err := json.Unmarshal(d.Cards, &out); err != nil {
		return nil, fmt.Errorf("decode deck cards: %w", err)
	}
	return out, nil
}

// SetCards encodes cards into the JSON column.
func (d *Deck) SetCards(cards []Flashcard) error {
	b, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("encode deck cards: %w", err)
	}
	d.Cards = datatypes.JSON(b)
	return nil
}

// Session represents one tutoring conversation owned by a user.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the owner; indexed for retrieval.
//   - Topic: subject the session was started on.
//   - Messages: ordered JSON message log; replaced wholesale on save.
//   - Summary: derived keyword/sentence summary, recomputed on save.
//   - FlashcardCount: informational count of cards generated from this
//     session. Not kept atomically in sync with the deck store.
//   - CreatedAt: creation time. UpdatedAt: last activity; listings order
//     by it descending.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type Session struct {
	ID             string         `json:"id"              gorm:"type:char(36);primaryKey"`
	UserID         string         `json:"user_id"         gorm:"type:varchar(64);not null;index:idx_user_sessions"`
	Topic          string         `json:"topic"           gorm:"type:varchar(255);not null"`
	Messages       datatypes.JSON `json:"messages"        gorm:"not null"`
	Summary        string         `json:"summary"         gorm:"type:text;not null;default:''"`
	FlashcardCount int            `json:"flashcard_count" gorm:"not null;default:0"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-"               gorm:"index"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// MessageList decodes the JSON messages column.
func (s *Session) MessageList() ([]Message, error) {
	if len(s.Messages) == 0 {
		return []Message{}, nil
	}
	var out []Message
	if err := json.Unmarshal(s.Messages, &out); err != nil {
		return nil, fmt.Errorf("decode session messages: %w", err)
	}
	return out, nil
}

// SetMessages encodes messages into the JSON column.
func (s *Session) SetMessages(msgs []Message) error {
	b, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encode session messages: %w", err)
	}
	s.Messages = datatypes.JSON(b)
	return nil
}

// Transcript renders a message log as role-prefixed, newline-joined text,
// the form the prompt service consumes for extraction and summarization.
//
//	User: what is a qubit?
//	Model: A qubit is ...
func Transcript(msgs []Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch m.Role {
		case RoleModel:
			b.WriteString("Model: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(m.Content)
	}
	return b.String()
}
