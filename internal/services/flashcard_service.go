// Package services holds the business logic between the HTTP handlers and
// the persistence layer.
//
// This file implements the FlashcardService, which owns the write path for
// flashcard decks: the dedup-merge save and the topic-keyed read with
// first-run seeding. The merge runs inside a single gorm transaction so two
// concurrent saves to the same (user, topic) deck cannot silently drop each
// other's additions; SQLite serializes transactional writers, and the
// read-modify-write never leaves a partial state visible.
package services

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/studykit/go-tutor-backend/internal/domain"
	"github.com/studykit/go-tutor-backend/internal/repo"
)

// Well-known topic keys. GetAll guarantees all three are present in its
// result even when the user holds no cards for them.
const (
	TopicMachineLearning  = "Machine Learning"
	TopicQuantumComputing = "Quantum Computing"
	TopicOther            = "Other"
)

// DefaultTopics lists the guaranteed keys in presentation order.
var DefaultTopics = []string{TopicMachineLearning, TopicQuantumComputing, TopicOther}

// starterDeck seeds a brand-new user's account so the flashcards view is
// not empty on first visit. Seeding is a convenience, not a correctness
// requirement.
var starterDeck = []domain.Flashcard{
	{
		Question: "What is Linear Regression?",
		Answer:   "A supervised learning algorithm used for predicting a continuous dependent variable based on one or more independent variables.",
	},
	{
		Question: "What is a Decision Tree?",
		Answer:   "A supervised learning algorithm that is used for both classification and regression tasks. It has a tree-like structure.",
	},
	{
		Question: "Define 'Overfitting' in Machine Learning.",
		Answer:   "A modeling error that occurs when a function is too closely fit to a limited set of data points. It may therefore fail to predict future observations reliably.",
	},
}

// FlashcardService provides deck-level operations: the transactional
// dedup-merge save and the seeded, topic-keyed read.
type FlashcardService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// TopicCaser canonicalizes topic casing so "machine learning" and
	// "Machine Learning" land in the same deck.
	TopicCaser cases.Caser
}

// NewFlashcardService constructs a FlashcardService with English title
// casing for topic names.
func NewFlashcardService(db *gorm.DB) *FlashcardService {
	return &FlashcardService{
		DB:         db,
		TopicCaser: cases.Title(language.English),
	}
}

// Save merges cards into the user's deck for topic and returns the number
// of cards actually added.
//
// Semantics:
//   - An empty input is a no-op returning 0; the store is not touched.
//   - The read-modify-write runs in one transaction. A missing deck is
//     created containing exactly the input; an existing deck keeps its
//     cards in order and appends only those input cards whose question
//     text is not already present (exact, case-sensitive match), in input
//     order.
//   - Storage failures roll the transaction back and propagate; no partial
//     write is observable.
func (s *FlashcardService) Save(ctx context.Context, userID, topic string, cards []domain.Flashcard) (int, error) {
	tr := otel.Tracer("services/FlashcardService")
	ctx, span := tr.Start(ctx, "Save",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("cards.in", len(cards)),
		),
	)
	defer span.End()

	if len(cards) == 0 {
		return 0, nil
	}
	topic = s.CanonicalTopic(topic)
	if topic == "" {
		return 0, ErrEmptyTopic
	}

	added := 0
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []domain.Flashcard
		deck, err := repo.GetDeck(ctx, tx, userID, topic)
		switch {
		case err == nil:
			if existing, err = deck.CardList(); err != nil {
				return err
			}
		case err == gorm.ErrRecordNotFound:
			deck = nil
		default:
			return err
		}

		// Filter against stored questions and within the input itself, so a
		// batch repeating a question contributes it once.
		seen := make(map[string]struct{}, len(existing))
		for _, c := range existing {
			seen[c.Question] = struct{}{}
		}
		unique := make([]domain.Flashcard, 0, len(cards))
		for _, c := range cards {
			if _, dup := seen[c.Question]; dup {
				continue
			}
			seen[c.Question] = struct{}{}
			unique = append(unique, c)
		}
		added = len(unique)
		if added == 0 {
			return nil
		}
		if deck == nil {
			_, err = repo.CreateDeck(ctx, tx, userID, topic, unique)
			return err
		}
		return repo.UpdateDeckCards(ctx, tx, deck.ID, append(existing, unique...))
	})
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Int("cards.added", added))
	return added, nil
}

// GetAll returns every deck of the user keyed by topic name.
//
// A user with no stored flashcards at all is seeded with the starter
// Machine Learning deck first. The returned map always contains the three
// well-known topic keys, defaulting to an empty slice.
func (s *FlashcardService) GetAll(ctx context.Context, userID string) (map[string][]domain.Flashcard, error) {
	tr := otel.Tracer("services/FlashcardService")
	ctx, span := tr.Start(ctx, "GetAll",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	decks, err := repo.ListDecks(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	if len(decks) == 0 {
		// First visit: seed through the regular merge path.
		if _, err := s.Save(ctx, userID, TopicMachineLearning, starterDeck); err != nil {
			return nil, err
		}
		if decks, err = repo.ListDecks(ctx, s.DB, userID); err != nil {
			return nil, err
		}
	}

	out := make(map[string][]domain.Flashcard, len(decks)+len(DefaultTopics))
	for i := range decks {
		cards, err := decks[i].CardList()
		if err != nil {
			return nil, err
		}
		out[decks[i].Topic] = cards
	}
	for _, t := range DefaultTopics {
		if _, ok := out[t]; !ok {
			out[t] = []domain.Flashcard{}
		}
	}
	return out, nil
}

// CanonicalTopic normalizes a topic name: whitespace collapsed, title
// casing applied. An empty result means the caller supplied no usable
// topic.
func (s *FlashcardService) CanonicalTopic(topic string) string {
	topic = topicWhitespaceRE.ReplaceAllString(strings.TrimSpace(topic), " ")
	if topic == "" {
		return ""
	}
	return s.TopicCaser.String(topic)
}

// topicWhitespaceRE collapses consecutive whitespace to a single space.
var topicWhitespaceRE = regexp.MustCompile(`\s+`)
