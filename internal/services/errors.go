// Package services defines the business logic for flashcard decks and
// tutoring sessions. This file centralizes common service-level error values
// so that they can be consistently returned by service methods and checked
// by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
package services

import "errors"

var (
	// ErrSessionNotFound indicates that the requested session does not exist
	// or is not accessible to the current user.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyTopic is returned when a save names no topic for a new
	// session or deck.
	ErrEmptyTopic = errors.New("topic is empty")

	// ErrEmptyMessages is returned when a session save carries no messages.
	ErrEmptyMessages = errors.New("session has no messages")
)
