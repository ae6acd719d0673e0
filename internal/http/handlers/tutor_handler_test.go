package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/studykit/go-tutor-backend/internal/domain"
	"github.com/studykit/go-tutor-backend/internal/tutor"
)

// fakeTutorSvc implements tutor.Service for handler tests.
type fakeTutorSvc struct {
	reply    string
	cards    []domain.Flashcard
	err      error
	gotTopic string
	gotText  string
}

func (f *fakeTutorSvc) Reply(_ context.Context, topic, question string, _ []domain.Message) (string, error) {
	f.gotTopic, f.gotText = topic, question
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeTutorSvc) ExtractFlashcards(_ context.Context, transcript string) ([]domain.Flashcard, error) {
	f.gotText = transcript
	if f.err != nil {
		return nil, f.err
	}
	return f.cards, nil
}

func (f *fakeTutorSvc) Summarize(context.Context, string, string) (string, error) {
	return "", nil
}

// ---------- TutorReply ----------

func TestTutorReply_OK(t *testing.T) {
	ft := &fakeTutorSvc{reply: "A qubit is the basic unit of quantum information."}
	r := newTestRouter(New(&fakeFlashcardSvc{}, &fakeSessionSvc{}, ft))

	w := doJSON(t, r, http.MethodPost, "/tutor/reply", TutorReplyRequest{
		Topic:    "Quantum Computing",
		Question: "What is a qubit?",
		History:  []MessagePayload{{Role: "model", Content: "Welcome back."}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	var resp TutorReplyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reply != ft.reply {
		t.Fatalf("reply = %q", resp.Reply)
	}
	if ft.gotTopic != "Quantum Computing" {
		t.Fatalf("topic = %q", ft.gotTopic)
	}
}

func TestTutorReply_BlankQuestion(t *testing.T) {
	r := newTestRouter(New(&fakeFlashcardSvc{}, &fakeSessionSvc{}, &fakeTutorSvc{}))

	w := doJSON(t, r, http.MethodPost, "/tutor/reply", map[string]any{
		"topic":    "Other",
		"question": "   ",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestTutorReply_TooLong(t *testing.T) {
	r := newTestRouter(New(&fakeFlashcardSvc{}, &fakeSessionSvc{}, &fakeTutorSvc{}))

	w := doJSON(t, r, http.MethodPost, "/tutor/reply", TutorReplyRequest{
		Topic:    "Other",
		Question: strings.Repeat("x", maxQuestionRunes+1),
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestTutorReply_ProviderDown(t *testing.T) {
	ft := &fakeTutorSvc{err: fmt.Errorf("%w: dial tcp", tutor.ErrUnavailable)}
	r := newTestRouter(New(&fakeFlashcardSvc{}, &fakeSessionSvc{}, ft))

	w := doJSON(t, r, http.MethodPost, "/tutor/reply", TutorReplyRequest{
		Topic:    "Other",
		Question: "hi?",
	})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &er)
	if er.Code != ErrCodeModelFailure {
		t.Fatalf("code = %q", er.Code)
	}
	if strings.Contains(er.Message, "dial tcp") {
		t.Fatalf("provider detail leaked to client: %q", er.Message)
	}
}

// ---------- ExtractFlashcards ----------

func TestExtractFlashcards_OK(t *testing.T) {
	ft := &fakeTutorSvc{cards: []domain.Flashcard{{Question: "q", Answer: "a"}}}
	r := newTestRouter(New(&fakeFlashcardSvc{}, &fakeSessionSvc{}, ft))

	w := doJSON(t, r, http.MethodPost, "/tutor/flashcards", ExtractFlashcardsRequest{
		Messages: []MessagePayload{
			{Role: "user", Content: "what is a qubit?"},
			{Role: "model", Content: "A two-state quantum system."},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	var resp ExtractFlashcardsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Flashcards) != 1 {
		t.Fatalf("cards = %+v", resp.Flashcards)
	}
	if !strings.Contains(ft.gotText, "User: what is a qubit?") ||
		!strings.Contains(ft.gotText, "Model: A two-state quantum system.") {
		t.Fatalf("transcript not rendered: %q", ft.gotText)
	}
}

func TestExtractFlashcards_EmptyResultIsOK(t *testing.T) {
	ft := &fakeTutorSvc{cards: []domain.Flashcard{}}
	r := newTestRouter(New(&fakeFlashcardSvc{}, &fakeSessionSvc{}, ft))

	w := doJSON(t, r, http.MethodPost, "/tutor/flashcards", ExtractFlashcardsRequest{
		Messages: []MessagePayload{{Role: "user", Content: "hello"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"flashcards":[]`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestExtractFlashcards_NoMessages(t *testing.T) {
	r := newTestRouter(New(&fakeFlashcardSvc{}, &fakeSessionSvc{}, &fakeTutorSvc{}))

	w := doJSON(t, r, http.MethodPost, "/tutor/flashcards", map[string]any{"messages": []any{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestExtractFlashcards_MalformedOutput(t *testing.T) {
	ft := &fakeTutorSvc{err: fmt.Errorf("%w: bad json", tutor.ErrMalformedOutput)}
	r := newTestRouter(New(&fakeFlashcardSvc{}, &fakeSessionSvc{}, ft))

	w := doJSON(t, r, http.MethodPost, "/tutor/flashcards", ExtractFlashcardsRequest{
		Messages: []MessagePayload{{Role: "user", Content: "hello"}},
	})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}
