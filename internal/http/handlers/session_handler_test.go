package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"encoding/json"

	"github.com/studykit/go-tutor-backend/internal/domain"
	"github.com/studykit/go-tutor-backend/internal/services"
	"github.com/studykit/go-tutor-backend/internal/tutor"
)

func mkSession(id, userID string) *domain.Session {
	s := &domain.Session{
		ID:        id,
		UserID:    userID,
		Topic:     "Quantum Computing",
		Summary:   "Qubits, Superposition",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	_ = s.SetMessages([]domain.Message{{Role: domain.RoleUser, Content: "hi"}})
	return s
}

// ---------- SaveSession ----------

func TestSaveSession_Created(t *testing.T) {
	ss := &fakeSessionSvc{session: mkSession("141add05-4415-4938-b5a1-17e0d3171aff", "u1"), created: true}
	r := newTestRouter(New(&fakeFlashcardSvc{}, ss, nil))

	w := doJSON(t, r, http.MethodPost, "/sessions", SaveSessionRequest{
		Topic:    "Quantum Computing",
		Messages: []MessagePayload{{Role: "user", Content: "What is a qubit?"}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	var sess domain.Session
	if err := json.Unmarshal(w.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sess.ID == "" || sess.Summary == "" {
		t.Fatalf("incomplete session: %+v", sess)
	}
}

func TestSaveSession_Updated(t *testing.T) {
	ss := &fakeSessionSvc{session: mkSession("141add05-4415-4938-b5a1-17e0d3171aff", "u1")}
	r := newTestRouter(New(&fakeFlashcardSvc{}, ss, nil))

	w := doJSON(t, r, http.MethodPost, "/sessions", SaveSessionRequest{
		ID:       "141add05-4415-4938-b5a1-17e0d3171aff",
		Messages: []MessagePayload{{Role: "user", Content: "more"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 on update", w.Code)
	}
}

func TestSaveSession_BadRole(t *testing.T) {
	r := newTestRouter(New(&fakeFlashcardSvc{}, &fakeSessionSvc{}, nil))

	w := doJSON(t, r, http.MethodPost, "/sessions", map[string]any{
		"topic":    "Other",
		"messages": []map[string]string{{"role": "assistant", "content": "hi"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for unknown role", w.Code)
	}
}

func TestSaveSession_NoMessages(t *testing.T) {
	r := newTestRouter(New(&fakeFlashcardSvc{}, &fakeSessionSvc{}, nil))

	w := doJSON(t, r, http.MethodPost, "/sessions", map[string]any{
		"topic":    "Other",
		"messages": []map[string]string{},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSaveSession_InvalidID(t *testing.T) {
	r := newTestRouter(New(&fakeFlashcardSvc{}, &fakeSessionSvc{}, nil))

	w := doJSON(t, r, http.MethodPost, "/sessions", SaveSessionRequest{
		ID:       "not-a-uuid",
		Messages: []MessagePayload{{Role: "user", Content: "hi"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSaveSession_NotFound(t *testing.T) {
	ss := &fakeSessionSvc{saveErr: services.ErrSessionNotFound}
	r := newTestRouter(New(&fakeFlashcardSvc{}, ss, nil))

	w := doJSON(t, r, http.MethodPost, "/sessions", SaveSessionRequest{
		ID:       "141add05-4415-4938-b5a1-17e0d3171aff",
		Messages: []MessagePayload{{Role: "user", Content: "hi"}},
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSaveSession_ModelFailure(t *testing.T) {
	ss := &fakeSessionSvc{saveErr: fmt.Errorf("%w: timeout", tutor.ErrUnavailable)}
	r := newTestRouter(New(&fakeFlashcardSvc{}, ss, nil))

	w := doJSON(t, r, http.MethodPost, "/sessions", SaveSessionRequest{
		Topic:    "Other",
		Messages: []MessagePayload{{Role: "user", Content: "hi"}},
	})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &er)
	if er.Code != ErrCodeModelFailure {
		t.Fatalf("code = %q", er.Code)
	}
}

func TestSaveSession_StoreFailure(t *testing.T) {
	ss := &fakeSessionSvc{saveErr: errors.New("disk full")}
	r := newTestRouter(New(&fakeFlashcardSvc{}, ss, nil))

	w := doJSON(t, r, http.MethodPost, "/sessions", SaveSessionRequest{
		Topic:    "Other",
		Messages: []MessagePayload{{Role: "user", Content: "hi"}},
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

// ---------- ListSessions ----------

func TestListSessions_OKWithPagination(t *testing.T) {
	items := []domain.Session{*mkSession("a1a1a1a1-0000-0000-0000-000000000001", "u1")}
	ss := &fakeSessionSvc{items: items, total: 41}
	r := newTestRouter(New(&fakeFlashcardSvc{}, ss, nil))

	w := doJSON(t, r, http.MethodGet, "/sessions?page=2&page_size=20", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ListSessionsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	p := resp.Pagination
	if p.Page != 2 || p.PageSize != 20 || p.Total != 41 || p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("pagination = %+v", p)
	}
}

func TestListSessions_ClampsParams(t *testing.T) {
	ss := &fakeSessionSvc{}
	r := newTestRouter(New(&fakeFlashcardSvc{}, ss, nil))

	w := doJSON(t, r, http.MethodGet, "/sessions?page=-3&page_size=9999", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ListSessionsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Pagination.Page != 1 || resp.Pagination.PageSize != 100 {
		t.Fatalf("clamping failed: %+v", resp.Pagination)
	}
}

func TestListSessions_StoreFailure(t *testing.T) {
	ss := &fakeSessionSvc{listErr: errors.New("locked")}
	r := newTestRouter(New(&fakeFlashcardSvc{}, ss, nil))

	w := doJSON(t, r, http.MethodGet, "/sessions", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

// ---------- GetSession ----------

func TestGetSession_OK(t *testing.T) {
	ss := &fakeSessionSvc{session: mkSession("141add05-4415-4938-b5a1-17e0d3171aff", "u1")}
	r := newTestRouter(New(&fakeFlashcardSvc{}, ss, nil))

	w := doJSON(t, r, http.MethodGet, "/sessions/141add05-4415-4938-b5a1-17e0d3171aff", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var sess domain.Session
	if err := json.Unmarshal(w.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode: %v", err)
	}
	msgs, err := sess.MessageList()
	if err != nil || len(msgs) != 1 {
		t.Fatalf("message log missing: %v %+v", err, msgs)
	}
}

func TestGetSession_BadID(t *testing.T) {
	r := newTestRouter(New(&fakeFlashcardSvc{}, &fakeSessionSvc{}, nil))
	w := doJSON(t, r, http.MethodGet, "/sessions/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	ss := &fakeSessionSvc{getErr: services.ErrSessionNotFound}
	r := newTestRouter(New(&fakeFlashcardSvc{}, ss, nil))
	w := doJSON(t, r, http.MethodGet, "/sessions/141add05-4415-4938-b5a1-17e0d3171aff", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
