package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/solace-app/solace/backend/internal/models"
	"github.com/solace-app/solace/backend/internal/store"
)

func setupHistoryRouter(t *testing.T) (*chi.Mux, *store.Store) {
	t.Helper()

	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}

	r := chi.NewRouter()
	h := NewHistoryHandler(s, 50)
	r.Get("/api/rooms/{id}/messages", h.GetMessages)
	return r, s
}

func TestGetMessages(t *testing.T) {
	router, s := setupHistoryRouter(t)

	for _, content := range []string{"first", "second"} {
		msg := &models.Message{
			RoomID:   "r1",
			SenderID: "u1",
			Content:  content,
			Kind:     models.KindGroup,
		}
		if err := s.Append(context.Background(), msg); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	req := httptest.NewRequest("GET", "/api/rooms/r1/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body models.GetMessagesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(body.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(body.Messages))
	}
	if body.Messages[0].Content != "first" || body.Messages[1].Content != "second" {
		t.Errorf("messages out of order: %v", body.Messages)
	}
}

func TestGetMessagesInvalidLimit(t *testing.T) {
	router, _ := setupHistoryRouter(t)

	req := httptest.NewRequest("GET", "/api/rooms/r1/messages?limit=zero", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetMessagesEmptyRoom(t *testing.T) {
	router, _ := setupHistoryRouter(t)

	req := httptest.NewRequest("GET", "/api/rooms/empty/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body models.GetMessagesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(body.Messages) != 0 {
		t.Errorf("got %d messages for empty room, want 0", len(body.Messages))
	}
}
