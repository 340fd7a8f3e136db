package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskdesk/internal/model"
	"taskdesk/internal/service"
)

type memContactStore struct {
	messages []*model.ContactMessage
	nextID   int
}

func (s *memContactStore) Insert(_ context.Context, m *model.ContactMessage) error {
	s.nextID++
	m.ID = s.nextID
	m.CreatedAt = time.Now().UTC()
	stored := *m
	s.messages = append(s.messages, &stored)
	return nil
}

func (s *memContactStore) ListAll(context.Context) ([]model.ContactMessage, error) {
	// Newest first, matching the repository ordering.
	out := make([]model.ContactMessage, 0, len(s.messages))
	for i := len(s.messages) - 1; i >= 0; i-- {
		out = append(out, *s.messages[i])
	}
	return out, nil
}

func (s *memContactStore) MarkRead(_ context.Context, id int) (int64, error) {
	for _, m := range s.messages {
		if m.ID == id {
			m.IsRead = true
			return 1, nil
		}
	}
	return 0, nil
}

func newContactRouter(store *memContactStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	h := NewContactHandler(service.NewContactService(store, nil, logger), logger)

	r := gin.New()
	r.POST("/api/contact", h.Submit)
	r.GET("/api/admin/messages", h.List)
	r.PUT("/api/admin/messages/:id/read", h.MarkRead)
	return r
}

func TestContactSubmitHTTP(t *testing.T) {
	store := &memContactStore{}
	r := newContactRouter(store)

	w := doJSON(t, r, http.MethodPost, "/api/contact", `{"name":"alice","email":"alice@example.com","subject":"hi","message":"hello"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["message"] != "Message sent successfully" {
		t.Fatalf("message = %q", body["message"])
	}
	if len(store.messages) != 1 {
		t.Fatalf("stored %d messages, want 1", len(store.messages))
	}
}

func TestContactSubmitValidationHTTP(t *testing.T) {
	r := newContactRouter(&memContactStore{})

	w := doJSON(t, r, http.MethodPost, "/api/contact", `{"name":"alice"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestContactListNewestFirstHTTP(t *testing.T) {
	store := &memContactStore{}
	r := newContactRouter(store)

	for _, subject := range []string{"first", "second", "third"} {
		w := doJSON(t, r, http.MethodPost, "/api/contact", `{"name":"a","email":"a@example.com","subject":"`+subject+`","message":"x"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("submit %q status = %d", subject, w.Code)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/admin/messages", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}

	var messages []model.ContactMessage
	if err := json.Unmarshal(w.Body.Bytes(), &messages); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(messages) != 3 || messages[0].Subject != "third" || messages[2].Subject != "first" {
		t.Fatalf("unexpected order: %+v", messages)
	}
}

func TestContactMarkReadHTTP(t *testing.T) {
	store := &memContactStore{}
	r := newContactRouter(store)

	w := doJSON(t, r, http.MethodPost, "/api/contact", `{"name":"a","email":"a@example.com","message":"x"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/api/admin/messages/1/read", "")
	if w.Code != http.StatusOK {
		t.Fatalf("mark read status = %d", w.Code)
	}
	if !store.messages[0].IsRead {
		t.Fatal("message not marked read")
	}

	// Repeating is a no-op, missing ids are a 404.
	w = doJSON(t, r, http.MethodPut, "/api/admin/messages/1/read", "")
	if w.Code != http.StatusOK {
		t.Fatalf("repeat status = %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPut, "/api/admin/messages/99/read", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
