package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskdesk/internal/model"
	"taskdesk/internal/service"
)

type memTaskStore struct {
	tasks  map[int]*model.Task
	nextID int
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: map[int]*model.Task{}, nextID: 1}
}

func (s *memTaskStore) Insert(_ context.Context, t *model.Task) error {
	t.ID = s.nextID
	s.nextID++
	stored := *t
	s.tasks[t.ID] = &stored
	return nil
}

func (s *memTaskStore) ListByUser(_ context.Context, userID int) ([]model.Task, error) {
	var out []model.Task
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memTaskStore) FindByID(_ context.Context, id int) (*model.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (s *memTaskStore) Update(_ context.Context, t *model.Task) error {
	stored := *t
	s.tasks[t.ID] = &stored
	return nil
}

func (s *memTaskStore) Delete(_ context.Context, id int) error {
	delete(s.tasks, id)
	return nil
}

// newTaskRouter mounts the task routes behind a stub that injects the
// session the way the auth middleware would.
func newTaskRouter(store *memTaskStore, userID int, isAdmin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	h := NewTaskHandler(service.NewTaskService(store, logger), logger)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserID, userID)
		c.Set(ContextIsAdmin, isAdmin)
		c.Next()
	})
	r.GET("/api/tasks", h.List)
	r.POST("/api/tasks", h.Create)
	r.GET("/api/tasks/:id", h.Get)
	r.PUT("/api/tasks/:id", h.Update)
	r.DELETE("/api/tasks/:id", h.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTaskCreateHTTP(t *testing.T) {
	store := newMemTaskStore()
	r := newTaskRouter(store, 1, false)

	w := doJSON(t, r, http.MethodPost, "/api/tasks", `{"title":"write report","priority":1,"due_date":"2024-06-01"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var got model.Task
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Priority != model.PriorityLow {
		t.Fatalf("priority = %q, want %q", got.Priority, model.PriorityLow)
	}
	if got.DueDate == nil {
		t.Fatal("due_date not set")
	}
}

func TestTaskCreateMissingTitleHTTP(t *testing.T) {
	r := newTaskRouter(newMemTaskStore(), 1, false)

	w := doJSON(t, r, http.MethodPost, "/api/tasks", `{"description":"no title"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["message"] != "Title is required" {
		t.Fatalf("message = %q", body["message"])
	}
}

func TestTaskUpdateNullClearsDueDateHTTP(t *testing.T) {
	store := newMemTaskStore()
	r := newTaskRouter(store, 1, false)

	w := doJSON(t, r, http.MethodPost, "/api/tasks", `{"title":"a","due_date":"2024-06-01","category_id":5}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	var created model.Task
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// Omitting both fields leaves them alone.
	w = doJSON(t, r, http.MethodPut, "/api/tasks/1", `{"title":"b"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}
	stored := store.tasks[created.ID]
	if stored.DueDate == nil || stored.CategoryID == nil {
		t.Fatal("absent keys must not clear due_date or category_id")
	}

	// Explicit nulls clear them.
	w = doJSON(t, r, http.MethodPut, "/api/tasks/1", `{"due_date":null,"category_id":null}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}
	stored = store.tasks[created.ID]
	if stored.DueDate != nil || stored.CategoryID != nil {
		t.Fatal("explicit nulls must clear due_date and category_id")
	}
}

func TestTaskAccessControlHTTP(t *testing.T) {
	store := newMemTaskStore()
	owner := newTaskRouter(store, 1, false)

	w := doJSON(t, owner, http.MethodPost, "/api/tasks", `{"title":"a"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}

	stranger := newTaskRouter(store, 2, false)
	w = doJSON(t, stranger, http.MethodGet, "/api/tasks/1", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger status = %d, want %d", w.Code, http.StatusForbidden)
	}

	admin := newTaskRouter(store, 2, true)
	w = doJSON(t, admin, http.MethodGet, "/api/tasks/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want %d", w.Code, http.StatusOK)
	}

	w = doJSON(t, owner, http.MethodGet, "/api/tasks/42", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestTaskDeleteHTTP(t *testing.T) {
	store := newMemTaskStore()
	r := newTaskRouter(store, 1, false)

	w := doJSON(t, r, http.MethodPost, "/api/tasks", `{"title":"a"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/tasks/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if len(store.tasks) != 0 {
		t.Fatal("task not deleted")
	}

	w = doJSON(t, r, http.MethodDelete, "/api/tasks/abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
