package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskdesk/internal/model"
)

type fakeTaskStore struct {
	tasks  map[int]*model.Task
	nextID int
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: map[int]*model.Task{}, nextID: 1}
}

func (s *fakeTaskStore) Insert(_ context.Context, t *model.Task) error {
	t.ID = s.nextID
	s.nextID++
	stored := *t
	s.tasks[t.ID] = &stored
	return nil
}

func (s *fakeTaskStore) ListByUser(_ context.Context, userID int) ([]model.Task, error) {
	var out []model.Task
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) FindByID(_ context.Context, id int) (*model.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (s *fakeTaskStore) Update(_ context.Context, t *model.Task) error {
	if _, ok := s.tasks[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *t
	s.tasks[t.ID] = &stored
	return nil
}

func (s *fakeTaskStore) Delete(_ context.Context, id int) error {
	delete(s.tasks, id)
	return nil
}

func newTaskServiceAt(store TaskStore, now time.Time) *TaskService {
	svc := NewTaskService(store, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestTaskCreateDefaults(t *testing.T) {
	store := newFakeTaskStore()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc := newTaskServiceAt(store, now)

	task, err := svc.Create(context.Background(), 7, CreateTaskInput{Title: "write report"})
	require.NoError(t, err)

	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedAt)
	assert.Nil(t, task.DueDate)
	assert.Equal(t, now, task.CreatedAt)
	assert.Equal(t, now, task.UpdatedAt)
	assert.Equal(t, 7, task.UserID)
}

func TestTaskCreateRequiresTitle(t *testing.T) {
	svc := newTaskServiceAt(newFakeTaskStore(), time.Now())

	_, err := svc.Create(context.Background(), 1, CreateTaskInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTaskCreateNumericPriority(t *testing.T) {
	svc := newTaskServiceAt(newFakeTaskStore(), time.Now())

	task, err := svc.Create(context.Background(), 1, CreateTaskInput{
		Title:    "a",
		Priority: json.RawMessage("3"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, task.Priority)
}

// Create and update share one policy: an unrecognized string priority
// falls back instead of being stored verbatim.
func TestTaskCreateInvalidStringPriorityDefaultsToMedium(t *testing.T) {
	svc := newTaskServiceAt(newFakeTaskStore(), time.Now())

	task, err := svc.Create(context.Background(), 1, CreateTaskInput{
		Title:    "a",
		Priority: json.RawMessage(`"urgent"`),
	})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, task.Priority)
}

func TestTaskCreateDueDateFormats(t *testing.T) {
	svc := newTaskServiceAt(newFakeTaskStore(), time.Now())

	for _, raw := range []string{"2024-06-01", "2024-06-01T09:30:00", "2024-06-01T09:30:00Z"} {
		task, err := svc.Create(context.Background(), 1, CreateTaskInput{Title: "a", DueDate: &raw})
		require.NoError(t, err, raw)
		require.NotNil(t, task.DueDate, raw)
	}

	bad := "June 1st"
	_, err := svc.Create(context.Background(), 1, CreateTaskInput{Title: "a", DueDate: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTaskUpdateCompletionTransitions(t *testing.T) {
	store := newFakeTaskStore()
	created := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc := newTaskServiceAt(store, created)
	owner := Actor{ID: 1}

	task, err := svc.Create(context.Background(), 1, CreateTaskInput{Title: "a"})
	require.NoError(t, err)

	// false -> true stamps completed_at.
	done := true
	completedAt := created.Add(time.Hour)
	svc.now = func() time.Time { return completedAt }
	task, err = svc.Update(context.Background(), task.ID, owner, TaskPatch{Completed: &done})
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, completedAt, *task.CompletedAt)

	// true -> true keeps the original stamp but refreshes updated_at.
	later := completedAt.Add(time.Hour)
	svc.now = func() time.Time { return later }
	task, err = svc.Update(context.Background(), task.ID, owner, TaskPatch{Completed: &done})
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, completedAt, *task.CompletedAt)
	assert.Equal(t, later, task.UpdatedAt)

	// true -> false clears the stamp.
	notDone := false
	task, err = svc.Update(context.Background(), task.ID, owner, TaskPatch{Completed: &notDone})
	require.NoError(t, err)
	assert.Nil(t, task.CompletedAt)
}

func TestTaskUpdateInvalidPriorityKeepsPrior(t *testing.T) {
	store := newFakeTaskStore()
	svc := newTaskServiceAt(store, time.Now())
	owner := Actor{ID: 1}

	task, err := svc.Create(context.Background(), 1, CreateTaskInput{
		Title:    "a",
		Priority: json.RawMessage(`"High"`),
	})
	require.NoError(t, err)

	task, err = svc.Update(context.Background(), task.ID, owner, TaskPatch{
		Priority: json.RawMessage(`"urgent"`),
	})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, task.Priority)
}

func TestTaskUpdateDueDateAbsentVersusNull(t *testing.T) {
	store := newFakeTaskStore()
	svc := newTaskServiceAt(store, time.Now())
	owner := Actor{ID: 1}

	due := "2024-06-01"
	task, err := svc.Create(context.Background(), 1, CreateTaskInput{Title: "a", DueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)

	// Absent key leaves the value untouched.
	title := "b"
	task, err = svc.Update(context.Background(), task.ID, owner, TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.NotNil(t, task.DueDate)

	// Explicit null clears it.
	task, err = svc.Update(context.Background(), task.ID, owner, TaskPatch{DueDateSet: true})
	require.NoError(t, err)
	assert.Nil(t, task.DueDate)
}

func TestTaskOwnershipGate(t *testing.T) {
	store := newFakeTaskStore()
	svc := newTaskServiceAt(store, time.Now())

	task, err := svc.Create(context.Background(), 1, CreateTaskInput{Title: "a"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), task.ID, Actor{ID: 2})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(context.Background(), task.ID, Actor{ID: 2, IsAdmin: true})
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), 999, Actor{ID: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskDelete(t *testing.T) {
	store := newFakeTaskStore()
	svc := newTaskServiceAt(store, time.Now())

	task, err := svc.Create(context.Background(), 1, CreateTaskInput{Title: "a"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), task.ID, Actor{ID: 2})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), task.ID, Actor{ID: 1}))

	_, err = store.FindByID(context.Background(), task.ID)
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
}
