package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskdesk/internal/model"
	"taskdesk/pkg/metrics"
	"taskdesk/pkg/rbac"
)

// TaskStore is the persistence surface the task service needs.
type TaskStore interface {
	Insert(ctx context.Context, t *model.Task) error
	ListByUser(ctx context.Context, userID int) ([]model.Task, error)
	FindByID(ctx context.Context, id int) (*model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id int) error
}

type TaskService struct {
	store  TaskStore
	logger *zap.Logger
	now    func() time.Time
}

func NewTaskService(store TaskStore, logger *zap.Logger) *TaskService {
	return &TaskService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CreateTaskInput carries the create request. Priority stays raw because
// clients send it as either a number or a string.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    json.RawMessage
	DueDate     *string
	CategoryID  *int
}

// TaskPatch carries a partial update. The Set flags distinguish an
// explicit null from an absent key for the clearable fields.
type TaskPatch struct {
	Title       *string
	Description *string
	Notes       *string
	Completed   *bool
	Priority    json.RawMessage
	DueDate     *string
	DueDateSet  bool
	CategoryID  *int
	CategorySet bool
}

func (s *TaskService) List(ctx context.Context, ownerID int) ([]model.Task, error) {
	return s.store.ListByUser(ctx, ownerID)
}

func (s *TaskService) Create(ctx context.Context, ownerID int, in CreateTaskInput) (*model.Task, error) {
	if in.Title == "" {
		return nil, invalid("Title is required")
	}

	priority := model.PriorityMedium
	if len(in.Priority) > 0 {
		if p, ok := NormalizePriority(in.Priority); ok {
			priority = p
		}
	}

	dueDate, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	t := &model.Task{
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      ownerID,
		// Stored as supplied; the category is not checked against the owner.
		CategoryID: in.CategoryID,
	}

	if err := s.store.Insert(ctx, t); err != nil {
		return nil, err
	}

	metrics.IncrementTaskOperation("create")
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, taskID int, actor Actor) (*model.Task, error) {
	t, err := s.findOwned(ctx, taskID, actor)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) Update(ctx context.Context, taskID int, actor Actor, patch TaskPatch) (*model.Task, error) {
	t, err := s.findOwned(ctx, taskID, actor)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Notes != nil {
		t.Notes = patch.Notes
	}
	if patch.Completed != nil {
		wasCompleted := t.Completed
		t.Completed = *patch.Completed
		if !wasCompleted && t.Completed {
			completedAt := s.now().UTC()
			t.CompletedAt = &completedAt
		} else if wasCompleted && !t.Completed {
			t.CompletedAt = nil
		}
	}
	if len(patch.Priority) > 0 {
		// An unrecognized value keeps the prior priority.
		if p, ok := NormalizePriority(patch.Priority); ok {
			t.Priority = p
		}
	}
	if patch.DueDateSet {
		dueDate, err := parseDueDate(patch.DueDate)
		if err != nil {
			return nil, err
		}
		t.DueDate = dueDate
	}
	if patch.CategorySet {
		t.CategoryID = patch.CategoryID
		t.Category = nil
	}

	// Refreshed even for a no-op patch.
	t.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}

	metrics.IncrementTaskOperation("update")
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, taskID int, actor Actor) error {
	t, err := s.findOwned(ctx, taskID, actor)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, t.ID); err != nil {
		return err
	}

	metrics.IncrementTaskOperation("delete")
	return nil
}

func (s *TaskService) findOwned(ctx context.Context, taskID int, actor Actor) (*model.Task, error) {
	t, err := s.store.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("Task not found")
		}
		return nil, err
	}

	if !rbac.CanModify(actor.ID, actor.IsAdmin, t.UserID) {
		s.logger.Warn("Task access denied",
			zap.Int("task_id", taskID),
			zap.Int("actor_id", actor.ID),
			zap.Int("owner_id", t.UserID),
		)
		return nil, forbidden("Not authorized")
	}
	return t, nil
}

var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, *raw); err == nil {
			return &t, nil
		}
	}
	return nil, invalid("Invalid due date format")
}
