package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskdesk/internal/model"
	"taskdesk/pkg/rbac"
)

// CategoryStore is the persistence surface the category service needs.
type CategoryStore interface {
	Insert(ctx context.Context, c *model.Category) error
	ListByUser(ctx context.Context, userID int) ([]model.Category, error)
	FindByID(ctx context.Context, id int) (*model.Category, error)
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id int) error
}

// CategoryTaskCounter counts the tasks still referencing a category.
type CategoryTaskCounter interface {
	CountByCategory(ctx context.Context, categoryID int) (int, error)
}

type CategoryService struct {
	store  CategoryStore
	tasks  CategoryTaskCounter
	logger *zap.Logger
}

func NewCategoryService(store CategoryStore, tasks CategoryTaskCounter, logger *zap.Logger) *CategoryService {
	return &CategoryService{store: store, tasks: tasks, logger: logger}
}

func (s *CategoryService) List(ctx context.Context, ownerID int) ([]model.Category, error) {
	return s.store.ListByUser(ctx, ownerID)
}

func (s *CategoryService) Create(ctx context.Context, ownerID int, name, color string) (*model.Category, error) {
	if color == "" {
		color = model.DefaultCategoryColor
	}

	c := &model.Category{
		Name:   name,
		Color:  color,
		UserID: ownerID,
	}
	if err := s.store.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update changes name and/or color; an omitted field keeps its value.
func (s *CategoryService) Update(ctx context.Context, categoryID int, actor Actor, name, color *string) (*model.Category, error) {
	c, err := s.findOwned(ctx, categoryID, actor)
	if err != nil {
		return nil, err
	}

	if name != nil {
		c.Name = *name
	}
	if color != nil {
		c.Color = *color
	}

	if err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a category unless tasks still reference it.
func (s *CategoryService) Delete(ctx context.Context, categoryID int, actor Actor) error {
	c, err := s.findOwned(ctx, categoryID, actor)
	if err != nil {
		return err
	}

	count, err := s.tasks.CountByCategory(ctx, c.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return invalid("Cannot delete category with tasks")
	}

	return s.store.Delete(ctx, c.ID)
}

func (s *CategoryService) findOwned(ctx context.Context, categoryID int, actor Actor) (*model.Category, error) {
	c, err := s.store.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("Category not found")
		}
		return nil, err
	}

	if !rbac.CanModify(actor.ID, actor.IsAdmin, c.UserID) {
		s.logger.Warn("Category access denied",
			zap.Int("category_id", categoryID),
			zap.Int("actor_id", actor.ID),
			zap.Int("owner_id", c.UserID),
		)
		return nil, forbidden("Not authorized")
	}
	return c, nil
}
