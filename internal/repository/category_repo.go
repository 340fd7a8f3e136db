package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskdesk/internal/model"
)

type CategoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCategoryRepository(db *pgxpool.Pool, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{db: db, logger: logger}
}

func (r *CategoryRepository) Insert(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (name, color, user_id)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query, c.Name, c.Color, c.UserID).Scan(&c.ID)
	if err != nil {
		r.logger.Error("Failed to insert category",
			zap.Error(err),
			zap.Int("user_id", c.UserID),
		)
		return err
	}
	r.logger.Info("Category inserted",
		zap.Int("category_id", c.ID),
		zap.Int("user_id", c.UserID),
	)
	return nil
}

// ListByUser returns a user's categories with the number of tasks in each.
func (r *CategoryRepository) ListByUser(ctx context.Context, userID int) ([]model.Category, error) {
	query := `
        SELECT c.id, c.name, c.color, c.user_id, COUNT(t.id)
        FROM categories c
        LEFT JOIN tasks t ON t.category_id = c.id
        WHERE c.user_id = $1
        GROUP BY c.id
        ORDER BY c.id
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query categories",
			zap.Error(err),
			zap.Int("user_id", userID),
		)
		return nil, err
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.UserID, &c.TaskCount); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int) (*model.Category, error) {
	query := `
        SELECT id, name, color, user_id
        FROM categories
        WHERE id = $1
    `
	var c model.Category
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Color, &c.UserID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *model.Category) error {
	_, err := r.db.Exec(ctx,
		`UPDATE categories SET name = $1, color = $2 WHERE id = $3`,
		c.Name, c.Color, c.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update category",
			zap.Error(err),
			zap.Int("category_id", c.ID),
		)
	}
	return err
}

func (r *CategoryRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete category",
			zap.Error(err),
			zap.Int("category_id", id),
		)
		return err
	}
	r.logger.Info("Category deleted", zap.Int("category_id", id))
	return nil
}
