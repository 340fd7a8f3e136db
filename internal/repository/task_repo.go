package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskdesk/internal/model"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Inserting task",
		zap.Int("user_id", t.UserID),
		zap.String("title", t.Title),
		zap.String("priority", t.Priority),
	)
	query := `
        INSERT INTO tasks (title, description, notes, completed, completed_at,
                           priority, due_date, created_at, updated_at, user_id, category_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query,
		t.Title,
		t.Description,
		t.Notes,
		t.Completed,
		t.CompletedAt,
		t.Priority,
		t.DueDate,
		t.CreatedAt,
		t.UpdatedAt,
		t.UserID,
		t.CategoryID,
	).Scan(&t.ID)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.Int("user_id", t.UserID),
		)
		return err
	}
	r.logger.Info("Task inserted successfully",
		zap.Int("task_id", t.ID),
		zap.Int("user_id", t.UserID),
	)
	return nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID int) ([]model.Task, error) {
	query := `
        SELECT t.id, t.title, t.description, t.notes, t.completed, t.completed_at,
               t.priority, t.due_date, t.created_at, t.updated_at, t.user_id, t.category_id,
               c.id, c.name, c.color
        FROM tasks t
        LEFT JOIN categories c ON c.id = t.category_id
        WHERE t.user_id = $1
        ORDER BY t.id
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query tasks",
			zap.Error(err),
			zap.Int("user_id", userID),
		)
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		var catID *int
		var catName, catColor *string
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Notes, &t.Completed, &t.CompletedAt,
			&t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt, &t.UserID, &t.CategoryID,
			&catID, &catName, &catColor,
		); err != nil {
			return nil, err
		}
		if catID != nil {
			t.Category = &model.CategorySummary{ID: *catID, Name: *catName, Color: *catColor}
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// FindByID loads one task with its category summary and owner reference.
func (r *TaskRepository) FindByID(ctx context.Context, id int) (*model.Task, error) {
	query := `
        SELECT t.id, t.title, t.description, t.notes, t.completed, t.completed_at,
               t.priority, t.due_date, t.created_at, t.updated_at, t.user_id, t.category_id,
               c.id, c.name, c.color,
               u.id, u.username
        FROM tasks t
        LEFT JOIN categories c ON c.id = t.category_id
        JOIN users u ON u.id = t.user_id
        WHERE t.id = $1
    `
	var t model.Task
	var catID *int
	var catName, catColor *string
	var owner model.UserSummary
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Notes, &t.Completed, &t.CompletedAt,
		&t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt, &t.UserID, &t.CategoryID,
		&catID, &catName, &catColor,
		&owner.ID, &owner.Username,
	)
	if err != nil {
		return nil, err
	}
	if catID != nil {
		t.Category = &model.CategorySummary{ID: *catID, Name: *catName, Color: *catColor}
	}
	t.CreatedBy = &owner
	return &t, nil
}

// Update writes every mutable field in a single statement so a partial
// patch is never observable.
func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	query := `
        UPDATE tasks
        SET title = $1, description = $2, notes = $3, completed = $4,
            completed_at = $5, priority = $6, due_date = $7, updated_at = $8,
            category_id = $9
        WHERE id = $10
    `
	result, err := r.db.Exec(ctx, query,
		t.Title,
		t.Description,
		t.Notes,
		t.Completed,
		t.CompletedAt,
		t.Priority,
		t.DueDate,
		t.UpdatedAt,
		t.CategoryID,
		t.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update task",
			zap.Error(err),
			zap.Int("task_id", t.ID),
		)
		return err
	}
	r.logger.Info("Task updated",
		zap.Int("task_id", t.ID),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task",
			zap.Error(err),
			zap.Int("task_id", id),
		)
		return err
	}
	r.logger.Info("Task deleted", zap.Int("task_id", id))
	return nil
}

// CountForUser returns a user's total and completed task counts.
func (r *TaskRepository) CountForUser(ctx context.Context, userID int) (int, int, error) {
	var total, completed int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE completed) FROM tasks WHERE user_id = $1`,
		userID,
	).Scan(&total, &completed)
	return total, completed, err
}

// CountByCategory counts tasks still referencing a category.
func (r *TaskRepository) CountByCategory(ctx context.Context, categoryID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE category_id = $1`,
		categoryID,
	).Scan(&count)
	return count, err
}

// CountByStatus returns the global active and completed task counts.
func (r *TaskRepository) CountByStatus(ctx context.Context) (int, int, error) {
	var active, completed int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE NOT completed), COUNT(*) FILTER (WHERE completed) FROM tasks`,
	).Scan(&active, &completed)
	return active, completed, err
}
