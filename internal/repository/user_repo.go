package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskdesk/internal/model"
)

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// adminClaimLockID serializes first-user registration. Under READ
// COMMITTED a plain count-then-insert transaction is not enough: two
// concurrent registrations can both count zero rows before either
// commits, and the unique indexes only collide on matching names.
const adminClaimLockID = 77001

// Create inserts a new user. The very first user stored becomes an
// admin; an advisory lock held for the transaction serializes the count
// and the insert so only one registration can claim the flag.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, adminClaimLockID); err != nil {
		return err
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	u.IsAdmin = count == 0

	query := `
        INSERT INTO users (username, email, password_hash, is_admin)
        VALUES ($1, $2, $3, $4)
        RETURNING id, date_joined
    `
	if err := tx.QueryRow(ctx, query,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.IsAdmin,
	).Scan(&u.ID, &u.DateJoined); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Info("User created",
		zap.Int("user_id", u.ID),
		zap.String("username", u.Username),
		zap.Bool("is_admin", u.IsAdmin),
	)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := `
        SELECT id, username, email, password_hash, is_admin, date_joined
        FROM users
        WHERE id = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.DateJoined,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
        SELECT id, username, email, password_hash, is_admin, date_joined
        FROM users
        WHERE email = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.DateJoined,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
        SELECT id, username, email, password_hash, is_admin, date_joined
        FROM users
        WHERE username = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.DateJoined,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int, username, email string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET username = $1, email = $2 WHERE id = $3`,
		username, email, id,
	)
	return err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`,
		passwordHash, id,
	)
	return err
}

func (r *UserRepository) SetAdmin(ctx context.Context, id int, isAdmin bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET is_admin = $1 WHERE id = $2`,
		isAdmin, id,
	)
	return err
}

// ListWithTaskCounts returns every user together with their task totals.
func (r *UserRepository) ListWithTaskCounts(ctx context.Context) ([]model.UserWithCounts, error) {
	query := `
        SELECT u.id, u.username, u.email, u.is_admin, u.date_joined,
               COUNT(t.id), COUNT(t.id) FILTER (WHERE t.completed)
        FROM users u
        LEFT JOIN tasks t ON t.user_id = u.id
        GROUP BY u.id
        ORDER BY u.id
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	users := []model.UserWithCounts{}
	for rows.Next() {
		var u model.UserWithCounts
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.IsAdmin, &u.DateJoined,
			&u.TaskCount, &u.CompletedTaskCount,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteCascade removes a user and everything they own. Tasks go first,
// then categories, then the user row, to satisfy the foreign keys.
func (r *UserRepository) DeleteCascade(ctx context.Context, id int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE user_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM categories WHERE user_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Info("User deleted with owned records", zap.Int("user_id", id))
	return nil
}

// CountJoinedBetween counts users whose join date falls in [from, to).
func (r *UserRepository) CountJoinedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE date_joined >= $1 AND date_joined < $2`,
		from, to,
	).Scan(&count)
	return count, err
}
