package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskdesk/internal/model"
)

type ContactMessageRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewContactMessageRepository(db *pgxpool.Pool, logger *zap.Logger) *ContactMessageRepository {
	return &ContactMessageRepository{db: db, logger: logger}
}

func (r *ContactMessageRepository) Insert(ctx context.Context, m *model.ContactMessage) error {
	query := `
        INSERT INTO contact_messages (name, email, subject, message)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, is_read
    `
	err := r.db.QueryRow(ctx, query,
		m.Name, m.Email, m.Subject, m.Message,
	).Scan(&m.ID, &m.CreatedAt, &m.IsRead)
	if err != nil {
		r.logger.Error("Failed to insert contact message", zap.Error(err))
		return err
	}
	r.logger.Info("Contact message inserted", zap.Int("message_id", m.ID))
	return nil
}

// ListAll returns every message, newest first.
func (r *ContactMessageRepository) ListAll(ctx context.Context) ([]model.ContactMessage, error) {
	query := `
        SELECT id, name, email, subject, message, created_at, is_read
        FROM contact_messages
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query contact messages", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	messages := []model.ContactMessage{}
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt, &m.IsRead,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkRead flags a message as read. Returns the number of rows touched so
// the caller can distinguish a missing message.
func (r *ContactMessageRepository) MarkRead(ctx context.Context, id int) (int64, error) {
	result, err := r.db.Exec(ctx,
		`UPDATE contact_messages SET is_read = TRUE WHERE id = $1`,
		id,
	)
	if err != nil {
		r.logger.Error("Failed to mark message read",
			zap.Error(err),
			zap.Int("message_id", id),
		)
		return 0, err
	}
	return result.RowsAffected(), nil
}
