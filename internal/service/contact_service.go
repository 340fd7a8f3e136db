package service

import (
	"context"

	"go.uber.org/zap"

	"taskdesk/internal/model"
	"taskdesk/pkg/metrics"
)

// ContactStore is the persistence surface for the contact inbox.
type ContactStore interface {
	Insert(ctx context.Context, m *model.ContactMessage) error
	ListAll(ctx context.Context) ([]model.ContactMessage, error)
	MarkRead(ctx context.Context, id int) (int64, error)
}

// EventPublisher fans a domain event out to the broker. A nil publisher
// disables publishing.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
	IsConnected() bool
}

type ContactService struct {
	store     ContactStore
	publisher EventPublisher
	logger    *zap.Logger
}

func NewContactService(store ContactStore, publisher EventPublisher, logger *zap.Logger) *ContactService {
	return &ContactService{store: store, publisher: publisher, logger: logger}
}

// Submit records an inbound message. Anyone may call this; no session is
// involved.
func (s *ContactService) Submit(ctx context.Context, name, email, subject, message string) (*model.ContactMessage, error) {
	m := &model.ContactMessage{
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: message,
	}
	if err := s.store.Insert(ctx, m); err != nil {
		return nil, err
	}

	metrics.IncrementContactMessage()

	if s.publisher != nil && s.publisher.IsConnected() {
		// Best effort: a broker outage must not fail the submission.
		if err := s.publisher.Publish("contact.message.created", map[string]any{
			"id":      m.ID,
			"name":    m.Name,
			"subject": m.Subject,
		}); err != nil {
			s.logger.Warn("Failed to publish contact event",
				zap.Int("message_id", m.ID),
				zap.Error(err),
			)
		}
	}

	return m, nil
}

func (s *ContactService) ListAll(ctx context.Context) ([]model.ContactMessage, error) {
	return s.store.ListAll(ctx)
}

// MarkRead flags a message as read; repeating the call is a no-op.
func (s *ContactService) MarkRead(ctx context.Context, id int) error {
	affected, err := s.store.MarkRead(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound("Message not found")
	}
	return nil
}
