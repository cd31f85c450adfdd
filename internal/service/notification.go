package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/localbazaar/market-service/internal/entities"

	"github.com/google/uuid"
)

type NotificationRepo interface {
	Create(ctx context.Context, n entities.Notification) error
	ListByUser(ctx context.Context, userID string) ([]entities.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
}

type NotificationPublisher interface {
	PublishNotification(ctx context.Context, n entities.Notification) error
}

// NotificationService is the append-only per-user inbox. It is also the
// Notifier the order engine and catalog write through; those writes join the
// caller's transaction via the context.
type NotificationService struct {
	logger    *slog.Logger
	repo      NotificationRepo
	publisher NotificationPublisher
}

func NewNotificationService(logger *slog.Logger, repo NotificationRepo, publisher NotificationPublisher) *NotificationService {
	return &NotificationService{
		logger:    logger.With(slog.String("service", "notification")),
		repo:      repo,
		publisher: publisher,
	}
}

func (s *NotificationService) Notify(ctx context.Context, userID, title, message string, kind entities.NotificationKind) error {
	n := entities.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	// Best effort: the push-dispatch topic losing an event never fails the
	// business operation that produced it.
	if s.publisher != nil {
		if err := s.publisher.PublishNotification(ctx, n); err != nil {
			s.logger.Error("failed to publish notification", slog.String("user_id", userID), slog.Any("error", err))
		}
	}
	return nil
}

func (s *NotificationService) ListFor(ctx context.Context, caller entities.User) ([]entities.Notification, error) {
	return s.repo.ListByUser(ctx, caller.ID)
}

// MarkAllRead is idempotent; repeating it is a harmless no-op.
func (s *NotificationService) MarkAllRead(ctx context.Context, caller entities.User) error {
	return s.repo.MarkAllRead(ctx, caller.ID)
}
