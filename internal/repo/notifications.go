package repo

import (
	"context"
	"fmt"

	"github.com/localbazaar/market-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type NotificationsRepo struct {
	executor
}

func NewNotificationsRepo(db *sqlx.DB) *NotificationsRepo {
	return &NotificationsRepo{executor: newExecutor(db)}
}

func (r *NotificationsRepo) Create(ctx context.Context, n entities.Notification) error {
	query, args := r.qb.Insert("notifications").
		Columns("id", "user_id", "title", "message", "kind", "read", "created_at").
		Values(n.ID, n.UserID, n.Title, n.Message, n.Kind, n.Read, n.CreatedAt).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID string) ([]entities.Notification, error) {
	query, args := r.qb.Select("id", "user_id", "title", "message", "kind", "read", "created_at").
		From("notifications").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		MustSql()

	var notifications []Notification
	if err := r.selectContext(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	result := make([]entities.Notification, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, NotificationToEntity(n))
	}
	return result, nil
}

func (r *NotificationsRepo) MarkAllRead(ctx context.Context, userID string) error {
	query, args := r.qb.Update("notifications").
		Set("read", true).
		Where(sq.Eq{"user_id": userID, "read": false}).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
