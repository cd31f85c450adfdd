package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/localbazaar/market-service/internal/entities"
	"github.com/localbazaar/market-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noticeRepo struct {
	byUser  map[string][]entities.Notification
	failOn  string
	allRead map[string]bool
}

func newNoticeRepo() *noticeRepo {
	return &noticeRepo{byUser: map[string][]entities.Notification{}, allRead: map[string]bool{}}
}

func (r *noticeRepo) Create(ctx context.Context, n entities.Notification) error {
	if r.failOn == n.UserID {
		return errors.New("insert failed")
	}
	r.byUser[n.UserID] = append(r.byUser[n.UserID], n)
	return nil
}

func (r *noticeRepo) ListByUser(ctx context.Context, userID string) ([]entities.Notification, error) {
	return r.byUser[userID], nil
}

func (r *noticeRepo) MarkAllRead(ctx context.Context, userID string) error {
	r.allRead[userID] = true
	return nil
}

type capturePublisher struct {
	published []entities.Notification
	err       error
}

func (p *capturePublisher) PublishNotification(ctx context.Context, n entities.Notification) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, n)
	return nil
}

func TestNotificationService_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and publishes", func(t *testing.T) {
		repo := newNoticeRepo()
		pub := &capturePublisher{}
		svc := service.NewNotificationService(discardLogger(), repo, pub)

		err := svc.Notify(ctx, "user-1", "Order update", "your order was accepted", entities.NotificationOrder)
		require.NoError(t, err)

		require.Len(t, repo.byUser["user-1"], 1)
		got := repo.byUser["user-1"][0]
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "Order update", got.Title)
		assert.Equal(t, entities.NotificationOrder, got.Kind)

		require.Len(t, pub.published, 1)
		assert.Equal(t, got.ID, pub.published[0].ID)
	})

	t.Run("publish failure does not fail the notify", func(t *testing.T) {
		repo := newNoticeRepo()
		pub := &capturePublisher{err: errors.New("broker down")}
		svc := service.NewNotificationService(discardLogger(), repo, pub)

		err := svc.Notify(ctx, "user-1", "t", "m", entities.NotificationOrder)
		require.NoError(t, err)
		assert.Len(t, repo.byUser["user-1"], 1)
	})

	t.Run("repo failure surfaces", func(t *testing.T) {
		repo := newNoticeRepo()
		repo.failOn = "user-1"
		svc := service.NewNotificationService(discardLogger(), repo, &capturePublisher{})

		err := svc.Notify(ctx, "user-1", "t", "m", entities.NotificationOrder)
		assert.Error(t, err)
	})
}

func TestNotificationService_Inbox(t *testing.T) {
	ctx := context.Background()
	repo := newNoticeRepo()
	svc := service.NewNotificationService(discardLogger(), repo, &capturePublisher{})
	caller := entities.User{ID: "user-1", Role: entities.RoleCustomer}

	require.NoError(t, svc.Notify(ctx, caller.ID, "a", "first", entities.NotificationOrder))
	require.NoError(t, svc.Notify(ctx, caller.ID, "b", "second", entities.NotificationQuote))
	require.NoError(t, svc.Notify(ctx, "someone-else", "c", "not yours", entities.NotificationOrder))

	got, err := svc.ListFor(ctx, caller)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, svc.MarkAllRead(ctx, caller))
	assert.True(t, repo.allRead[caller.ID])
}

type userLookup map[string]entities.User

func (u userLookup) GetByID(ctx context.Context, userID string) (entities.User, error) {
	user, ok := u[userID]
	if !ok {
		return entities.User{}, entities.ErrUserNotFound
	}
	return user, nil
}

func TestIdentityService_Resolve(t *testing.T) {
	ctx := context.Background()
	svc := service.NewIdentityService(discardLogger(), userLookup{
		"tok-1": {ID: "tok-1", Name: "Asha", Role: entities.RoleCustomer},
	})

	t.Run("known token resolves", func(t *testing.T) {
		user, err := svc.Resolve(ctx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, "Asha", user.Name)
	})

	t.Run("empty token is rejected without a lookup", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "")
		assert.ErrorIs(t, err, entities.ErrUserNotFound)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "tok-missing")
		assert.ErrorIs(t, err, entities.ErrUserNotFound)
	})
}
