package service_test

import (
	"context"
	"testing"

	"github.com/localbazaar/market-service/internal/entities"
	"github.com/localbazaar/market-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReviewService(m *memStore) *service.ReviewService {
	return service.NewReviewService(discardLogger(), m, reviewRepo{m}, m)
}

func seedDeliveredOrder(m *memStore, orderID string) {
	m.orders[orderID] = entities.Order{
		ID:         orderID,
		CustomerID: customer.ID,
		ShopID:     "shop-a",
		Status:     entities.OrderDelivered,
	}
}

func TestReviewService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("delivered order earns exactly one review", func(t *testing.T) {
		m := newMemStore()
		seedDeliveredOrder(m, "ord-1")
		svc := newReviewService(m)

		review, err := svc.Submit(ctx, customer, "ord-1", 4, "fresh vegetables, fast delivery")
		require.NoError(t, err)
		assert.Equal(t, "shop-a", review.ShopID)
		assert.Equal(t, 4, review.Rating)
		assert.True(t, m.orders["ord-1"].IsRated)

		_, err = svc.Submit(ctx, customer, "ord-1", 5, "trying again")
		assert.ErrorIs(t, err, entities.ErrNotEligible)
		assert.Len(t, m.reviews, 1)
	})

	t.Run("undelivered orders are not rateable", func(t *testing.T) {
		m := newMemStore()
		m.orders["ord-2"] = entities.Order{
			ID: "ord-2", CustomerID: customer.ID, ShopID: "shop-a",
			Status: entities.OrderAccepted,
		}
		svc := newReviewService(m)

		_, err := svc.Submit(ctx, customer, "ord-2", 5, "looks promising")
		assert.ErrorIs(t, err, entities.ErrNotEligible)
		assert.Empty(t, m.reviews)
	})

	t.Run("only the buyer reviews", func(t *testing.T) {
		m := newMemStore()
		seedDeliveredOrder(m, "ord-3")
		svc := newReviewService(m)

		other := entities.User{ID: "cust-2", Name: "Vik", Role: entities.RoleCustomer}
		_, err := svc.Submit(ctx, other, "ord-3", 5, "not my order though")
		assert.ErrorIs(t, err, entities.ErrForbidden)

		_, err = svc.Submit(ctx, keeper, "ord-3", 5, "self praise")
		assert.ErrorIs(t, err, entities.ErrForbidden)
	})

	t.Run("rating bounds and comment are enforced", func(t *testing.T) {
		m := newMemStore()
		seedDeliveredOrder(m, "ord-4")
		svc := newReviewService(m)

		_, err := svc.Submit(ctx, customer, "ord-4", 0, "zero stars")
		assert.ErrorIs(t, err, entities.ErrValidation)

		_, err = svc.Submit(ctx, customer, "ord-4", 6, "six stars")
		assert.ErrorIs(t, err, entities.ErrValidation)

		_, err = svc.Submit(ctx, customer, "ord-4", 3, "")
		assert.ErrorIs(t, err, entities.ErrValidation)
	})
}

func TestReviewService_ShopRating(t *testing.T) {
	ctx := context.Background()
	m := newMemStore()
	svc := newReviewService(m)

	rating, count, err := svc.ShopRating(ctx, "shop-a")
	require.NoError(t, err)
	assert.Nil(t, rating, "unrated shop has no rating")
	assert.Zero(t, count)

	m.reviews["r1"] = entities.Review{ID: "r1", ShopID: "shop-a", Rating: 4}
	m.reviews["r2"] = entities.Review{ID: "r2", ShopID: "shop-a", Rating: 5}
	m.reviews["r3"] = entities.Review{ID: "r3", ShopID: "shop-a", Rating: 4}

	rating, count, err = svc.ShopRating(ctx, "shop-a")
	require.NoError(t, err)
	require.NotNil(t, rating)
	assert.InDelta(t, 4.3, *rating, 0.001, "mean is rounded to one decimal")
	assert.Equal(t, 3, count)
}
