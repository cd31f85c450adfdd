package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/localbazaar/market-service/internal/entities"
	"github.com/localbazaar/market-service/pkg/trm"

	"github.com/google/uuid"
)

type ReviewRepo interface {
	Create(ctx context.Context, rev entities.Review) error
	ListByShop(ctx context.Context, shopID string) ([]entities.Review, error)
	ShopRating(ctx context.Context, shopID string) (*float64, int, error)
}

type OrderReader interface {
	GetByID(ctx context.Context, orderID string) (entities.Order, error)
	MarkRated(ctx context.Context, orderID string) error
}

type ReviewService struct {
	logger    *slog.Logger
	txManager trm.Manager
	reviews   ReviewRepo
	orders    OrderReader
}

func NewReviewService(logger *slog.Logger, txManager trm.Manager, reviews ReviewRepo, orders OrderReader) *ReviewService {
	return &ReviewService{
		logger:    logger.With(slog.String("service", "review")),
		txManager: txManager,
		reviews:   reviews,
		orders:    orders,
	}
}

// Submit records one review per order. The order must be the caller's, be
// delivered, and be unrated; flipping is_rated and inserting the review
// commit together, so a double submit can never produce two reviews.
func (s *ReviewService) Submit(ctx context.Context, caller entities.User, orderID string, rating int, comment string) (entities.Review, error) {
	if !caller.Is(entities.RoleCustomer) {
		return entities.Review{}, fmt.Errorf("%w: only customers review orders", entities.ErrForbidden)
	}
	if rating < 1 || rating > 5 {
		return entities.Review{}, fmt.Errorf("%w: rating must be between 1 and 5", entities.ErrValidation)
	}
	if comment == "" {
		return entities.Review{}, fmt.Errorf("%w: please write a comment", entities.ErrValidation)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return entities.Review{}, err
	}
	if order.CustomerID != caller.ID {
		return entities.Review{}, fmt.Errorf("%w: not your order", entities.ErrForbidden)
	}

	review := entities.Review{
		ID:           uuid.NewString(),
		ShopID:       order.ShopID,
		OrderID:      order.ID,
		CustomerID:   caller.ID,
		CustomerName: caller.Name,
		Rating:       rating,
		Comment:      comment,
		CreatedAt:    time.Now(),
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.orders.MarkRated(ctx, order.ID); err != nil {
			return err
		}
		return s.reviews.Create(ctx, review)
	})
	if err != nil {
		return entities.Review{}, err
	}

	s.logger.Debug("review submitted", slog.String("order_id", order.ID), slog.Int("rating", rating))
	return review, nil
}

func (s *ReviewService) ListForShop(ctx context.Context, shopID string) ([]entities.Review, error) {
	return s.reviews.ListByShop(ctx, shopID)
}

// ShopRating reports the mean rating rounded to one decimal; nil means the
// shop is still unrated.
func (s *ReviewService) ShopRating(ctx context.Context, shopID string) (*float64, int, error) {
	return s.reviews.ShopRating(ctx, shopID)
}
