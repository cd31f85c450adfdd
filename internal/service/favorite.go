package service

import (
	"context"
	"log/slog"

	"github.com/localbazaar/market-service/internal/entities"
)

type FavoriteRepo interface {
	Toggle(ctx context.Context, userID, shopID string) error
	List(ctx context.Context, userID string) ([]string, error)
}

type FavoriteService struct {
	logger *slog.Logger
	repo   FavoriteRepo
	shops  ShopGetter
}

func NewFavoriteService(logger *slog.Logger, repo FavoriteRepo, shops ShopGetter) *FavoriteService {
	return &FavoriteService{
		logger: logger.With(slog.String("service", "favorite")),
		repo:   repo,
		shops:  shops,
	}
}

// Toggle flips the shop in the caller's favorites and returns the updated set.
func (s *FavoriteService) Toggle(ctx context.Context, caller entities.User, shopID string) ([]string, error) {
	if _, err := s.shops.GetByID(ctx, shopID); err != nil {
		return nil, err
	}
	if err := s.repo.Toggle(ctx, caller.ID, shopID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, caller.ID)
}

func (s *FavoriteService) List(ctx context.Context, caller entities.User) ([]string, error) {
	return s.repo.List(ctx, caller.ID)
}
