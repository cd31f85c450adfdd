package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/localbazaar/market-service/internal/entities"
	"github.com/localbazaar/market-service/internal/repo"

	"github.com/google/uuid"
)

// defaultCommission is the platform cut applied to every new shop,
// matching the marketplace's standard onboarding terms.
const defaultCommission = 5

type ShopRepo interface {
	Create(ctx context.Context, s entities.Shop) error
	Update(ctx context.Context, s entities.Shop) error
	GetByID(ctx context.Context, shopID string) (entities.Shop, error)
	GetByOwner(ctx context.Context, ownerID string) (entities.Shop, error)
	List(ctx context.Context, filter repo.ShopFilter) ([]entities.Shop, error)
	SetStatus(ctx context.Context, shopID string, status entities.ShopStatus) error
	SetFeatured(ctx context.Context, shopID string, featured bool) error
}

type ProductRepo interface {
	Create(ctx context.Context, p entities.Product) error
	Update(ctx context.Context, p entities.Product) error
	Delete(ctx context.Context, productID string) error
	GetByID(ctx context.Context, productID string) (entities.Product, error)
	ListByShop(ctx context.Context, shopID string) ([]entities.Product, error)
	AdjustStock(ctx context.Context, productID string, delta int) (int, error)
}

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}

type CatalogService struct {
	logger   *slog.Logger
	shops    ShopRepo
	products ProductRepo
	cache    Cache
	notifier Notifier
}

func NewCatalogService(logger *slog.Logger, shops ShopRepo, products ProductRepo, cache Cache, notifier Notifier) *CatalogService {
	return &CatalogService{
		logger:   logger.With(slog.String("service", "catalog")),
		shops:    shops,
		products: products,
		cache:    cache,
		notifier: notifier,
	}
}

// CreateShop registers a shopkeeper's shop, pending admin approval.
// One shop per owner is a hard invariant here, not a UI courtesy.
func (s *CatalogService) CreateShop(ctx context.Context, caller entities.User, shop entities.Shop) (entities.Shop, error) {
	if !caller.Is(entities.RoleShopkeeper) {
		return entities.Shop{}, fmt.Errorf("%w: only shopkeepers can create shops", entities.ErrForbidden)
	}

	_, err := s.shops.GetByOwner(ctx, caller.ID)
	if err == nil {
		return entities.Shop{}, fmt.Errorf("%w: you already have a shop", entities.ErrValidation)
	}
	if !errors.Is(err, entities.ErrShopNotFound) {
		return entities.Shop{}, err
	}

	shop.ID = uuid.NewString()
	shop.OwnerID = caller.ID
	shop.OwnerName = caller.Name
	shop.Status = entities.ShopPending
	shop.IsFeatured = false
	shop.Commission = defaultCommission
	shop.CreatedAt = time.Now()

	if err := s.shops.Create(ctx, shop); err != nil {
		return entities.Shop{}, err
	}
	s.logger.Info("shop created", slog.String("shop_id", shop.ID), slog.String("owner_id", caller.ID))
	return shop, nil
}

func (s *CatalogService) UpdateShop(ctx context.Context, caller entities.User, shop entities.Shop) (entities.Shop, error) {
	existing, err := s.shops.GetByID(ctx, shop.ID)
	if err != nil {
		return entities.Shop{}, err
	}
	if existing.OwnerID != caller.ID {
		return entities.Shop{}, fmt.Errorf("%w: not your shop", entities.ErrForbidden)
	}

	if err := s.shops.Update(ctx, shop); err != nil {
		return entities.Shop{}, err
	}
	s.cache.Delete(shop.ID)
	return s.shops.GetByID(ctx, shop.ID)
}

func (s *CatalogService) GetShop(ctx context.Context, shopID string) (entities.Shop, error) {
	if data, ok := s.cache.Get(shopID); ok {
		var shop entities.Shop
		if err := shop.Unmarshal(data); err == nil {
			return shop, nil
		}
		s.cache.Delete(shopID)
	}

	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return entities.Shop{}, err
	}

	if data, err := shop.Marshal(); err == nil {
		s.cache.Set(shop.ID, data)
	}
	return shop, nil
}

// ListShops is the customer-facing listing: approved shops only.
func (s *CatalogService) ListShops(ctx context.Context, featuredOnly bool) ([]entities.Shop, error) {
	return s.shops.List(ctx, repo.ShopFilter{
		Status:       entities.ShopApproved,
		FeaturedOnly: featuredOnly,
	})
}

// MyShop returns the caller's own shop regardless of moderation status.
func (s *CatalogService) MyShop(ctx context.Context, caller entities.User) (entities.Shop, error) {
	if !caller.Is(entities.RoleShopkeeper) {
		return entities.Shop{}, fmt.Errorf("%w: only shopkeepers own shops", entities.ErrForbidden)
	}
	return s.shops.GetByOwner(ctx, caller.ID)
}

// ListAllShops is the admin moderation queue: every shop, every status.
func (s *CatalogService) ListAllShops(ctx context.Context, caller entities.User) ([]entities.Shop, error) {
	if !caller.Is(entities.RoleAdmin) {
		return nil, fmt.Errorf("%w: admin only", entities.ErrForbidden)
	}
	return s.shops.List(ctx, repo.ShopFilter{})
}

func (s *CatalogService) ApproveShop(ctx context.Context, caller entities.User, shopID string) error {
	return s.moderate(ctx, caller, shopID, entities.ShopApproved,
		"Shop approved", "Your shop is live! Customers nearby can now find you.")
}

func (s *CatalogService) RejectShop(ctx context.Context, caller entities.User, shopID string) error {
	return s.moderate(ctx, caller, shopID, entities.ShopRejected,
		"Shop rejected", "Your shop listing was rejected. Contact support for details.")
}

func (s *CatalogService) moderate(ctx context.Context, caller entities.User, shopID string, status entities.ShopStatus, title, message string) error {
	if !caller.Is(entities.RoleAdmin) {
		return fmt.Errorf("%w: admin only", entities.ErrForbidden)
	}

	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return err
	}
	if err := s.shops.SetStatus(ctx, shopID, status); err != nil {
		return err
	}
	s.cache.Delete(shopID)

	if err := s.notifier.Notify(ctx, shop.OwnerID, title, message, entities.NotificationOrder); err != nil {
		s.logger.Error("failed to notify shop owner", slog.String("shop_id", shopID), slog.Any("error", err))
	}
	s.logger.Info("shop moderated", slog.String("shop_id", shopID), slog.String("status", string(status)))
	return nil
}

func (s *CatalogService) SetFeatured(ctx context.Context, caller entities.User, shopID string, featured bool) error {
	if !caller.Is(entities.RoleAdmin) {
		return fmt.Errorf("%w: admin only", entities.ErrForbidden)
	}
	if err := s.shops.SetFeatured(ctx, shopID, featured); err != nil {
		return err
	}
	s.cache.Delete(shopID)
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, caller entities.User, p entities.Product) (entities.Product, error) {
	shop, err := s.shops.GetByOwner(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, entities.ErrShopNotFound) {
			return entities.Product{}, fmt.Errorf("%w: you have no shop", entities.ErrForbidden)
		}
		return entities.Product{}, err
	}

	if p.Name == "" || p.Price <= 0 {
		return entities.Product{}, fmt.Errorf("%w: product needs a name and a positive price", entities.ErrValidation)
	}
	if !p.IsService && p.Stock < 0 {
		return entities.Product{}, fmt.Errorf("%w: stock cannot be negative", entities.ErrValidation)
	}

	p.ID = uuid.NewString()
	p.ShopID = shop.ID
	if p.IsService {
		p.Stock = entities.ServiceStock
	}

	if err := s.products.Create(ctx, p); err != nil {
		return entities.Product{}, err
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, caller entities.User, p entities.Product) (entities.Product, error) {
	existing, err := s.products.GetByID(ctx, p.ID)
	if err != nil {
		return entities.Product{}, err
	}
	if err := s.requireShopOwner(ctx, caller, existing.ShopID); err != nil {
		return entities.Product{}, err
	}

	if p.Name == "" || p.Price <= 0 {
		return entities.Product{}, fmt.Errorf("%w: product needs a name and a positive price", entities.ErrValidation)
	}
	if !existing.IsService && p.Stock < 0 {
		return entities.Product{}, fmt.Errorf("%w: stock cannot be negative", entities.ErrValidation)
	}

	p.ShopID = existing.ShopID
	p.IsService = existing.IsService
	if p.IsService {
		p.Stock = entities.ServiceStock
	}

	if err := s.products.Update(ctx, p); err != nil {
		return entities.Product{}, err
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, caller entities.User, productID string) error {
	existing, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if err := s.requireShopOwner(ctx, caller, existing.ShopID); err != nil {
		return err
	}
	return s.products.Delete(ctx, productID)
}

func (s *CatalogService) GetProduct(ctx context.Context, productID string) (entities.Product, error) {
	return s.products.GetByID(ctx, productID)
}

func (s *CatalogService) ListProducts(ctx context.Context, shopID string) ([]entities.Product, error) {
	return s.products.ListByShop(ctx, shopID)
}

func (s *CatalogService) requireShopOwner(ctx context.Context, caller entities.User, shopID string) error {
	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return err
	}
	if shop.OwnerID != caller.ID {
		return fmt.Errorf("%w: not your shop", entities.ErrForbidden)
	}
	return nil
}
