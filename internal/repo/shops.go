package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/localbazaar/market-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var shopColumns = []string{
	"shops.id", "shops.owner_id", "shops.owner_name", "shops.name", "shops.category", "shops.shop_type",
	"shops.address", "shops.landmark", "shops.pincode", "shops.city", "shops.state", "shops.phone", "shops.whatsapp",
	"shops.opening_hours", "shops.image_url", "shops.logo_url",
	"shops.status", "shops.is_featured", "shops.commission",
	"shops.delivery_available", "shops.delivery_radius", "shops.delivery_fee", "shops.per_km_charge",
	"shops.latitude", "shops.longitude", "shops.created_at",
	"r.avg_rating", "r.review_count",
}

const shopRatingJoin = `(SELECT shop_id, AVG(rating) AS avg_rating, COUNT(*) AS review_count
	FROM reviews GROUP BY shop_id) r ON r.shop_id = shops.id`

type ShopsRepo struct {
	executor
}

func NewShopsRepo(db *sqlx.DB) *ShopsRepo {
	return &ShopsRepo{executor: newExecutor(db)}
}

// ShopFilter narrows List. Zero value lists everything (admin view).
type ShopFilter struct {
	Status       entities.ShopStatus
	OwnerID      string
	FeaturedOnly bool
}

func (r *ShopsRepo) Create(ctx context.Context, s entities.Shop) error {
	query, args := r.qb.Insert("shops").
		Columns(
			"id", "owner_id", "owner_name", "name", "category", "shop_type",
			"address", "landmark", "pincode", "city", "state", "phone", "whatsapp",
			"opening_hours", "image_url", "logo_url",
			"status", "is_featured", "commission",
			"delivery_available", "delivery_radius", "delivery_fee", "per_km_charge",
			"latitude", "longitude", "created_at",
		).
		Values(
			s.ID, s.OwnerID, s.OwnerName, s.Name, s.Category, s.Type,
			s.Address, nullString(s.Landmark), s.Pincode, s.City, s.State, s.Phone, nullString(s.WhatsApp),
			s.OpeningHours, nullString(s.ImageURL), nullString(s.LogoURL),
			s.Status, s.IsFeatured, s.Commission,
			s.DeliveryAvailable, s.DeliveryRadius, s.DeliveryFee, s.PerKmCharge,
			s.Latitude, s.Longitude, s.CreatedAt,
		).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create shop: %w", err)
	}
	return nil
}

func (r *ShopsRepo) Update(ctx context.Context, s entities.Shop) error {
	query, args := r.qb.Update("shops").
		Set("name", s.Name).
		Set("category", s.Category).
		Set("shop_type", s.Type).
		Set("address", s.Address).
		Set("landmark", nullString(s.Landmark)).
		Set("pincode", s.Pincode).
		Set("city", s.City).
		Set("state", s.State).
		Set("phone", s.Phone).
		Set("whatsapp", nullString(s.WhatsApp)).
		Set("opening_hours", s.OpeningHours).
		Set("image_url", nullString(s.ImageURL)).
		Set("logo_url", nullString(s.LogoURL)).
		Set("delivery_available", s.DeliveryAvailable).
		Set("delivery_radius", s.DeliveryRadius).
		Set("delivery_fee", s.DeliveryFee).
		Set("per_km_charge", s.PerKmCharge).
		Set("latitude", s.Latitude).
		Set("longitude", s.Longitude).
		Where(sq.Eq{"id": s.ID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update shop: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entities.ErrShopNotFound
	}
	return nil
}

func (r *ShopsRepo) GetByID(ctx context.Context, shopID string) (entities.Shop, error) {
	query, args := r.qb.Select(shopColumns...).
		From("shops").
		JoinClause("LEFT JOIN " + shopRatingJoin).
		Where(sq.Eq{"shops.id": shopID}).
		MustSql()

	var shop Shop
	err := r.getContext(ctx, &shop, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Shop{}, entities.ErrShopNotFound
	}
	if err != nil {
		return entities.Shop{}, fmt.Errorf("failed to get shop: %w", err)
	}
	return ShopToEntity(shop), nil
}

func (r *ShopsRepo) GetByOwner(ctx context.Context, ownerID string) (entities.Shop, error) {
	query, args := r.qb.Select(shopColumns...).
		From("shops").
		JoinClause("LEFT JOIN " + shopRatingJoin).
		Where(sq.Eq{"shops.owner_id": ownerID}).
		MustSql()

	var shop Shop
	err := r.getContext(ctx, &shop, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Shop{}, entities.ErrShopNotFound
	}
	if err != nil {
		return entities.Shop{}, fmt.Errorf("failed to get shop by owner: %w", err)
	}
	return ShopToEntity(shop), nil
}

func (r *ShopsRepo) List(ctx context.Context, filter ShopFilter) ([]entities.Shop, error) {
	q := r.qb.Select(shopColumns...).
		From("shops").
		JoinClause("LEFT JOIN " + shopRatingJoin).
		OrderBy("shops.created_at DESC")

	if filter.Status != "" {
		q = q.Where(sq.Eq{"shops.status": filter.Status})
	}
	if filter.OwnerID != "" {
		q = q.Where(sq.Eq{"shops.owner_id": filter.OwnerID})
	}
	if filter.FeaturedOnly {
		q = q.Where(sq.Eq{"shops.is_featured": true})
	}

	query, args := q.MustSql()

	var shops []Shop
	if err := r.selectContext(ctx, &shops, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}

	result := make([]entities.Shop, 0, len(shops))
	for _, s := range shops {
		result = append(result, ShopToEntity(s))
	}
	return result, nil
}

func (r *ShopsRepo) SetStatus(ctx context.Context, shopID string, status entities.ShopStatus) error {
	query, args := r.qb.Update("shops").
		Set("status", status).
		Where(sq.Eq{"id": shopID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set shop status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entities.ErrShopNotFound
	}
	return nil
}

func (r *ShopsRepo) SetFeatured(ctx context.Context, shopID string, featured bool) error {
	query, args := r.qb.Update("shops").
		Set("is_featured", featured).
		Where(sq.Eq{"id": shopID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set shop featured flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entities.ErrShopNotFound
	}
	return nil
}
