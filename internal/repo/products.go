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

var productColumns = []string{
	"id", "shop_id", "name", "description", "price", "stock", "image_url", "is_service",
}

type ProductsRepo struct {
	executor
}

func NewProductsRepo(db *sqlx.DB) *ProductsRepo {
	return &ProductsRepo{executor: newExecutor(db)}
}

func (r *ProductsRepo) Create(ctx context.Context, p entities.Product) error {
	query, args := r.qb.Insert("products").
		Columns(productColumns...).
		Values(p.ID, p.ShopID, p.Name, nullString(p.Description), p.Price, p.Stock, nullString(p.ImageURL), p.IsService).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *ProductsRepo) Update(ctx context.Context, p entities.Product) error {
	query, args := r.qb.Update("products").
		Set("name", p.Name).
		Set("description", nullString(p.Description)).
		Set("price", p.Price).
		Set("stock", p.Stock).
		Set("image_url", nullString(p.ImageURL)).
		Where(sq.Eq{"id": p.ID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entities.ErrProductNotFound
	}
	return nil
}

func (r *ProductsRepo) Delete(ctx context.Context, productID string) error {
	query, args := r.qb.Delete("products").
		Where(sq.Eq{"id": productID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entities.ErrProductNotFound
	}
	return nil
}

func (r *ProductsRepo) GetByID(ctx context.Context, productID string) (entities.Product, error) {
	query, args := r.qb.Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": productID}).
		MustSql()

	var product Product
	err := r.getContext(ctx, &product, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Product{}, entities.ErrProductNotFound
	}
	if err != nil {
		return entities.Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return ProductToEntity(product), nil
}

func (r *ProductsRepo) ListByShop(ctx context.Context, shopID string) ([]entities.Product, error) {
	query, args := r.qb.Select(productColumns...).
		From("products").
		Where(sq.Eq{"shop_id": shopID}).
		OrderBy("name").
		MustSql()

	var products []Product
	if err := r.selectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	result := make([]entities.Product, 0, len(products))
	for _, p := range products {
		result = append(result, ProductToEntity(p))
	}
	return result, nil
}

// AdjustStock changes a product's stock by delta in a single conditional
// UPDATE, so two concurrent checkouts against the last unit cannot both
// succeed. Returns the remaining stock. Services are a no-op: their stock is
// a sentinel.
func (r *ProductsRepo) AdjustStock(ctx context.Context, productID string, delta int) (int, error) {
	product, err := r.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if delta == 0 || product.IsService {
		return product.Stock, nil
	}

	query, args := r.qb.Update("products").
		Set("stock", sq.Expr("stock + ?", delta)).
		Where(sq.Eq{"id": productID}).
		Where(sq.Eq{"is_service": false}).
		Where(sq.Expr("stock + ? >= 0", delta)).
		Suffix("RETURNING stock").
		MustSql()

	var remaining int
	err = r.getContext(ctx, &remaining, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		// The conditional update matched nothing: the decrement would have
		// gone negative.
		return 0, fmt.Errorf("%w: %s has %d left", entities.ErrInsufficientStock, product.Name, product.Stock)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust stock: %w", err)
	}
	return remaining, nil
}
