package repo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type FavoritesRepo struct {
	executor
}

func NewFavoritesRepo(db *sqlx.DB) *FavoritesRepo {
	return &FavoritesRepo{executor: newExecutor(db)}
}

// Toggle removes the shop from the user's favorites when present, otherwise
// adds it. ON CONFLICT keeps the insert idempotent under a racing double tap.
func (r *FavoritesRepo) Toggle(ctx context.Context, userID, shopID string) error {
	query, args := r.qb.Delete("favorites").
		Where(sq.Eq{"user_id": userID, "shop_id": shopID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to toggle favorite: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	query, args = r.qb.Insert("favorites").
		Columns("user_id", "shop_id").
		Values(userID, shopID).
		Suffix("ON CONFLICT (user_id, shop_id) DO NOTHING").
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return nil
}

func (r *FavoritesRepo) List(ctx context.Context, userID string) ([]string, error) {
	query, args := r.qb.Select("shop_id").
		From("favorites").
		Where(sq.Eq{"user_id": userID}).
		MustSql()

	var shopIDs []string
	if err := r.selectContext(ctx, &shopIDs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	if shopIDs == nil {
		shopIDs = []string{}
	}
	return shopIDs, nil
}
