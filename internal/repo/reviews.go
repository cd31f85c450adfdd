package repo

import (
	"context"
	"fmt"
	"math"

	"github.com/localbazaar/market-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type ReviewsRepo struct {
	executor
}

func NewReviewsRepo(db *sqlx.DB) *ReviewsRepo {
	return &ReviewsRepo{executor: newExecutor(db)}
}

func (r *ReviewsRepo) Create(ctx context.Context, rev entities.Review) error {
	query, args := r.qb.Insert("reviews").
		Columns("id", "shop_id", "order_id", "customer_id", "customer_name", "rating", "comment", "created_at").
		Values(rev.ID, rev.ShopID, rev.OrderID, rev.CustomerID, rev.CustomerName, rev.Rating, rev.Comment, rev.CreatedAt).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *ReviewsRepo) ListByShop(ctx context.Context, shopID string) ([]entities.Review, error) {
	query, args := r.qb.Select("id", "shop_id", "order_id", "customer_id", "customer_name", "rating", "comment", "created_at").
		From("reviews").
		Where(sq.Eq{"shop_id": shopID}).
		OrderBy("created_at DESC").
		MustSql()

	var reviews []Review
	if err := r.selectContext(ctx, &reviews, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	result := make([]entities.Review, 0, len(reviews))
	for _, rev := range reviews {
		result = append(result, ReviewToEntity(rev))
	}
	return result, nil
}

// ShopRating returns the mean rating rounded to one decimal and the review
// count. A shop with no reviews reports a nil rating, not a numeric default.
func (r *ReviewsRepo) ShopRating(ctx context.Context, shopID string) (*float64, int, error) {
	query, args := r.qb.Select("AVG(rating) AS avg_rating", "COUNT(*) AS review_count").
		From("reviews").
		Where(sq.Eq{"shop_id": shopID}).
		MustSql()

	var row struct {
		AvgRating   *float64 `db:"avg_rating"`
		ReviewCount int      `db:"review_count"`
	}
	if err := r.getContext(ctx, &row, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to get shop rating: %w", err)
	}

	if row.AvgRating == nil {
		return nil, 0, nil
	}
	rating := math.Round(*row.AvgRating*10) / 10
	return &rating, row.ReviewCount, nil
}
