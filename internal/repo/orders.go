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

var orderColumns = []string{
	"id", "customer_id", "customer_name", "shop_id", "shop_name",
	"order_type", "status", "total_amount", "quote_amount", "payment_method",
	"list_text", "is_rated", "idempotency_key", "created_at",
}

type OrdersRepo struct {
	executor
}

func NewOrdersRepo(db *sqlx.DB) *OrdersRepo {
	return &OrdersRepo{executor: newExecutor(db)}
}

func (r *OrdersRepo) Create(ctx context.Context, o entities.Order, idempotencyKey string) error {
	query, args := r.qb.Insert("orders").
		Columns(orderColumns...).
		Values(
			o.ID, o.CustomerID, o.CustomerName, o.ShopID, o.ShopName,
			o.Type, o.Status, o.TotalAmount, nullInt32(o.QuoteAmount), nullString(string(o.PaymentMethod)),
			nullString(o.ListText), o.IsRated, nullString(idempotencyKey), o.CreatedAt,
		).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if len(o.Items) == 0 {
		return nil
	}

	q := r.qb.Insert("order_items").
		Columns("id", "order_id", "product_id", "name", "quantity", "price")
	for _, it := range o.Items {
		q = q.Values(it.ID, o.ID, nullString(it.ProductID), it.Name, it.Quantity, it.Price)
	}

	query, args = q.MustSql()
	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	return nil
}

func (r *OrdersRepo) GetByID(ctx context.Context, orderID string) (entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": orderID}).
		MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.itemsFor(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}
	return OrderToEntity(order, items), nil
}

// GetByIdempotencyKey returns every order a previous checkout by this
// customer created under the key, empty when the key was never used. Keys are
// scoped per customer; two customers may present the same key independently.
func (r *OrdersRepo) GetByIdempotencyKey(ctx context.Context, customerID, key string) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"customer_id": customerID, "idempotency_key": key}).
		OrderBy("created_at").
		MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select orders by idempotency key: %w", err)
	}
	return r.withItems(ctx, orders)
}

func (r *OrdersRepo) ListByCustomer(ctx context.Context, customerID string) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"customer_id": customerID}).
		OrderBy("created_at DESC").
		MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list customer orders: %w", err)
	}
	return r.withItems(ctx, orders)
}

func (r *OrdersRepo) ListByShop(ctx context.Context, shopID string) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"shop_id": shopID}).
		OrderBy("created_at DESC").
		MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list shop orders: %w", err)
	}
	return r.withItems(ctx, orders)
}

func (r *OrdersRepo) ListAll(ctx context.Context) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC").
		MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return r.withItems(ctx, orders)
}

// UpdateStatus is a compare-and-swap on the order's status: the row is only
// written when it is still in from. A losing writer gets ErrInvalidTransition
// carrying the status the order actually has.
func (r *OrdersRepo) UpdateStatus(ctx context.Context, orderID string, from, to entities.OrderStatus, upd entities.StatusUpdate) error {
	q := r.qb.Update("orders").
		Set("status", to).
		Where(sq.Eq{"id": orderID, "status": from})

	if upd.QuoteAmount != nil {
		q = q.Set("quote_amount", *upd.QuoteAmount)
	}
	if upd.TotalAmount != nil {
		q = q.Set("total_amount", *upd.TotalAmount)
	}
	if upd.PaymentMethod != nil {
		q = q.Set("payment_method", *upd.PaymentMethod)
	}

	query, args := q.MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	order, err := r.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: order is %s", entities.ErrInvalidTransition, order.Status)
}

// MarkRated flips is_rated exactly once and only on delivered orders, so a
// second review attempt loses even under concurrent submits.
func (r *OrdersRepo) MarkRated(ctx context.Context, orderID string) error {
	query, args := r.qb.Update("orders").
		Set("is_rated", true).
		Where(sq.Eq{"id": orderID, "status": entities.OrderDelivered, "is_rated": false}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark order rated: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entities.ErrNotEligible
	}
	return nil
}

func (r *OrdersRepo) itemsFor(ctx context.Context, orderID string) ([]OrderItem, error) {
	query, args := r.qb.Select("id", "order_id", "product_id", "name", "quantity", "price").
		From("order_items").
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select order items: %w", err)
	}
	return items, nil
}

func (r *OrdersRepo) withItems(ctx context.Context, orders []Order) ([]entities.Order, error) {
	if len(orders) == 0 {
		return []entities.Order{}, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	query, args := r.qb.Select("id", "order_id", "product_id", "name", "quantity", "price").
		From("order_items").
		Where(sq.Eq{"order_id": ids}).
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select order items: %w", err)
	}

	itemsMap := make(map[string][]OrderItem, len(ids))
	for _, it := range items {
		itemsMap[it.OrderID] = append(itemsMap[it.OrderID], it)
	}

	result := make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderToEntity(o, itemsMap[o.ID]))
	}
	return result, nil
}
