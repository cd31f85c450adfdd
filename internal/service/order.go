package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/localbazaar/market-service/internal/entities"
	"github.com/localbazaar/market-service/pkg/trm"

	"github.com/google/uuid"
)

type OrderRepo interface {
	Create(ctx context.Context, o entities.Order, idempotencyKey string) error
	GetByID(ctx context.Context, orderID string) (entities.Order, error)
	GetByIdempotencyKey(ctx context.Context, customerID, key string) ([]entities.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]entities.Order, error)
	ListByShop(ctx context.Context, shopID string) ([]entities.Order, error)
	ListAll(ctx context.Context) ([]entities.Order, error)
	UpdateStatus(ctx context.Context, orderID string, from, to entities.OrderStatus, upd entities.StatusUpdate) error
}

type ShopGetter interface {
	GetByID(ctx context.Context, shopID string) (entities.Shop, error)
}

type ProductStore interface {
	GetByID(ctx context.Context, productID string) (entities.Product, error)
	// AdjustStock atomically changes stock by delta and returns the remaining
	// stock. Must fail with entities.ErrInsufficientStock instead of going
	// negative; must be a no-op for services.
	AdjustStock(ctx context.Context, productID string, delta int) (int, error)
}

type Notifier interface {
	Notify(ctx context.Context, userID, title, message string, kind entities.NotificationKind) error
}

// OrderEvent is published to the events topic after a successful commit so
// downstream consumers (push dispatch, analytics) can react.
type OrderEvent struct {
	Event      string `json:"event"`
	OrderID    string `json:"order_id"`
	ShopID     string `json:"shop_id"`
	CustomerID string `json:"customer_id"`
	Status     string `json:"status"`
	Total      int    `json:"total_amount"`
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, e OrderEvent) error
}

type CartLine struct {
	ProductID string
	Quantity  int
}

type CheckoutInput struct {
	Lines          []CartLine
	Location       *entities.Location
	PaymentMethod  entities.PaymentMethod
	IdempotencyKey string
}

type OrderService struct {
	logger    *slog.Logger
	txManager trm.Manager
	orders    OrderRepo
	shops     ShopGetter
	products  ProductStore
	notifier  Notifier
	events    EventPublisher
}

func NewOrderService(
	logger *slog.Logger,
	txManager trm.Manager,
	orders OrderRepo,
	shops ShopGetter,
	products ProductStore,
	notifier Notifier,
	events EventPublisher,
) *OrderService {
	return &OrderService{
		logger:    logger.With(slog.String("service", "order")),
		txManager: txManager,
		orders:    orders,
		shops:     shops,
		products:  products,
		notifier:  notifier,
		events:    events,
	}
}

// Checkout turns a cart into one pending order per distinct shop. The whole
// batch runs in a single transaction: if any line's shop is not approved or
// any stock deduction fails, no order and no stock change survives.
func (s *OrderService) Checkout(ctx context.Context, caller entities.User, input CheckoutInput) ([]entities.Order, error) {
	if !caller.Is(entities.RoleCustomer) {
		return nil, fmt.Errorf("%w: only customers can place orders", entities.ErrForbidden)
	}
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", entities.ErrValidation)
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", entities.ErrValidation)
		}
	}
	if input.PaymentMethod != entities.PaymentCOD && input.PaymentMethod != entities.PaymentOnline {
		return nil, fmt.Errorf("%w: unknown payment method %q", entities.ErrValidation, input.PaymentMethod)
	}

	var orders []entities.Order
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		// Same idempotency key from the same customer means a re-sent
		// checkout we already committed; hand back the original orders
		// untouched. The key is never matched across customers.
		if input.IdempotencyKey != "" {
			existing, err := s.orders.GetByIdempotencyKey(ctx, caller.ID, input.IdempotencyKey)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				orders = existing
				return nil
			}
		}

		created, err := s.checkout(ctx, caller, input)
		if err != nil {
			return err
		}
		orders = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, o := range orders {
		s.publish(ctx, "order.created", o)
	}
	return orders, nil
}

func (s *OrderService) checkout(ctx context.Context, caller entities.User, input CheckoutInput) ([]entities.Order, error) {
	type cartProduct struct {
		product  entities.Product
		quantity int
	}

	byShop := make(map[string][]cartProduct)
	for _, line := range input.Lines {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		byShop[product.ShopID] = append(byShop[product.ShopID], cartProduct{product: product, quantity: line.Quantity})
	}

	shopIDs := make([]string, 0, len(byShop))
	for shopID := range byShop {
		shopIDs = append(shopIDs, shopID)
	}
	sort.Strings(shopIDs)

	now := time.Now()
	orders := make([]entities.Order, 0, len(shopIDs))

	for _, shopID := range shopIDs {
		shop, err := s.shops.GetByID(ctx, shopID)
		if err != nil {
			return nil, err
		}
		if shop.Status != entities.ShopApproved {
			return nil, fmt.Errorf("%w: shop %s is not approved", entities.ErrValidation, shop.Name)
		}

		order := entities.Order{
			ID:            uuid.NewString(),
			CustomerID:    caller.ID,
			CustomerName:  caller.Name,
			ShopID:        shop.ID,
			ShopName:      shop.Name,
			Type:          entities.OrderDirect,
			Status:        entities.OrderPending,
			PaymentMethod: input.PaymentMethod,
			CreatedAt:     now,
		}

		subtotal := 0
		for _, cp := range byShop[shopID] {
			subtotal += cp.product.Price * cp.quantity
			order.Items = append(order.Items, entities.OrderItem{
				ID:        uuid.NewString(),
				OrderID:   order.ID,
				ProductID: cp.product.ID,
				Name:      cp.product.Name,
				Quantity:  cp.quantity,
				Price:     cp.product.Price,
			})
		}
		order.TotalAmount = subtotal + entities.DeliveryFee(shop, input.Location)

		if err := s.orders.Create(ctx, order, input.IdempotencyKey); err != nil {
			return nil, err
		}

		for _, cp := range byShop[shopID] {
			if cp.product.IsService {
				continue
			}
			remaining, err := s.products.AdjustStock(ctx, cp.product.ID, -cp.quantity)
			if err != nil {
				return nil, err
			}
			if remaining == 0 {
				if err := s.notifier.Notify(ctx, shop.OwnerID,
					"Out of stock",
					fmt.Sprintf("%s just sold out. Restock it to keep it visible.", cp.product.Name),
					entities.NotificationStock,
				); err != nil {
					return nil, err
				}
			}
		}

		s.logger.Debug("order created",
			slog.String("order_id", order.ID),
			slog.String("shop_id", shop.ID),
			slog.Int("total", order.TotalAmount),
		)
		orders = append(orders, order)
	}

	return orders, nil
}

// CreateCustomList files a free-text requirement with a shop. No items, no
// stock effect; the shopkeeper answers with a quote.
func (s *OrderService) CreateCustomList(ctx context.Context, caller entities.User, shopID, listText string) (entities.Order, error) {
	if !caller.Is(entities.RoleCustomer) {
		return entities.Order{}, fmt.Errorf("%w: only customers can send requirement lists", entities.ErrForbidden)
	}
	if listText == "" {
		return entities.Order{}, fmt.Errorf("%w: requirement list is empty", entities.ErrValidation)
	}

	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return entities.Order{}, err
	}
	if shop.Status != entities.ShopApproved {
		return entities.Order{}, fmt.Errorf("%w: shop %s is not approved", entities.ErrValidation, shop.Name)
	}

	order := entities.Order{
		ID:           uuid.NewString(),
		CustomerID:   caller.ID,
		CustomerName: caller.Name,
		ShopID:       shop.ID,
		ShopName:     shop.Name,
		Type:         entities.OrderCustomList,
		Status:       entities.OrderPending,
		ListText:     listText,
		CreatedAt:    time.Now(),
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.orders.Create(ctx, order, ""); err != nil {
			return err
		}
		return s.notifier.Notify(ctx, shop.OwnerID,
			"New requirement list",
			fmt.Sprintf("%s sent a custom list. Check and send a quote!", caller.Name),
			entities.NotificationOrder,
		)
	})
	if err != nil {
		return entities.Order{}, err
	}

	s.publish(ctx, "order.created", order)
	return order, nil
}

// SendQuote prices a pending custom_list order. Shop owner only; the amount
// becomes both quote and total.
func (s *OrderService) SendQuote(ctx context.Context, caller entities.User, orderID string, amount int) (entities.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	shop, err := s.shops.GetByID(ctx, order.ShopID)
	if err != nil {
		return entities.Order{}, err
	}
	// Ownership is checked before any state validation: a stranger probing a
	// delivered order must see forbidden, not the order's state.
	if shop.OwnerID != caller.ID {
		return entities.Order{}, fmt.Errorf("%w: not your shop's order", entities.ErrForbidden)
	}

	if amount <= 0 {
		return entities.Order{}, fmt.Errorf("%w: quote amount must be positive", entities.ErrValidation)
	}
	if order.Type != entities.OrderCustomList {
		return entities.Order{}, fmt.Errorf("%w: only custom list orders can be quoted", entities.ErrInvalidTransition)
	}
	if order.Status != entities.OrderPending {
		return entities.Order{}, fmt.Errorf("%w: order is %s", entities.ErrInvalidTransition, order.Status)
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		upd := entities.StatusUpdate{QuoteAmount: &amount, TotalAmount: &amount}
		if err := s.orders.UpdateStatus(ctx, order.ID, entities.OrderPending, entities.OrderQuoted, upd); err != nil {
			return err
		}
		return s.notifier.Notify(ctx, order.CustomerID,
			"Quote received",
			fmt.Sprintf("%s sent a quote of %d for your list. Review and pay to confirm!", shop.Name, amount),
			entities.NotificationQuote,
		)
	})
	if err != nil {
		return entities.Order{}, err
	}

	order.Status = entities.OrderQuoted
	order.QuoteAmount = amount
	order.TotalAmount = amount
	s.publish(ctx, "order.quoted", order)
	return order, nil
}

// AcceptQuote is the customer accepting a quoted order and paying online.
// The payment gateway is external; by the time this is called the settlement
// signal has already been verified upstream.
func (s *OrderService) AcceptQuote(ctx context.Context, caller entities.User, orderID string) (entities.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}
	if order.CustomerID != caller.ID {
		return entities.Order{}, fmt.Errorf("%w: not your order", entities.ErrForbidden)
	}
	if order.Status != entities.OrderQuoted {
		return entities.Order{}, fmt.Errorf("%w: order is %s", entities.ErrInvalidTransition, order.Status)
	}

	shop, err := s.shops.GetByID(ctx, order.ShopID)
	if err != nil {
		return entities.Order{}, err
	}

	online := entities.PaymentOnline
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		upd := entities.StatusUpdate{PaymentMethod: &online}
		if err := s.orders.UpdateStatus(ctx, order.ID, entities.OrderQuoted, entities.OrderAccepted, upd); err != nil {
			return err
		}
		return s.notifier.Notify(ctx, shop.OwnerID,
			"Quote accepted",
			fmt.Sprintf("%s accepted your quote of %d and paid online.", caller.Name, order.QuoteAmount),
			entities.NotificationOrder,
		)
	})
	if err != nil {
		return entities.Order{}, err
	}

	order.Status = entities.OrderAccepted
	order.PaymentMethod = online
	s.publish(ctx, "order.accepted", order)
	return order, nil
}

// AdvanceStatus is the shopkeeper moving an order along the state machine.
// Only legal edges pass; quoting has its own operation, and a custom list
// that the customer has not accepted yet can only be cancelled.
func (s *OrderService) AdvanceStatus(ctx context.Context, caller entities.User, orderID string, next entities.OrderStatus) (entities.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	shop, err := s.shops.GetByID(ctx, order.ShopID)
	if err != nil {
		return entities.Order{}, err
	}
	if shop.OwnerID != caller.ID {
		return entities.Order{}, fmt.Errorf("%w: not your shop's order", entities.ErrForbidden)
	}

	if !entities.ValidOrderStatus(next) {
		return entities.Order{}, fmt.Errorf("%w: unknown status %q", entities.ErrValidation, next)
	}
	if next == entities.OrderQuoted {
		return entities.Order{}, fmt.Errorf("%w: quotes are sent with their amount, not as a status change", entities.ErrValidation)
	}
	if !entities.CanTransition(order.Status, next) {
		return entities.Order{}, fmt.Errorf("%w: order is %s", entities.ErrInvalidTransition, order.Status)
	}
	if order.Type == entities.OrderCustomList &&
		(order.Status == entities.OrderPending || order.Status == entities.OrderQuoted) &&
		next != entities.OrderCancelled {
		return entities.Order{}, fmt.Errorf("%w: the customer has to accept the quote first", entities.ErrInvalidTransition)
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.orders.UpdateStatus(ctx, order.ID, order.Status, next, entities.StatusUpdate{}); err != nil {
			return err
		}
		return s.notifier.Notify(ctx, order.CustomerID,
			"Order update",
			fmt.Sprintf("Your order at %s is now %s.", order.ShopName, next),
			entities.NotificationOrder,
		)
	})
	if err != nil {
		return entities.Order{}, err
	}

	order.Status = next
	s.publish(ctx, "order."+string(next), order)
	return order, nil
}

// Cancel is available to both parties from any non-terminal state. Deducted
// inventory is deliberately not restocked.
func (s *OrderService) Cancel(ctx context.Context, caller entities.User, orderID string) (entities.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	shop, err := s.shops.GetByID(ctx, order.ShopID)
	if err != nil {
		return entities.Order{}, err
	}

	isCustomer := order.CustomerID == caller.ID
	isOwner := shop.OwnerID == caller.ID
	if !isCustomer && !isOwner {
		return entities.Order{}, fmt.Errorf("%w: not a party to this order", entities.ErrForbidden)
	}

	if !entities.CanTransition(order.Status, entities.OrderCancelled) {
		return entities.Order{}, fmt.Errorf("%w: order is %s", entities.ErrInvalidTransition, order.Status)
	}

	counterparty := shop.OwnerID
	message := fmt.Sprintf("%s cancelled order %s.", order.CustomerName, order.ID)
	if isOwner {
		counterparty = order.CustomerID
		message = fmt.Sprintf("%s cancelled your order %s.", order.ShopName, order.ID)
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.orders.UpdateStatus(ctx, order.ID, order.Status, entities.OrderCancelled, entities.StatusUpdate{}); err != nil {
			return err
		}
		return s.notifier.Notify(ctx, counterparty, "Order cancelled", message, entities.NotificationOrder)
	})
	if err != nil {
		return entities.Order{}, err
	}

	order.Status = entities.OrderCancelled
	s.publish(ctx, "order.cancelled", order)
	return order, nil
}

// GetOrder is readable by both parties and admins only.
func (s *OrderService) GetOrder(ctx context.Context, caller entities.User, orderID string) (entities.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}
	if caller.Is(entities.RoleAdmin) || order.CustomerID == caller.ID {
		return order, nil
	}

	shop, err := s.shops.GetByID(ctx, order.ShopID)
	if err != nil {
		return entities.Order{}, err
	}
	if shop.OwnerID != caller.ID {
		return entities.Order{}, fmt.Errorf("%w: not a party to this order", entities.ErrForbidden)
	}
	return order, nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, caller entities.User) ([]entities.Order, error) {
	return s.orders.ListByCustomer(ctx, caller.ID)
}

func (s *OrderService) ListShopOrders(ctx context.Context, caller entities.User, shopID string) ([]entities.Order, error) {
	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop.OwnerID != caller.ID && !caller.Is(entities.RoleAdmin) {
		return nil, fmt.Errorf("%w: not your shop", entities.ErrForbidden)
	}
	return s.orders.ListByShop(ctx, shopID)
}

func (s *OrderService) ListAllOrders(ctx context.Context, caller entities.User) ([]entities.Order, error) {
	if !caller.Is(entities.RoleAdmin) {
		return nil, fmt.Errorf("%w: admin only", entities.ErrForbidden)
	}
	return s.orders.ListAll(ctx)
}

// publish is best-effort: a lost event never fails the business operation.
func (s *OrderService) publish(ctx context.Context, event string, o entities.Order) {
	if s.events == nil {
		return
	}
	e := OrderEvent{
		Event:      event,
		OrderID:    o.ID,
		ShopID:     o.ShopID,
		CustomerID: o.CustomerID,
		Status:     string(o.Status),
		Total:      o.TotalAmount,
	}
	if err := s.events.PublishOrderEvent(ctx, e); err != nil {
		s.logger.Error("failed to publish order event", slog.String("event", event), slog.Any("error", err))
	}
}
