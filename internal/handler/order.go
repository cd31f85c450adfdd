package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/localbazaar/market-service/internal/entities"
	"github.com/localbazaar/market-service/internal/service"
	"github.com/localbazaar/market-service/pkg/utils"
)

type OrderAPI interface {
	Checkout(ctx context.Context, caller entities.User, input service.CheckoutInput) ([]entities.Order, error)
	CreateCustomList(ctx context.Context, caller entities.User, shopID, listText string) (entities.Order, error)
	SendQuote(ctx context.Context, caller entities.User, orderID string, amount int) (entities.Order, error)
	AcceptQuote(ctx context.Context, caller entities.User, orderID string) (entities.Order, error)
	AdvanceStatus(ctx context.Context, caller entities.User, orderID string, next entities.OrderStatus) (entities.Order, error)
	Cancel(ctx context.Context, caller entities.User, orderID string) (entities.Order, error)
	GetOrder(ctx context.Context, caller entities.User, orderID string) (entities.Order, error)
	ListMyOrders(ctx context.Context, caller entities.User) ([]entities.Order, error)
	ListShopOrders(ctx context.Context, caller entities.User, shopID string) ([]entities.Order, error)
}

type OrderHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderAPI
}

func NewOrderHandler(logger *slog.Logger, svc OrderAPI) *OrderHandler {
	return &OrderHandler{
		logger:   logger.With(slog.String("handler", "order")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *OrderHandler) Init(r chi.Router) {
	r.Post("/orders/checkout", h.Checkout)
	r.Post("/orders/custom", h.CreateCustomList)
	r.Get("/orders", h.ListMyOrders)
	r.Get("/orders/{order_id}", h.GetOrder)
	r.Post("/orders/{order_id}/quote", h.SendQuote)
	r.Post("/orders/{order_id}/accept", h.AcceptQuote)
	r.Post("/orders/{order_id}/status", h.AdvanceStatus)
	r.Post("/orders/{order_id}/cancel", h.Cancel)
	r.Get("/shops/{shop_id}/orders", h.ListShopOrders)
}

// Checkout turns the cart into pending orders, one per shop.
// @Summary      Checkout a cart
// @Description  Creates one pending order per distinct shop in a single all-or-nothing batch
// @Tags         orders
// @Security     BearerAuth
// @Param        body  body  CheckoutRequest  true  "Cart"
// @Success      201  {array}   Order
// @Failure      400  {object}  utils.ErrorResponse
// @Failure      409  {object}  utils.ErrorResponse "Insufficient stock"
// @Router       /orders/checkout [post]
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	orders, err := h.svc.Checkout(ctx, user, CheckoutRequestToInput(req))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	ordersCreated.Add(float64(len(orders)))
	utils.WriteJSON(w, OrdersEntityToJSON(orders), http.StatusCreated)
}

// CreateCustomList opens a free-text requirement list against a shop.
// @Summary      Create a custom list order
// @Tags         orders
// @Security     BearerAuth
// @Param        body  body  CustomListRequest  true  "Requirement list"
// @Success      201  {object}  Order
// @Failure      400  {object}  utils.ErrorResponse
// @Router       /orders/custom [post]
func (h *OrderHandler) CreateCustomList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CustomListRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.CreateCustomList(ctx, user, req.ShopID, req.ListText)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	ordersCreated.Inc()
	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusCreated)
}

// ListMyOrders returns the caller's order history, newest first.
// @Summary      List own orders
// @Tags         orders
// @Security     BearerAuth
// @Success      200  {array}  Order
// @Router       /orders [get]
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	orders, err := h.svc.ListMyOrders(ctx, user)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, OrdersEntityToJSON(orders), http.StatusOK)
}

// GetOrder returns one order; only its participants and admins may read it.
// @Summary      Get order by ID
// @Tags         orders
// @Security     BearerAuth
// @Param        order_id  path  string  true  "Order ID"
// @Success      200  {object}  Order
// @Failure      403  {object}  utils.ErrorResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /orders/{order_id} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "order_id")

	order, err := h.svc.GetOrder(ctx, user, orderID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// SendQuote prices a pending custom list.
// @Summary      Send a quote
// @Tags         orders
// @Security     BearerAuth
// @Param        order_id  path  string        true  "Order ID"
// @Param        body      body  QuoteRequest  true  "Quote amount"
// @Success      200  {object}  Order
// @Failure      400  {object}  utils.ErrorResponse
// @Failure      409  {object}  utils.ErrorResponse "Illegal transition"
// @Router       /orders/{order_id}/quote [post]
func (h *OrderHandler) SendQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "order_id")

	var req QuoteRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.SendQuote(ctx, user, orderID, req.Amount)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	quotesSent.Inc()
	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// AcceptQuote is the customer's acceptance of a quoted custom list.
// @Summary      Accept a quote
// @Tags         orders
// @Security     BearerAuth
// @Param        order_id  path  string  true  "Order ID"
// @Success      200  {object}  Order
// @Failure      409  {object}  utils.ErrorResponse "Order is not quoted"
// @Router       /orders/{order_id}/accept [post]
func (h *OrderHandler) AcceptQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "order_id")

	order, err := h.svc.AcceptQuote(ctx, user, orderID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// AdvanceStatus is the shopkeeper's lever over the order lifecycle.
// @Summary      Advance order status
// @Tags         orders
// @Security     BearerAuth
// @Param        order_id  path  string         true  "Order ID"
// @Param        body      body  StatusRequest  true  "Target status"
// @Success      200  {object}  Order
// @Failure      400  {object}  utils.ErrorResponse
// @Failure      409  {object}  utils.ErrorResponse "Illegal transition"
// @Router       /orders/{order_id}/status [post]
func (h *OrderHandler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "order_id")

	var req StatusRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.AdvanceStatus(ctx, user, orderID, entities.OrderStatus(req.Status))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// Cancel cancels a live order from either side. Stock is not restored.
// @Summary      Cancel an order
// @Tags         orders
// @Security     BearerAuth
// @Param        order_id  path  string  true  "Order ID"
// @Success      200  {object}  Order
// @Failure      409  {object}  utils.ErrorResponse "Order already terminal"
// @Router       /orders/{order_id}/cancel [post]
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "order_id")

	order, err := h.svc.Cancel(ctx, user, orderID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// ListShopOrders returns a shop's incoming orders for its owner.
// @Summary      List shop orders
// @Tags         orders
// @Security     BearerAuth
// @Param        shop_id  path  string  true  "Shop ID"
// @Success      200  {array}   Order
// @Failure      403  {object}  utils.ErrorResponse
// @Router       /shops/{shop_id}/orders [get]
func (h *OrderHandler) ListShopOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	shopID := chi.URLParam(r, "shop_id")

	orders, err := h.svc.ListShopOrders(ctx, user, shopID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, OrdersEntityToJSON(orders), http.StatusOK)
}
