package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/localbazaar/market-service/internal/entities"
	"github.com/localbazaar/market-service/pkg/utils"
)

type AdminCatalog interface {
	ListAllShops(ctx context.Context, caller entities.User) ([]entities.Shop, error)
	ApproveShop(ctx context.Context, caller entities.User, shopID string) error
	RejectShop(ctx context.Context, caller entities.User, shopID string) error
	SetFeatured(ctx context.Context, caller entities.User, shopID string, featured bool) error
}

type AdminOrders interface {
	ListAllOrders(ctx context.Context, caller entities.User) ([]entities.Order, error)
}

// AdminHandler is the moderation surface. Role checks live in the services;
// the handler only shapes requests and responses.
type AdminHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	catalog  AdminCatalog
	orders   AdminOrders
}

func NewAdminHandler(logger *slog.Logger, catalog AdminCatalog, orders AdminOrders) *AdminHandler {
	return &AdminHandler{
		logger:   logger.With(slog.String("handler", "admin")),
		validate: validator.New(),
		catalog:  catalog,
		orders:   orders,
	}
}

func (h *AdminHandler) Init(r chi.Router) {
	r.Get("/admin/shops", h.ListAllShops)
	r.Post("/admin/shops/{shop_id}/approve", h.ApproveShop)
	r.Post("/admin/shops/{shop_id}/reject", h.RejectShop)
	r.Post("/admin/shops/{shop_id}/feature", h.SetFeatured)
	r.Get("/admin/orders", h.ListAllOrders)
}

// ListAllShops returns every shop regardless of moderation status.
// @Summary      List all shops
// @Tags         admin
// @Security     BearerAuth
// @Success      200  {array}   Shop
// @Failure      403  {object}  utils.ErrorResponse
// @Router       /admin/shops [get]
func (h *AdminHandler) ListAllShops(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	shops, err := h.catalog.ListAllShops(ctx, user)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, ShopsEntityToJSON(shops), http.StatusOK)
}

// ApproveShop makes a shop publicly visible and orderable.
// @Summary      Approve a shop
// @Tags         admin
// @Security     BearerAuth
// @Param        shop_id  path  string  true  "Shop ID"
// @Success      204  "No Content"
// @Failure      403  {object}  utils.ErrorResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /admin/shops/{shop_id}/approve [post]
func (h *AdminHandler) ApproveShop(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.catalog.ApproveShop)
}

// RejectShop hides a shop from the storefront.
// @Summary      Reject a shop
// @Tags         admin
// @Security     BearerAuth
// @Param        shop_id  path  string  true  "Shop ID"
// @Success      204  "No Content"
// @Failure      403  {object}  utils.ErrorResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /admin/shops/{shop_id}/reject [post]
func (h *AdminHandler) RejectShop(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.catalog.RejectShop)
}

func (h *AdminHandler) moderate(w http.ResponseWriter, r *http.Request, fn func(context.Context, entities.User, string) error) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	shopID := chi.URLParam(r, "shop_id")

	if err := fn(ctx, user, shopID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetFeatured pins or unpins a shop on the storefront.
// @Summary      Feature a shop
// @Tags         admin
// @Security     BearerAuth
// @Param        shop_id  path  string          true  "Shop ID"
// @Param        body     body  FeatureRequest  true  "Featured flag"
// @Success      204  "No Content"
// @Failure      403  {object}  utils.ErrorResponse
// @Router       /admin/shops/{shop_id}/feature [post]
func (h *AdminHandler) SetFeatured(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	shopID := chi.URLParam(r, "shop_id")

	var req FeatureRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.catalog.SetFeatured(ctx, user, shopID, req.Featured); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAllOrders returns every order on the platform.
// @Summary      List all orders
// @Tags         admin
// @Security     BearerAuth
// @Success      200  {array}   Order
// @Failure      403  {object}  utils.ErrorResponse
// @Router       /admin/orders [get]
func (h *AdminHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListAllOrders(ctx, user)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, OrdersEntityToJSON(orders), http.StatusOK)
}
