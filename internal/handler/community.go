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

type ReviewAPI interface {
	Submit(ctx context.Context, caller entities.User, orderID string, rating int, comment string) (entities.Review, error)
	ListForShop(ctx context.Context, shopID string) ([]entities.Review, error)
	ShopRating(ctx context.Context, shopID string) (*float64, int, error)
}

type NotificationAPI interface {
	ListFor(ctx context.Context, caller entities.User) ([]entities.Notification, error)
	MarkAllRead(ctx context.Context, caller entities.User) error
}

type FavoriteAPI interface {
	Toggle(ctx context.Context, caller entities.User, shopID string) ([]string, error)
	List(ctx context.Context, caller entities.User) ([]string, error)
}

// CommunityHandler serves reviews, the notification inbox and favorites.
type CommunityHandler struct {
	logger        *slog.Logger
	validate      *validator.Validate
	reviews       ReviewAPI
	notifications NotificationAPI
	favorites     FavoriteAPI
}

func NewCommunityHandler(logger *slog.Logger, reviews ReviewAPI, notifications NotificationAPI, favorites FavoriteAPI) *CommunityHandler {
	return &CommunityHandler{
		logger:        logger.With(slog.String("handler", "community")),
		validate:      validator.New(),
		reviews:       reviews,
		notifications: notifications,
		favorites:     favorites,
	}
}

func (h *CommunityHandler) Init(r chi.Router) {
	r.Get("/shops/{shop_id}/reviews", h.ListShopReviews)
	r.Get("/shops/{shop_id}/rating", h.ShopRating)

	r.Post("/reviews", h.SubmitReview)
	r.Get("/notifications", h.ListNotifications)
	r.Post("/notifications/read", h.MarkNotificationsRead)
	r.Post("/favorites/{shop_id}", h.ToggleFavorite)
	r.Get("/favorites", h.ListFavorites)
}

// ListShopReviews returns a shop's reviews, newest first.
// @Summary      List shop reviews
// @Tags         reviews
// @Param        shop_id  path  string  true  "Shop ID"
// @Success      200  {array}  Review
// @Router       /shops/{shop_id}/reviews [get]
func (h *CommunityHandler) ListShopReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopID := chi.URLParam(r, "shop_id")

	reviews, err := h.reviews.ListForShop(ctx, shopID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, ReviewsEntityToJSON(reviews), http.StatusOK)
}

// ShopRating returns the shop's average rating and review count.
// @Summary      Get shop rating
// @Tags         reviews
// @Param        shop_id  path  string  true  "Shop ID"
// @Success      200  {object}  map[string]any
// @Router       /shops/{shop_id}/rating [get]
func (h *CommunityHandler) ShopRating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopID := chi.URLParam(r, "shop_id")

	rating, count, err := h.reviews.ShopRating(ctx, shopID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, map[string]any{"rating": rating, "review_count": count}, http.StatusOK)
}

// SubmitReview rates a delivered order, once.
// @Summary      Submit a review
// @Tags         reviews
// @Security     BearerAuth
// @Param        body  body  ReviewRequest  true  "Review"
// @Success      201  {object}  Review
// @Failure      400  {object}  utils.ErrorResponse
// @Failure      422  {object}  utils.ErrorResponse "Order not eligible"
// @Router       /reviews [post]
func (h *CommunityHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	review, err := h.reviews.Submit(ctx, user, req.OrderID, req.Rating, req.Comment)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, ReviewEntityToJSON(review), http.StatusCreated)
}

// ListNotifications returns the caller's inbox, newest first.
// @Summary      List notifications
// @Tags         notifications
// @Security     BearerAuth
// @Success      200  {array}  Notification
// @Router       /notifications [get]
func (h *CommunityHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	ns, err := h.notifications.ListFor(ctx, user)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, NotificationsEntityToJSON(ns), http.StatusOK)
}

// MarkNotificationsRead marks the whole inbox read. Idempotent.
// @Summary      Mark all notifications read
// @Tags         notifications
// @Security     BearerAuth
// @Success      204  "No Content"
// @Router       /notifications/read [post]
func (h *CommunityHandler) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.notifications.MarkAllRead(ctx, user); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite flips the shop's membership in the caller's favorites and
// returns the updated list.
// @Summary      Toggle a favorite shop
// @Tags         favorites
// @Security     BearerAuth
// @Param        shop_id  path  string  true  "Shop ID"
// @Success      200  {array}   string
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /favorites/{shop_id} [post]
func (h *CommunityHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	shopID := chi.URLParam(r, "shop_id")

	ids, err := h.favorites.Toggle(ctx, user, shopID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, ids, http.StatusOK)
}

// ListFavorites returns the caller's favorite shop IDs.
// @Summary      List favorite shops
// @Tags         favorites
// @Security     BearerAuth
// @Success      200  {array}  string
// @Router       /favorites [get]
func (h *CommunityHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	ids, err := h.favorites.List(ctx, user)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, ids, http.StatusOK)
}
