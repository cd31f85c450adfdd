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

type CatalogService interface {
	CreateShop(ctx context.Context, caller entities.User, shop entities.Shop) (entities.Shop, error)
	UpdateShop(ctx context.Context, caller entities.User, shop entities.Shop) (entities.Shop, error)
	GetShop(ctx context.Context, shopID string) (entities.Shop, error)
	ListShops(ctx context.Context, featuredOnly bool) ([]entities.Shop, error)
	MyShop(ctx context.Context, caller entities.User) (entities.Shop, error)

	CreateProduct(ctx context.Context, caller entities.User, p entities.Product) (entities.Product, error)
	UpdateProduct(ctx context.Context, caller entities.User, p entities.Product) (entities.Product, error)
	DeleteProduct(ctx context.Context, caller entities.User, productID string) error
	GetProduct(ctx context.Context, productID string) (entities.Product, error)
	ListProducts(ctx context.Context, shopID string) ([]entities.Product, error)
}

type CatalogHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      CatalogService
}

func NewCatalogHandler(logger *slog.Logger, svc CatalogService) *CatalogHandler {
	return &CatalogHandler{
		logger:   logger.With(slog.String("handler", "catalog")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *CatalogHandler) Init(r chi.Router) {
	r.Get("/shops", h.ListShops)
	r.Get("/shops/{shop_id}", h.GetShop)
	r.Get("/shops/{shop_id}/products", h.ListProducts)
	r.Get("/products/{product_id}", h.GetProduct)

	r.Post("/shops", h.CreateShop)
	r.Get("/shops/my", h.MyShop)
	r.Put("/shops/{shop_id}", h.UpdateShop)
	r.Post("/products", h.CreateProduct)
	r.Put("/products/{product_id}", h.UpdateProduct)
	r.Delete("/products/{product_id}", h.DeleteProduct)
}

// ListShops returns the public storefront directory.
// @Summary      List approved shops
// @Description  Returns approved shops, optionally only the featured ones
// @Tags         shops
// @Param        featured  query  bool  false  "Only featured shops"
// @Success      200  {array}   Shop
// @Failure      500  {object}  utils.ErrorResponse
// @Router       /shops [get]
func (h *CatalogHandler) ListShops(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	featured := r.URL.Query().Get("featured") == "true"

	shops, err := h.svc.ListShops(ctx, featured)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, ShopsEntityToJSON(shops), http.StatusOK)
}

// GetShop returns a single shop profile.
// @Summary      Get shop by ID
// @Tags         shops
// @Param        shop_id  path  string  true  "Shop ID"
// @Success      200  {object}  Shop
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /shops/{shop_id} [get]
func (h *CatalogHandler) GetShop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopID := chi.URLParam(r, "shop_id")

	if err := h.validate.Var(shopID, "required"); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	shop, err := h.svc.GetShop(ctx, shopID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, ShopEntityToJSON(shop), http.StatusOK)
}

// CreateShop registers the caller's shop.
// @Summary      Create a shop
// @Description  Registers a shop for the calling shopkeeper; a shopkeeper owns at most one
// @Tags         shops
// @Security     BearerAuth
// @Param        body  body  ShopRequest  true  "Shop profile"
// @Success      201  {object}  Shop
// @Failure      400  {object}  utils.ErrorResponse
// @Failure      403  {object}  utils.ErrorResponse
// @Router       /shops [post]
func (h *CatalogHandler) CreateShop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ShopRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	shop, err := h.svc.CreateShop(ctx, user, ShopRequestToEntity(req))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, ShopEntityToJSON(shop), http.StatusCreated)
}

// MyShop returns the caller's own shop regardless of moderation status.
// @Summary      Get own shop
// @Tags         shops
// @Security     BearerAuth
// @Success      200  {object}  Shop
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /shops/my [get]
func (h *CatalogHandler) MyShop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	shop, err := h.svc.MyShop(ctx, user)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, ShopEntityToJSON(shop), http.StatusOK)
}

// UpdateShop edits the caller's shop profile.
// @Summary      Update a shop
// @Tags         shops
// @Security     BearerAuth
// @Param        shop_id  path  string       true  "Shop ID"
// @Param        body     body  ShopRequest  true  "Shop profile"
// @Success      200  {object}  Shop
// @Failure      403  {object}  utils.ErrorResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /shops/{shop_id} [put]
func (h *CatalogHandler) UpdateShop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	shopID := chi.URLParam(r, "shop_id")

	var req ShopRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	shop := ShopRequestToEntity(req)
	shop.ID = shopID

	updated, err := h.svc.UpdateShop(ctx, user, shop)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, ShopEntityToJSON(updated), http.StatusOK)
}

// ListProducts returns a shop's catalog.
// @Summary      List shop products
// @Tags         products
// @Param        shop_id  path  string  true  "Shop ID"
// @Success      200  {array}   Product
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /shops/{shop_id}/products [get]
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopID := chi.URLParam(r, "shop_id")

	products, err := h.svc.ListProducts(ctx, shopID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, ProductsEntityToJSON(products), http.StatusOK)
}

// GetProduct returns a single catalog item.
// @Summary      Get product by ID
// @Tags         products
// @Param        product_id  path  string  true  "Product ID"
// @Success      200  {object}  Product
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /products/{product_id} [get]
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := chi.URLParam(r, "product_id")

	if err := h.validate.Var(productID, "required"); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	product, err := h.svc.GetProduct(ctx, productID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, ProductEntityToJSON(product), http.StatusOK)
}

// CreateProduct adds an item to the caller's shop. The shop is resolved from
// the caller, not from the request.
// @Summary      Create a product
// @Tags         products
// @Security     BearerAuth
// @Param        body  body  ProductRequest  true  "Product"
// @Success      201  {object}  Product
// @Failure      400  {object}  utils.ErrorResponse
// @Failure      403  {object}  utils.ErrorResponse
// @Router       /products [post]
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	created, err := h.svc.CreateProduct(ctx, user, ProductRequestToEntity(req))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, ProductEntityToJSON(created), http.StatusCreated)
}

// UpdateProduct edits an item of the caller's shop.
// @Summary      Update a product
// @Tags         products
// @Security     BearerAuth
// @Param        product_id  path  string          true  "Product ID"
// @Param        body        body  ProductRequest  true  "Product"
// @Success      200  {object}  Product
// @Failure      403  {object}  utils.ErrorResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /products/{product_id} [put]
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "product_id")

	var req ProductRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	product := ProductRequestToEntity(req)
	product.ID = productID

	updated, err := h.svc.UpdateProduct(ctx, user, product)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	utils.WriteJSON(w, ProductEntityToJSON(updated), http.StatusOK)
}

// DeleteProduct removes an item from the caller's shop.
// @Summary      Delete a product
// @Tags         products
// @Security     BearerAuth
// @Param        product_id  path  string  true  "Product ID"
// @Success      204  "No Content"
// @Failure      403  {object}  utils.ErrorResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /products/{product_id} [delete]
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "product_id")

	if err := h.svc.DeleteProduct(ctx, user, productID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
