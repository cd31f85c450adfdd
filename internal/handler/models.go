package handler

import (
	"time"

	"github.com/localbazaar/market-service/internal/entities"
	"github.com/localbazaar/market-service/internal/service"
)

// Shop is the wire representation of a shop profile.
type Shop struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	OwnerName string `json:"owner_name,omitempty"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Type      string `json:"type"`

	Address  string `json:"address,omitempty"`
	Landmark string `json:"landmark,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Phone    string `json:"phone,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"`

	OpeningHours string `json:"opening_hours,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`

	Status     string `json:"status"`
	IsFeatured bool   `json:"is_featured"`
	Commission int    `json:"commission,omitempty"`

	DeliveryAvailable bool `json:"delivery_available"`
	DeliveryRadius    int  `json:"delivery_radius,omitempty"`
	DeliveryFee       int  `json:"delivery_fee,omitempty"`
	PerKmCharge       int  `json:"per_km_charge,omitempty"`

	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`

	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount int      `json:"review_count"`

	CreatedAt time.Time `json:"created_at"`
}

// ShopRequest is the body of shop create and update calls.
type ShopRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category,omitempty"`
	Type     string `json:"type" validate:"required,oneof=product service both"`

	Address  string `json:"address" validate:"required"`
	Landmark string `json:"landmark,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Phone    string `json:"phone" validate:"required"`
	WhatsApp string `json:"whatsapp,omitempty"`

	OpeningHours string `json:"opening_hours,omitempty"`
	ImageURL     string `json:"image_url,omitempty" validate:"omitempty,url"`
	LogoURL      string `json:"logo_url,omitempty" validate:"omitempty,url"`

	DeliveryAvailable bool `json:"delivery_available"`
	DeliveryRadius    int  `json:"delivery_radius,omitempty" validate:"gte=0"`
	DeliveryFee       int  `json:"delivery_fee,omitempty" validate:"gte=0"`
	PerKmCharge       int  `json:"per_km_charge,omitempty" validate:"gte=0"`

	Latitude  float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// Product is the wire representation of a catalog item.
type Product struct {
	ID          string `json:"id"`
	ShopID      string `json:"shop_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int    `json:"price"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"image_url,omitempty"`
	IsService   bool   `json:"is_service"`
}

// ProductRequest is the body of product create and update calls.
type ProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Price       int    `json:"price" validate:"gt=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
	IsService   bool   `json:"is_service"`
}

// OrderItem is a priced line of an order as it was at checkout time.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int    `json:"price"`
}

// Order is the wire representation of an order.
type Order struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name,omitempty"`
	ShopID       string `json:"shop_id"`
	ShopName     string `json:"shop_name,omitempty"`

	Type   string `json:"type"`
	Status string `json:"status"`

	TotalAmount   int    `json:"total_amount"`
	QuoteAmount   int    `json:"quote_amount,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`

	ListText string `json:"list_text,omitempty"`

	IsRated   bool      `json:"is_rated"`
	CreatedAt time.Time `json:"created_at"`

	Items []OrderItem `json:"items,omitempty"`
}

// CartLine is one product of the checkout cart.
type CartLine struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// LocationJSON is the customer's drop point for distance-based delivery fees.
type LocationJSON struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// CheckoutRequest is the body of the checkout call.
type CheckoutRequest struct {
	Lines          []CartLine    `json:"lines" validate:"required,min=1,dive"`
	Location       *LocationJSON `json:"location,omitempty"`
	PaymentMethod  string        `json:"payment_method" validate:"required,oneof=cod online"`
	IdempotencyKey string        `json:"idempotency_key,omitempty"`
}

// CustomListRequest opens a free-text requirement list against a shop.
type CustomListRequest struct {
	ShopID   string `json:"shop_id" validate:"required"`
	ListText string `json:"list_text" validate:"required"`
}

// QuoteRequest carries the shopkeeper's price for a custom list.
type QuoteRequest struct {
	Amount int `json:"amount" validate:"gt=0"`
}

// StatusRequest carries the target status of an owner-driven transition.
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending quoted accepted delivered cancelled"`
}

// FeatureRequest flips the storefront featured flag of a shop.
type FeatureRequest struct {
	Featured bool `json:"featured"`
}

// Review is the wire representation of a shop review.
type Review struct {
	ID           string    `json:"id"`
	ShopID       string    `json:"shop_id"`
	OrderID      string    `json:"order_id"`
	CustomerID   string    `json:"customer_id"`
	CustomerName string    `json:"customer_name,omitempty"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReviewRequest is the body of the review submission call.
type ReviewRequest struct {
	OrderID string `json:"order_id" validate:"required"`
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment" validate:"required"`
}

// Notification is the wire representation of an inbox entry.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func ShopEntityToJSON(s entities.Shop) Shop {
	return Shop{
		ID:                s.ID,
		OwnerID:           s.OwnerID,
		OwnerName:         s.OwnerName,
		Name:              s.Name,
		Category:          s.Category,
		Type:              string(s.Type),
		Address:           s.Address,
		Landmark:          s.Landmark,
		Pincode:           s.Pincode,
		City:              s.City,
		State:             s.State,
		Phone:             s.Phone,
		WhatsApp:          s.WhatsApp,
		OpeningHours:      s.OpeningHours,
		ImageURL:          s.ImageURL,
		LogoURL:           s.LogoURL,
		Status:            string(s.Status),
		IsFeatured:        s.IsFeatured,
		Commission:        s.Commission,
		DeliveryAvailable: s.DeliveryAvailable,
		DeliveryRadius:    s.DeliveryRadius,
		DeliveryFee:       s.DeliveryFee,
		PerKmCharge:       s.PerKmCharge,
		Latitude:          s.Latitude,
		Longitude:         s.Longitude,
		Rating:            s.Rating,
		ReviewCount:       s.ReviewCount,
		CreatedAt:         s.CreatedAt,
	}
}

func ShopRequestToEntity(req ShopRequest) entities.Shop {
	return entities.Shop{
		Name:              req.Name,
		Category:          req.Category,
		Type:              entities.ShopType(req.Type),
		Address:           req.Address,
		Landmark:          req.Landmark,
		Pincode:           req.Pincode,
		City:              req.City,
		State:             req.State,
		Phone:             req.Phone,
		WhatsApp:          req.WhatsApp,
		OpeningHours:      req.OpeningHours,
		ImageURL:          req.ImageURL,
		LogoURL:           req.LogoURL,
		DeliveryAvailable: req.DeliveryAvailable,
		DeliveryRadius:    req.DeliveryRadius,
		DeliveryFee:       req.DeliveryFee,
		PerKmCharge:       req.PerKmCharge,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
	}
}

func ShopsEntityToJSON(shops []entities.Shop) []Shop {
	out := make([]Shop, 0, len(shops))
	for _, s := range shops {
		out = append(out, ShopEntityToJSON(s))
	}
	return out
}

func ProductEntityToJSON(p entities.Product) Product {
	return Product{
		ID:          p.ID,
		ShopID:      p.ShopID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		IsService:   p.IsService,
	}
}

func ProductRequestToEntity(req ProductRequest) entities.Product {
	return entities.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		IsService:   req.IsService,
	}
}

func ProductsEntityToJSON(products []entities.Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, ProductEntityToJSON(p))
	}
	return out
}

func OrderEntityToJSON(o entities.Order) Order {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return Order{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		CustomerName:  o.CustomerName,
		ShopID:        o.ShopID,
		ShopName:      o.ShopName,
		Type:          string(o.Type),
		Status:        string(o.Status),
		TotalAmount:   o.TotalAmount,
		QuoteAmount:   o.QuoteAmount,
		PaymentMethod: string(o.PaymentMethod),
		ListText:      o.ListText,
		IsRated:       o.IsRated,
		CreatedAt:     o.CreatedAt,
		Items:         items,
	}
}

func OrdersEntityToJSON(orders []entities.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderEntityToJSON(o))
	}
	return out
}

func CheckoutRequestToInput(req CheckoutRequest) service.CheckoutInput {
	lines := make([]service.CartLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, service.CartLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	var loc *entities.Location
	if req.Location != nil {
		loc = &entities.Location{Lat: req.Location.Lat, Lon: req.Location.Lon}
	}
	return service.CheckoutInput{
		Lines:          lines,
		Location:       loc,
		PaymentMethod:  entities.PaymentMethod(req.PaymentMethod),
		IdempotencyKey: req.IdempotencyKey,
	}
}

func ReviewEntityToJSON(r entities.Review) Review {
	return Review{
		ID:           r.ID,
		ShopID:       r.ShopID,
		OrderID:      r.OrderID,
		CustomerID:   r.CustomerID,
		CustomerName: r.CustomerName,
		Rating:       r.Rating,
		Comment:      r.Comment,
		CreatedAt:    r.CreatedAt,
	}
}

func ReviewsEntityToJSON(reviews []entities.Review) []Review {
	out := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ReviewEntityToJSON(r))
	}
	return out
}

func NotificationEntityToJSON(n entities.Notification) Notification {
	return Notification{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Kind:      string(n.Kind),
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func NotificationsEntityToJSON(ns []entities.Notification) []Notification {
	out := make([]Notification, 0, len(ns))
	for _, n := range ns {
		out = append(out, NotificationEntityToJSON(n))
	}
	return out
}
