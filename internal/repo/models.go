package repo

import (
	"database/sql"
	"math"
	"time"

	"github.com/localbazaar/market-service/internal/entities"
)

type Shop struct {
	ID        string `db:"id"`
	OwnerID   string `db:"owner_id"`
	OwnerName string `db:"owner_name"`
	Name      string `db:"name"`
	Category  string `db:"category"`
	ShopType  string `db:"shop_type"`

	Address  string         `db:"address"`
	Landmark sql.NullString `db:"landmark"`
	Pincode  string         `db:"pincode"`
	City     string         `db:"city"`
	State    string         `db:"state"`
	Phone    string         `db:"phone"`
	WhatsApp sql.NullString `db:"whatsapp"`

	OpeningHours string         `db:"opening_hours"`
	ImageURL     sql.NullString `db:"image_url"`
	LogoURL      sql.NullString `db:"logo_url"`

	Status     string `db:"status"`
	IsFeatured bool   `db:"is_featured"`
	Commission int    `db:"commission"`

	DeliveryAvailable bool `db:"delivery_available"`
	DeliveryRadius    int  `db:"delivery_radius"`
	DeliveryFee       int  `db:"delivery_fee"`
	PerKmCharge       int  `db:"per_km_charge"`

	Latitude  float64 `db:"latitude"`
	Longitude float64 `db:"longitude"`

	AvgRating   sql.NullFloat64 `db:"avg_rating"`
	ReviewCount sql.NullInt64   `db:"review_count"`

	CreatedAt time.Time `db:"created_at"`
}

type Product struct {
	ID          string         `db:"id"`
	ShopID      string         `db:"shop_id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Price       int            `db:"price"`
	Stock       int            `db:"stock"`
	ImageURL    sql.NullString `db:"image_url"`
	IsService   bool           `db:"is_service"`
}

type Order struct {
	ID           string `db:"id"`
	CustomerID   string `db:"customer_id"`
	CustomerName string `db:"customer_name"`
	ShopID       string `db:"shop_id"`
	ShopName     string `db:"shop_name"`

	Type   string `db:"order_type"`
	Status string `db:"status"`

	TotalAmount   int            `db:"total_amount"`
	QuoteAmount   sql.NullInt32  `db:"quote_amount"`
	PaymentMethod sql.NullString `db:"payment_method"`
	ListText      sql.NullString `db:"list_text"`

	IsRated        bool           `db:"is_rated"`
	IdempotencyKey sql.NullString `db:"idempotency_key"`
	CreatedAt      time.Time      `db:"created_at"`
}

type OrderItem struct {
	ID        string         `db:"id"`
	OrderID   string         `db:"order_id"`
	ProductID sql.NullString `db:"product_id"`
	Name      string         `db:"name"`
	Quantity  int            `db:"quantity"`
	Price     int            `db:"price"`
}

type User struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
	Role  string `db:"role"`
}

type Review struct {
	ID           string    `db:"id"`
	ShopID       string    `db:"shop_id"`
	OrderID      string    `db:"order_id"`
	CustomerID   string    `db:"customer_id"`
	CustomerName string    `db:"customer_name"`
	Rating       int       `db:"rating"`
	Comment      string    `db:"comment"`
	CreatedAt    time.Time `db:"created_at"`
}

type Notification struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	Kind      string    `db:"kind"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}

func ShopToEntity(s Shop) entities.Shop {
	shop := entities.Shop{
		ID:        s.ID,
		OwnerID:   s.OwnerID,
		OwnerName: s.OwnerName,
		Name:      s.Name,
		Category:  s.Category,
		Type:      entities.ShopType(s.ShopType),

		Address:  s.Address,
		Landmark: nullStringToString(s.Landmark),
		Pincode:  s.Pincode,
		City:     s.City,
		State:    s.State,
		Phone:    s.Phone,
		WhatsApp: nullStringToString(s.WhatsApp),

		OpeningHours: s.OpeningHours,
		ImageURL:     nullStringToString(s.ImageURL),
		LogoURL:      nullStringToString(s.LogoURL),

		Status:     entities.ShopStatus(s.Status),
		IsFeatured: s.IsFeatured,
		Commission: s.Commission,

		DeliveryAvailable: s.DeliveryAvailable,
		DeliveryRadius:    s.DeliveryRadius,
		DeliveryFee:       s.DeliveryFee,
		PerKmCharge:       s.PerKmCharge,

		Latitude:  s.Latitude,
		Longitude: s.Longitude,

		CreatedAt: s.CreatedAt,
	}

	if s.ReviewCount.Valid {
		shop.ReviewCount = int(s.ReviewCount.Int64)
	}
	if s.AvgRating.Valid {
		// one decimal, "unrated" stays nil
		rating := math.Round(s.AvgRating.Float64*10) / 10
		shop.Rating = &rating
	}

	return shop
}

func ProductToEntity(p Product) entities.Product {
	return entities.Product{
		ID:          p.ID,
		ShopID:      p.ShopID,
		Name:        p.Name,
		Description: nullStringToString(p.Description),
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    nullStringToString(p.ImageURL),
		IsService:   p.IsService,
	}
}

func OrderToEntity(o Order, items []OrderItem) entities.Order {
	order := entities.Order{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		CustomerName: o.CustomerName,
		ShopID:       o.ShopID,
		ShopName:     o.ShopName,

		Type:   entities.OrderType(o.Type),
		Status: entities.OrderStatus(o.Status),

		TotalAmount:   o.TotalAmount,
		QuoteAmount:   nullInt32ToInt(o.QuoteAmount),
		PaymentMethod: entities.PaymentMethod(nullStringToString(o.PaymentMethod)),
		ListText:      nullStringToString(o.ListText),

		IsRated:   o.IsRated,
		CreatedAt: o.CreatedAt,
	}

	if len(items) > 0 {
		order.Items = make([]entities.OrderItem, 0, len(items))
		for _, it := range items {
			order.Items = append(order.Items, OrderItemToEntity(it))
		}
	}

	return order
}

func OrderItemToEntity(i OrderItem) entities.OrderItem {
	return entities.OrderItem{
		ID:        i.ID,
		OrderID:   i.OrderID,
		ProductID: nullStringToString(i.ProductID),
		Name:      i.Name,
		Quantity:  i.Quantity,
		Price:     i.Price,
	}
}

func UserToEntity(u User) entities.User {
	return entities.User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  entities.Role(u.Role),
	}
}

func ReviewToEntity(r Review) entities.Review {
	return entities.Review{
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

func NotificationToEntity(n Notification) entities.Notification {
	return entities.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Kind:      entities.NotificationKind(n.Kind),
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
