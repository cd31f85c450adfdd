package entities

import "time"

type Review struct {
	ID           string
	ShopID       string
	OrderID      string
	CustomerID   string
	CustomerName string
	Rating       int
	Comment      string
	CreatedAt    time.Time
}
