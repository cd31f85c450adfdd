package entities

import "time"

type NotificationKind string

const (
	NotificationOrder NotificationKind = "order"
	NotificationQuote NotificationKind = "quote"
	NotificationStock NotificationKind = "stock"
)

// Notification is append-only; only the addressee flips the read flag.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Kind      NotificationKind
	Read      bool
	CreatedAt time.Time
}
