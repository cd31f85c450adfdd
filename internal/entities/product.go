package entities

// ServiceStock is the sentinel stock value for service products. Stock is
// meaningless for services, they never run out and are never decremented.
const ServiceStock = 999

type Product struct {
	ID          string
	ShopID      string
	Name        string
	Description string
	Price       int
	Stock       int
	ImageURL    string
	IsService   bool
}
