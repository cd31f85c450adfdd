package entities

import (
	"bytes"
	"encoding/gob"
	"time"
)

type ShopStatus string

const (
	ShopPending  ShopStatus = "pending"
	ShopApproved ShopStatus = "approved"
	ShopRejected ShopStatus = "rejected"
)

type ShopType string

const (
	ShopTypeProduct ShopType = "product"
	ShopTypeService ShopType = "service"
	ShopTypeBoth    ShopType = "both"
)

type Shop struct {
	ID        string
	OwnerID   string
	OwnerName string
	Name      string
	Category  string
	Type      ShopType

	Address  string
	Landmark string
	Pincode  string
	City     string
	State    string
	Phone    string
	WhatsApp string

	OpeningHours string
	ImageURL     string
	LogoURL      string

	Status     ShopStatus
	IsFeatured bool
	Commission int

	DeliveryAvailable bool
	DeliveryRadius    int
	DeliveryFee       int
	PerKmCharge       int

	Latitude  float64
	Longitude float64

	// Rating is the mean of the shop's review ratings rounded to one decimal,
	// nil while the shop is unrated.
	Rating      *float64
	ReviewCount int

	CreatedAt time.Time
}

func (s *Shop) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Shop) Unmarshal(data []byte) error {
	return gob.NewDecoder(bytes.NewBuffer(data)).Decode(s)
}

func init() {
	gob.Register(Shop{})
}
