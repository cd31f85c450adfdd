package entities_test

import (
	"testing"

	"github.com/localbazaar/market-service/internal/entities"
	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	// Connaught Place to India Gate is roughly 2.2km as the crow flies.
	cp := entities.Location{Lat: 28.6315, Lon: 77.2167}
	gate := entities.Location{Lat: 28.6129, Lon: 77.2295}

	d := entities.DistanceKm(cp, gate)
	assert.InDelta(t, 2.4, d, 0.5)
	assert.Zero(t, entities.DistanceKm(cp, cp))
}

func TestDeliveryFee(t *testing.T) {
	shop := entities.Shop{
		DeliveryFee: 15,
		PerKmCharge: 10,
		Latitude:    28.6315,
		Longitude:   77.2167,
	}

	t.Run("no location charges base fee only", func(t *testing.T) {
		assert.Equal(t, 15, entities.DeliveryFee(shop, nil))
	})

	t.Run("no per-km rate charges base fee only", func(t *testing.T) {
		flat := shop
		flat.PerKmCharge = 0
		loc := entities.Location{Lat: 28.7, Lon: 77.3}
		assert.Equal(t, 15, entities.DeliveryFee(flat, &loc))
	})

	t.Run("fee grows with distance", func(t *testing.T) {
		near := entities.Location{Lat: 28.6329, Lon: 77.2195}
		far := entities.Location{Lat: 28.7041, Lon: 77.1025}

		nearFee := entities.DeliveryFee(shop, &near)
		farFee := entities.DeliveryFee(shop, &far)

		assert.Greater(t, nearFee, 15)
		assert.Greater(t, farFee, nearFee)
	})

	t.Run("customer at the shop pays the base fee", func(t *testing.T) {
		atShop := entities.Location{Lat: shop.Latitude, Lon: shop.Longitude}
		assert.Equal(t, 15, entities.DeliveryFee(shop, &atShop))
	})
}
