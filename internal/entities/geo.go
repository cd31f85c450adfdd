package entities

import "math"

// Location is an optional customer position supplied by the client's
// geolocation provider. Absence degrades delivery fees to base-fee-only.
type Location struct {
	Lat float64
	Lon float64
}

const earthRadiusKm = 6371

// DistanceKm is the great-circle distance between two points (haversine).
func DistanceKm(from Location, to Location) float64 {
	dLat := (to.Lat - from.Lat) * math.Pi / 180
	dLon := (to.Lon - from.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(from.Lat*math.Pi/180)*math.Cos(to.Lat*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// DeliveryFee computes the fee a shop charges to deliver to loc: the shop's
// base fee, plus per-km charge times distance when both a location and a
// per-km rate are known. Rounded to the nearest whole unit.
func DeliveryFee(shop Shop, loc *Location) int {
	fee := float64(shop.DeliveryFee)
	if loc != nil && shop.PerKmCharge > 0 {
		dist := DistanceKm(*loc, Location{Lat: shop.Latitude, Lon: shop.Longitude})
		fee += dist * float64(shop.PerKmCharge)
	}
	return int(math.Round(fee))
}
