// Package travel provides the travel-time collaborator contract and a
// haversine-based default estimator.
package travel

import "math"

// TimeProvider estimates door-to-door travel time between two coordinates.
type TimeProvider interface {
	TravelTimeMinutes(lat1, lon1, lat2, lon2 float64) float64
}

const (
	earthRadiusKm = 6371.0
	// urbanSpeedKmh is the assumed effective speed including transfers.
	urbanSpeedKmh = 18.0
)

// HaversineEstimator implements TimeProvider from great-circle distance at a
// fixed urban speed.
type HaversineEstimator struct {
	// SpeedKmh overrides the default effective speed when positive.
	SpeedKmh float64
}

// TravelTimeMinutes returns the estimated minutes between the two points.
func (h HaversineEstimator) TravelTimeMinutes(lat1, lon1, lat2, lon2 float64) float64 {
	speed := h.SpeedKmh
	if speed <= 0 {
		speed = urbanSpeedKmh
	}
	return DistanceKm(lat1, lon1, lat2, lon2) / speed * 60
}

// DistanceKm returns the haversine great-circle distance in kilometers.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
