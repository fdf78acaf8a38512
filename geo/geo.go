package geo

import "math"

// EarthRadius is the mean earth radius in meters.
const EarthRadius = 6371000.0

// DistanceFunc returns the distance in meters between two coordinates given
// in degrees. Implementations must be pure and safe for concurrent use.
type DistanceFunc func(lat1, lon1, lat2, lon2 float32) float32

// Haversine returns the great-circle distance in meters.
func Haversine(lat1, lon1, lat2, lon2 float32) float32 {
	return float32(EarthRadius * centralAngle(haversineTerm(lat1, lon1, lat2, lon2)))
}

// haversineTerm computes a = sin²(Δφ/2) + cos φ1 · cos φ2 · sin²(Δλ/2).
// Coordinate differences are taken in float32 before widening.
func haversineTerm(lat1, lon1, lat2, lon2 float32) float64 {
	dLat := toRadians(float64(lat2 - lat1))
	dLon := toRadians(float64(lon2 - lon1))

	sLat := math.Sin(dLat / 2)
	sLon := math.Sin(dLon / 2)

	return sLat*sLat + math.Cos(toRadians(float64(lat1)))*math.Cos(toRadians(float64(lat2)))*sLon*sLon
}

func centralAngle(a float64) float64 {
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
