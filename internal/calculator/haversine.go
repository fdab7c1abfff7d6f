package calculator

import (
	"math"

	"dtv-fixtures/internal/models"
)

const earthRadius = 6371000.0 // meters

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Haversine computes the distance between two points in meters
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	dLat := lat2Rad - lat1Rad
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Distance is Haversine over two coordinates.
func Distance(a, b models.Coordinate) float64 {
	return Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

// Nearest returns the index of the closest point and its distance in meters.
// With no points it returns -1 and +Inf.
func Nearest(c models.Coordinate, points []models.PickitPoint) (int, float64) {
	nearestIdx := -1
	minDist := math.Inf(1)
	for i, p := range points {
		d := Distance(c, p.Loc)
		if d < minDist {
			minDist = d
			nearestIdx = i
		}
	}
	return nearestIdx, minDist
}
