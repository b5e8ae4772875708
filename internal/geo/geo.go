package geo

import "math"

// Point is a geographical point with latitude and longitude in degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Distance calculates the distance between two points in kilometers using
// the haversine formula.
func Distance(p1, p2 Point) float64 {
	// Earth's radius in kilometers
	const earthRadius = 6371.0

	lat1 := p1.Latitude * math.Pi / 180.0
	lon1 := p1.Longitude * math.Pi / 180.0
	lat2 := p2.Latitude * math.Pi / 180.0
	lon2 := p2.Longitude * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// RoundKM rounds a distance to one decimal place for presentation.
func RoundKM(km float64) float64 {
	return math.Round(km*10) / 10
}
