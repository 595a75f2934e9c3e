// Package geo holds the spherical math behind radius search.
package geo

import "math"

// EarthRadiusMiles is the mean Earth radius used to turn distances into angles.
const EarthRadiusMiles = 3963.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// AngularRadius converts a distance in miles to a spherical cap radius in radians.
func AngularRadius(distanceMiles float64) float64 {
	return distanceMiles / EarthRadiusMiles
}

// CentralAngle is the great-circle angle between a and b in radians (haversine form).
func CentralAngle(a, b Point) float64 {
	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLon := degreesToRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(a.Latitude))*math.Cos(degreesToRadians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistanceMiles is the great-circle distance between a and b.
func DistanceMiles(a, b Point) float64 {
	return CentralAngle(a, b) * EarthRadiusMiles
}

// WithinCap reports whether p lies inside the cap of radius radians around center.
func WithinCap(center, p Point, radius float64) bool {
	return CentralAngle(center, p) <= radius
}

// BoundingBox returns the latitude/longitude box enclosing the cap, used to
// prefilter rows before the exact angle test.
func BoundingBox(center Point, radius float64) (minLat, maxLat, minLon, maxLon float64) {
	deg := radius * 180 / math.Pi
	minLat = math.Max(center.Latitude-deg, -90)
	maxLat = math.Min(center.Latitude+deg, 90)

	cosLat := math.Cos(degreesToRadians(center.Latitude))
	if cosLat < 1e-9 || maxLat >= 90 || minLat <= -90 {
		return minLat, maxLat, -180, 180
	}
	lonDeg := deg / cosLat
	minLon, maxLon = center.Longitude-lonDeg, center.Longitude+lonDeg
	// a box crossing the antimeridian cannot be one BETWEEN range
	if lonDeg >= 180 || minLon < -180 || maxLon > 180 {
		return minLat, maxLat, -180, 180
	}
	return minLat, maxLat, minLon, maxLon
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
