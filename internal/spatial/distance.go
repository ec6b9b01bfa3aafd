package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
	degreesPerRadian  = 180 / math.Pi
)

// Point is a trace position. For geographic traces X is the longitude and Y
// the latitude in degrees; Z is always an altitude in trace units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Distance returns the distance between a and b. Geographic points use the
// haversine surface distance combined with the altitude delta; otherwise the
// plain 3D Euclidean distance is returned.
func Distance(a, b Point, geographic bool) float64 {
	dz := b.Z - a.Z
	if geographic {
		h := HaversineDistance(a.Y, a.X, b.Y, b.X)
		return math.Sqrt(h*h + dz*dz)
	}
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Bearing calculates the initial bearing (forward azimuth) from point 1 to point 2
// Returns bearing in degrees (0-360), where 0 is North, 90 is East, etc.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 / degreesPerRadian
	lat2Rad := lat2 / degreesPerRadian
	lonDiff := (lon2 - lon1) / degreesPerRadian

	y := math.Sin(lonDiff) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) - math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(lonDiff)

	return normalizeDegrees(math.Atan2(y, x) * degreesPerRadian)
}

// DirectionAngle returns the azimuth in [0, 360) and the elevation in
// [-90, 90] of the segment from a to b, both in degrees. Geographic
// azimuths are compass bearings; Cartesian azimuths are measured from the
// x axis.
func DirectionAngle(a, b Point, geographic bool) (azimuth, elevation float64) {
	var horizontal float64
	if geographic {
		azimuth = Bearing(a.Y, a.X, b.Y, b.X)
		horizontal = HaversineDistance(a.Y, a.X, b.Y, b.X)
	} else {
		dx := b.X - a.X
		dy := b.Y - a.Y
		azimuth = normalizeDegrees(math.Atan2(dy, dx) * degreesPerRadian)
		horizontal = math.Hypot(dx, dy)
	}

	elevation = math.Atan2(b.Z-a.Z, horizontal) * degreesPerRadian
	return azimuth, elevation
}

// normalizeDegrees maps any angle onto [0, 360).
func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// -tiny + 360 rounds to exactly 360
	if deg >= 360 {
		deg = 0
	}
	return deg
}
