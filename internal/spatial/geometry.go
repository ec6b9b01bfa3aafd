package spatial

import (
	"math"
)

// CenterOfMass returns the arithmetic mean position of a set of points
func CenterOfMass(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}

	var sumX, sumY, sumZ float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
		sumZ += p.Z
	}

	n := float64(len(points))
	return Point{X: sumX / n, Y: sumY / n, Z: sumZ / n}
}

// RadiusOfGyration calculates the root mean square distance of the points
// from the given center. This measures the spatial dispersion of a trace.
func RadiusOfGyration(points []Point, center Point, geographic bool) float64 {
	if len(points) == 0 {
		return 0
	}

	var sumSquaredDist float64
	for _, p := range points {
		dist := Distance(center, p, geographic)
		sumSquaredDist += dist * dist
	}

	return math.Sqrt(sumSquaredDist / float64(len(points)))
}

// Bounds is an axis aligned x/y extent
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// BoundingBox calculates the x/y bounding box of a set of points
func BoundingBox(points []Point) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}

	b := Bounds{
		MinX: points[0].X, MaxX: points[0].X,
		MinY: points[0].Y, MaxY: points[0].Y,
	}
	for _, p := range points[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}

	return b
}

// PathLength calculates the total length of a path (sequence of points)
func PathLength(points []Point, geographic bool) float64 {
	if len(points) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i], geographic)
	}

	return total
}
