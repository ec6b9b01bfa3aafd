package models

import (
	"sort"

	"github.com/jengzang/mobility-metrics-go/internal/spatial"
)

// TracePoint is one observation of an entity
type TracePoint struct {
	Dataset  string  `json:"-" db:"dataset"`
	EntityID int64   `json:"id" db:"entity_id"`
	X        float64 `json:"x" db:"x"`
	Y        float64 `json:"y" db:"y"`
	Z        float64 `json:"z" db:"z"`
	Time     float64 `json:"time" db:"time"` // seconds

	// Stay point the observation was absorbed into, 0 while moving
	StayPointID int64 `json:"sp_id" db:"sp_id"`
}

// Position returns the point's coordinates
func (p TracePoint) Position() spatial.Point {
	return spatial.Point{X: p.X, Y: p.Y, Z: p.Z}
}

// TraceRow is an uploaded trace row. Missing ids default to 1 and missing
// altitudes to 0.
type TraceRow struct {
	ID   *int64   `json:"id"`
	X    float64  `json:"x"`
	Y    float64  `json:"y"`
	Z    *float64 `json:"z"`
	Time float64  `json:"time"`
}

// NormalizeTrace applies the input defaults and sorts the rows by
// (entity id, time). The sort is stable so equal timestamps keep their
// upload order.
func NormalizeTrace(dataset string, rows []TraceRow) []TracePoint {
	points := make([]TracePoint, len(rows))
	for i, r := range rows {
		p := TracePoint{
			Dataset:  dataset,
			EntityID: 1,
			X:        r.X,
			Y:        r.Y,
			Time:     r.Time,
		}
		if r.ID != nil {
			p.EntityID = *r.ID
		}
		if r.Z != nil {
			p.Z = *r.Z
		}
		points[i] = p
	}

	sort.SliceStable(points, func(i, j int) bool {
		if points[i].EntityID != points[j].EntityID {
			return points[i].EntityID < points[j].EntityID
		}
		return points[i].Time < points[j].Time
	})

	return points
}

// Positions extracts the coordinates of a trace
func Positions(points []TracePoint) []spatial.Point {
	out := make([]spatial.Point, len(points))
	for i, p := range points {
		out[i] = p.Position()
	}
	return out
}
