package models

import "github.com/jengzang/mobility-metrics-go/internal/spatial"

// StayPoint is a location where entities remained stationary. Its center is
// fixed when the first qualifying visit creates it.
type StayPoint struct {
	ID          int64   `json:"-" db:"id"`
	Dataset     string  `json:"dataset" db:"dataset"`
	StayPointID int64   `json:"stay_point_id" db:"stay_point_id"`
	XCenter     float64 `json:"x_center" db:"x_center"`
	YCenter     float64 `json:"y_center" db:"y_center"`
	ZCenter     float64 `json:"z_center" db:"z_center"`

	NumVisits        int      `json:"num_visits" db:"num_visits"`
	TotalVisitsTime  float64  `json:"total_visits_time" db:"total_visits_time"`
	Entropy          *float64 `json:"entropy,omitempty" db:"entropy"`
	ImportanceDegree *float64 `json:"importance_degree,omitempty" db:"importance_degree"`
}

// Center returns the stay point's center
func (s StayPoint) Center() spatial.Point {
	return spatial.Point{X: s.XCenter, Y: s.YCenter, Z: s.ZCenter}
}

// Visit is one stationary segment of an entity resolved to a stay point
type Visit struct {
	ID          int64   `json:"-" db:"id"`
	Dataset     string  `json:"dataset" db:"dataset"`
	EntityID    int64   `json:"entity_id" db:"entity_id"`
	StayPointID int64   `json:"stay_point_id" db:"stay_point_id"`
	ArvTime     float64 `json:"arv_time" db:"arv_time"`
	LevTime     float64 `json:"lev_time" db:"lev_time"`
	VisitTime   float64 `json:"visit_time" db:"visit_time"`
}
