package analysis

import (
	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/spatial"
)

// StayMatch is the outcome of resolving a stationary window
type StayMatch struct {
	EndIndex    int
	StayPointID int64
	Duration    float64
	Created     bool
}

// StayRegistry holds a dataset's stay points while detection runs. Ids come
// from a per-dataset sequence starting at 1, so the lowest matching id is
// always the first-created match.
type StayRegistry struct {
	dataset   string
	threshold float64
	index     *spatial.StayIndex
	points    []*models.StayPoint
	nextID    int64
}

// NewStayRegistry creates an empty registry for the dataset's parameters
func NewStayRegistry(params models.Params) *StayRegistry {
	return &StayRegistry{
		dataset:   params.DatasetName,
		threshold: params.DistanceThreshold,
		index:     spatial.NewStayIndex(params.DistanceThreshold, params.IsGeographicalCoordinates),
		nextID:    1,
	}
}

// Match resolves a window of an entity's trace to a stay point. A stay point
// within the distance threshold of center absorbs the visit, otherwise a new
// one is created at center. Centers never move after creation.
func (r *StayRegistry) Match(entityID int64, center spatial.Point, arv, lev float64, endIndex int) (StayMatch, models.Visit) {
	duration := lev - arv
	match := StayMatch{EndIndex: endIndex, Duration: duration}

	if id, ok := r.index.Match(center); ok {
		sp := r.points[id-1]
		sp.NumVisits++
		sp.TotalVisitsTime += duration
		match.StayPointID = id
	} else {
		id := r.nextID
		r.nextID++
		r.points = append(r.points, &models.StayPoint{
			Dataset:         r.dataset,
			StayPointID:     id,
			XCenter:         center.X,
			YCenter:         center.Y,
			ZCenter:         center.Z,
			NumVisits:       1,
			TotalVisitsTime: duration,
		})
		r.index.Insert(id, center)
		match.StayPointID = id
		match.Created = true
	}

	visit := models.Visit{
		Dataset:     r.dataset,
		EntityID:    entityID,
		StayPointID: match.StayPointID,
		ArvTime:     arv,
		LevTime:     lev,
		VisitTime:   duration,
	}
	return match, visit
}

// Len returns the number of stay points created so far
func (r *StayRegistry) Len() int {
	return len(r.points)
}

// StayPoints returns a copy of the registry's stay points in id order
func (r *StayRegistry) StayPoints() []models.StayPoint {
	out := make([]models.StayPoint, len(r.points))
	for i, sp := range r.points {
		out[i] = *sp
	}
	return out
}
