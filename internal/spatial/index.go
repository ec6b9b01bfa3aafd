package spatial

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

type indexEntry struct {
	id     int64
	center Point
}

// StayIndex buckets stay-point centers so that resolving a candidate center
// only tests the centers stored in neighbouring buckets. Cartesian traces use
// a uniform grid with the match radius as cell size; geographic traces use s2
// cells at the deepest level whose cells are still at least as wide as the
// radius.
type StayIndex struct {
	radius     float64
	geographic bool

	// Cartesian
	cellSize float64
	grid     map[[3]int64][]indexEntry

	// Geographic
	level int
	angle s1.Angle
	cells map[s2.CellID][]indexEntry
}

// NewStayIndex creates an index that answers "first center within radius".
func NewStayIndex(radius float64, geographic bool) *StayIndex {
	idx := &StayIndex{
		radius:     radius,
		geographic: geographic,
	}

	if geographic {
		// Pad the search cap so rounding never drops a center on the boundary.
		angle := radius/EarthRadiusMeters*(1+1e-9) + 1e-12
		if angle > math.Pi {
			angle = math.Pi
		}
		idx.angle = s1.Angle(angle)
		idx.level = s2.MinWidthMetric.MaxLevel(angle)
		idx.cells = make(map[s2.CellID][]indexEntry)
		return idx
	}

	idx.cellSize = radius
	if idx.cellSize <= 0 {
		idx.cellSize = 1
	}
	idx.grid = make(map[[3]int64][]indexEntry)
	return idx
}

// Insert adds a center under the given id. Ids are expected to increase with
// insertion order.
func (idx *StayIndex) Insert(id int64, center Point) {
	e := indexEntry{id: id, center: center}
	if idx.geographic {
		cell := idx.cellFor(center)
		idx.cells[cell] = append(idx.cells[cell], e)
		return
	}

	key := idx.gridKey(center)
	idx.grid[key] = append(idx.grid[key], e)
}

// Match returns the lowest id whose center lies within the radius of p.
func (idx *StayIndex) Match(p Point) (int64, bool) {
	var (
		best  int64
		found bool
	)
	consider := func(entries []indexEntry) {
		for _, e := range entries {
			if found && e.id >= best {
				continue
			}
			if Distance(e.center, p, idx.geographic) <= idx.radius {
				best = e.id
				found = true
			}
		}
	}

	if idx.geographic {
		ll := s2.LatLngFromDegrees(p.Y, p.X)
		region := s2.CapFromCenterAngle(s2.PointFromLatLng(ll), idx.angle)
		for _, cell := range s2.SimpleRegionCovering(region, s2.PointFromLatLng(ll), idx.level) {
			consider(idx.cells[cell])
		}
		return best, found
	}

	key := idx.gridKey(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				consider(idx.grid[[3]int64{key[0] + dx, key[1] + dy, key[2] + dz}])
			}
		}
	}
	return best, found
}

// Len returns the number of indexed centers
func (idx *StayIndex) Len() int {
	n := 0
	if idx.geographic {
		for _, entries := range idx.cells {
			n += len(entries)
		}
		return n
	}
	for _, entries := range idx.grid {
		n += len(entries)
	}
	return n
}

func (idx *StayIndex) cellFor(p Point) s2.CellID {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(p.Y, p.X)).Parent(idx.level)
}

func (idx *StayIndex) gridKey(p Point) [3]int64 {
	return [3]int64{
		int64(math.Floor(p.X / idx.cellSize)),
		int64(math.Floor(p.Y / idx.cellSize)),
		int64(math.Floor(p.Z / idx.cellSize)),
	}
}
