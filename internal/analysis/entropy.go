package analysis

import (
	"sort"

	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/spatial"
	"github.com/jengzang/mobility-metrics-go/internal/stats"
)

// Importance degree weights
const (
	visitsWeight  = 0.4
	timeWeight    = 0.4
	entropyWeight = 0.2
)

// StayPointEntropy sets each stay point's share of the dataset's visits as
// its entropy term -p*log2(p)
func StayPointEntropy(points []models.StayPoint) {
	var total float64
	for _, sp := range points {
		total += float64(sp.NumVisits)
	}

	for i := range points {
		var e float64
		if total > 0 {
			e = stats.EntropyTerm(float64(points[i].NumVisits) / total)
		}
		points[i].Entropy = &e
	}
}

// ImportanceDegree scores stay points from their min-max normalized visit
// count, visit time and entropy. Frequently and long visited points with a
// low entropy score highest.
func ImportanceDegree(points []models.StayPoint) {
	if len(points) == 0 {
		return
	}

	visits := make([]float64, len(points))
	times := make([]float64, len(points))
	entropies := make([]float64, len(points))
	for i, sp := range points {
		visits[i] = float64(sp.NumVisits)
		times[i] = sp.TotalVisitsTime
		if sp.Entropy != nil {
			entropies[i] = *sp.Entropy
		}
	}

	nv := stats.Normalize(visits)
	nt := stats.Normalize(times)
	ne := stats.Normalize(entropies)
	for i := range points {
		score := visitsWeight*nv[i] + timeWeight*nt[i] + entropyWeight*(1-ne[i])
		points[i].ImportanceDegree = &score
	}
}

// QuadrantGrid divides each axis of a bounding box into equal bins
type QuadrantGrid struct {
	bounds spatial.Bounds
	dx, dy float64
}

// NewQuadrantGrid creates a grid over the bounding box of points. A
// degenerate axis gets a cell size of 1.
func NewQuadrantGrid(points []spatial.Point, parts int) QuadrantGrid {
	if parts < 1 {
		parts = 1
	}
	b := spatial.BoundingBox(points)
	g := QuadrantGrid{bounds: b, dx: 1, dy: 1}
	if b.MaxX != b.MinX {
		g.dx = (b.MaxX - b.MinX) / float64(parts)
	}
	if b.MaxY != b.MinY {
		g.dy = (b.MaxY - b.MinY) / float64(parts)
	}
	return g
}

// Cell returns the grid indices of p. Indices are not clamped: a point on
// the upper boundary of an axis gets index parts.
func (g QuadrantGrid) Cell(p spatial.Point) (int, int) {
	return int((p.X - g.bounds.MinX) / g.dx), int((p.Y - g.bounds.MinY) / g.dy)
}

// QuadrantEntropy counts points per grid cell and scores every occupied cell
// with its entropy term. Each cell carries the number of occupied cells as
// its spatial cover. Cells are ordered by (x, y) index.
func QuadrantEntropy(dataset string, entityID *int64, points []spatial.Point, parts int) []models.QuadrantCell {
	if len(points) == 0 {
		return nil
	}

	grid := NewQuadrantGrid(points, parts)
	counts := make(map[[2]int]int)
	for _, p := range points {
		x, y := grid.Cell(p)
		counts[[2]int{x, y}]++
	}

	keys := make([][2]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	total := float64(len(points))
	cells := make([]models.QuadrantCell, len(keys))
	for i, k := range keys {
		n := counts[k]
		cells[i] = models.QuadrantCell{
			Dataset:      dataset,
			EntityID:     entityID,
			XIndex:       k[0],
			YIndex:       k[1],
			VisitCount:   n,
			Entropy:      stats.EntropyTerm(float64(n) / total),
			SpatialCover: len(keys),
		}
	}
	return cells
}
