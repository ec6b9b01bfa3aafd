package analysis

import (
	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/spatial"
	"github.com/jengzang/mobility-metrics-go/internal/stats"
)

// DetectStayPoints scans one entity's time-sorted track for stationary
// windows and resolves each one through the registry. Points absorbed by a
// window get the resolved stay point id, every other point is reset to 0.
//
// A window starts at an anchor point and extends while the next point stays
// within the distance threshold of the anchor. It qualifies when it lasts at
// least the time threshold; the scan then resumes after it, otherwise at the
// point following the anchor.
func DetectStayPoints(track []models.TracePoint, params models.Params, reg *StayRegistry) []models.Visit {
	for k := range track {
		track[k].StayPointID = 0
	}
	n := len(track)
	if n < 2 {
		return nil
	}

	geo := params.IsGeographicalCoordinates
	var visits []models.Visit

	start := 0
	for start < n {
		anchor := track[start].Position()
		sum := anchor
		end := start + 1
		for end < n {
			p := track[end].Position()
			if spatial.Distance(anchor, p, geo) > params.DistanceThreshold {
				break
			}
			sum.X += p.X
			sum.Y += p.Y
			sum.Z += p.Z
			end++
		}

		arv := track[start].Time
		lev := track[end-1].Time
		if lev-arv < params.TimeThreshold {
			start++
			continue
		}

		count := float64(end - start)
		center := spatial.Point{
			X: stats.Round(sum.X/count, 5),
			Y: stats.Round(sum.Y/count, 5),
			Z: stats.Round(sum.Z/count, 5),
		}

		match, visit := reg.Match(track[start].EntityID, center, arv, lev, end)
		for k := start; k < match.EndIndex; k++ {
			track[k].StayPointID = match.StayPointID
		}
		visits = append(visits, visit)
		start = match.EndIndex
	}

	return visits
}
