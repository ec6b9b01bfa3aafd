package analysis

import (
	"fmt"
	"sort"

	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/spatial"
)

// DetectProximities finds every pair of distinct entities observed strictly
// closer than radius at the same timestamp. Points must be sorted by entity
// so that ID1 < ID2 holds for every record.
func DetectProximities(points []models.TracePoint, radius float64, geographic bool) []models.Proximity {
	byTime := make(map[float64][]models.TracePoint)
	var timestamps []float64
	for _, p := range points {
		if _, ok := byTime[p.Time]; !ok {
			timestamps = append(timestamps, p.Time)
		}
		byTime[p.Time] = append(byTime[p.Time], p)
	}
	sort.Float64s(timestamps)

	var out []models.Proximity
	for _, t := range timestamps {
		group := byTime[t]
		sort.SliceStable(group, func(i, j int) bool { return group[i].EntityID < group[j].EntityID })

		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.EntityID == b.EntityID {
					continue
				}
				if spatial.Distance(a.Position(), b.Position(), geographic) < radius {
					out = append(out, models.Proximity{ID1: a.EntityID, ID2: b.EntityID, Timestamp: t})
				}
			}
		}
	}
	return out
}

// StitchContacts merges proximity records of the same pair into continuous
// contacts. Consecutive records belong to one contact while the gap between
// them is at most maxGap.
func StitchContacts(dataset string, proximities []models.Proximity, maxGap float64) []models.Contact {
	if len(proximities) == 0 {
		return nil
	}

	sorted := make([]models.Proximity, len(proximities))
	copy(sorted, proximities)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.ID1 != b.ID1 {
			return a.ID1 < b.ID1
		}
		if a.ID2 != b.ID2 {
			return a.ID2 < b.ID2
		}
		return a.Timestamp < b.Timestamp
	})

	var contacts []models.Contact
	flush := func(p models.Proximity, initial, final float64) {
		contacts = append(contacts, models.Contact{
			Dataset:          dataset,
			ID1:              p.ID1,
			ID2:              p.ID2,
			InitialTimestamp: initial,
			FinalTimestamp:   final,
			ContactTime:      final - initial,
		})
	}

	current := sorted[0]
	initial, final := current.Timestamp, current.Timestamp
	for _, p := range sorted[1:] {
		samePair := p.ID1 == current.ID1 && p.ID2 == current.ID2
		if samePair && p.Timestamp-final <= maxGap {
			final = p.Timestamp
			continue
		}
		flush(current, initial, final)
		current = p
		initial, final = p.Timestamp, p.Timestamp
	}
	flush(current, initial, final)

	return contacts
}

// RollUpContacts adds every contact to the metrics of both its entities and
// returns the ids whose metrics changed, in ascending order
func RollUpContacts(contacts []models.Contact, metrics map[int64]*models.EntityMetrics) ([]int64, error) {
	touched := make(map[int64]bool)
	for _, c := range contacts {
		for _, id := range [2]int64{c.ID1, c.ID2} {
			m, ok := metrics[id]
			if !ok || m == nil {
				return nil, fmt.Errorf("%w: entity %d", ErrMissingMetrics, id)
			}
			m.TotalContactTime += c.ContactTime
			m.NumContacts++
			m.AvgContactTime = m.TotalContactTime / float64(m.NumContacts)
			touched[id] = true
		}
	}

	ids := make([]int64, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
