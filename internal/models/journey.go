package models

// Journey is the movement between two temporally adjacent visits of an entity.
// LevID is 0 for movement before the first visit and ArvID is 0 for movement
// after the last one.
type Journey struct {
	ID              int64   `json:"-" db:"id"`
	Dataset         string  `json:"dataset" db:"dataset"`
	EntityID        int64   `json:"entity_id" db:"entity_id"`
	LevID           int64   `json:"lev_id" db:"lev_id"`
	ArvID           int64   `json:"arv_id" db:"arv_id"`
	JourneyDistance float64 `json:"journey_distance" db:"journey_distance"`
	JourneyTime     float64 `json:"journey_time" db:"journey_time"`
	JourneyAvgSpeed float64 `json:"journey_avg_speed" db:"journey_avg_speed"`
}

// JourneySummary aggregates an entity's journeys
type JourneySummary struct {
	NumJourneys        int     `json:"num_journeys"`
	AvgJourneyTime     float64 `json:"avg_journey_time"`
	AvgJourneyDistance float64 `json:"avg_journey_distance"`
	AvgJourneyAvgSpeed float64 `json:"avg_journey_avg_speed"`
}
