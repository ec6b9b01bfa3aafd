package models

// EntityMetrics holds every per-entity metric of a dataset
type EntityMetrics struct {
	ID       int64  `json:"-" db:"id"`
	Dataset  string `json:"dataset" db:"dataset"`
	Label    string `json:"label" db:"label"`
	EntityID int64  `json:"entity_id" db:"entity_id"`

	// Total travel
	TravelTime     float64 `json:"travel_time" db:"travel_time"`
	TravelDistance float64 `json:"travel_distance" db:"travel_distance"`
	TravelAvgSpeed float64 `json:"travel_avg_speed" db:"travel_avg_speed"`

	// Spatial
	XCenter                   float64 `json:"x_center" db:"x_center"`
	YCenter                   float64 `json:"y_center" db:"y_center"`
	ZCenter                   float64 `json:"z_center" db:"z_center"`
	RadiusOfGyration          float64 `json:"radius_of_gyration" db:"radius_of_gyration"`
	AvgDirectionAngle         float64 `json:"avg_direction_angle" db:"avg_direction_angle"`
	AngleVariationCoefficient float64 `json:"angle_variation_coefficient" db:"angle_variation_coefficient"`
	OccupiedQuadrants         int     `json:"occupied_quadrants" db:"occupied_quadrants"`

	// Stay points
	NumStayPointsVisits           int     `json:"num_stay_points_visits" db:"num_stay_points_visits"`
	AvgTimeVisit                  float64 `json:"avg_time_visit" db:"avg_time_visit"`
	VisitTimeVariationCoefficient float64 `json:"visit_time_variation_coefficient" db:"visit_time_variation_coefficient"`

	// Journeys
	NumJourneys        int     `json:"num_journeys" db:"num_journeys"`
	AvgJourneyTime     float64 `json:"avg_journey_time" db:"avg_journey_time"`
	AvgJourneyDistance float64 `json:"avg_journey_distance" db:"avg_journey_distance"`
	AvgJourneyAvgSpeed float64 `json:"avg_journey_avg_speed" db:"avg_journey_avg_speed"`

	// Contacts
	TotalContactTime float64 `json:"total_contact_time" db:"total_contact_time"`
	NumContacts      int     `json:"num_contacts" db:"num_contacts"`
	AvgContactTime   float64 `json:"avg_contact_time" db:"avg_contact_time"`
}

// ProfileVector returns the features that make up the mobility profile
func (m EntityMetrics) ProfileVector() []float64 {
	return []float64{
		m.TravelTime,
		m.TravelDistance,
		m.TravelAvgSpeed,
		float64(m.NumJourneys),
		m.AvgJourneyTime,
		m.AvgJourneyDistance,
		m.AvgJourneyAvgSpeed,
		float64(m.NumStayPointsVisits),
	}
}

// GlobalMetrics is the dataset-level roll-up
type GlobalMetrics struct {
	Dataset string `json:"dataset" db:"dataset"`
	Label   string `json:"label" db:"label"`

	// Total travel
	AvgTravelTime     float64 `json:"avg_travel_time" db:"avg_travel_time"`
	AvgTravelDistance float64 `json:"avg_travel_distance" db:"avg_travel_distance"`
	AvgTravelAvgSpeed float64 `json:"avg_travel_avg_speed" db:"avg_travel_avg_speed"`

	// Spatial
	AvgXCenter          float64 `json:"avg_x_center" db:"avg_x_center"`
	AvgYCenter          float64 `json:"avg_y_center" db:"avg_y_center"`
	AvgZCenter          float64 `json:"avg_z_center" db:"avg_z_center"`
	AvgRadiusOfGyration float64 `json:"avg_radius_of_gyration" db:"avg_radius_of_gyration"`
	TotalSpatialCover   int     `json:"total_spatial_cover" db:"total_spatial_cover"`

	// Stay points
	NumStayPoints                int     `json:"num_stay_points" db:"num_stay_points"`
	AvgStayPointsVisitsPerEntity float64 `json:"avg_stay_points_visits_per_entity" db:"avg_stay_points_visits_per_entity"`
	NumStayPointsVisits          int     `json:"num_stay_points_visits" db:"num_stay_points_visits"`
	AvgStayPointEntropy          float64 `json:"avg_stay_point_entropy" db:"avg_stay_point_entropy"`

	// Quadrants
	AvgQuadrantEntropy float64 `json:"avg_quadrant_entropy" db:"avg_quadrant_entropy"`

	// Contacts
	NumContacts int `json:"num_contacts" db:"num_contacts"`

	// Journeys
	NumJourneys        int     `json:"num_journeys" db:"num_journeys"`
	AvgJourneyTime     float64 `json:"avg_journey_time" db:"avg_journey_time"`
	AvgJourneyDistance float64 `json:"avg_journey_distance" db:"avg_journey_distance"`
	AvgJourneyAvgSpeed float64 `json:"avg_journey_avg_speed" db:"avg_journey_avg_speed"`

	// Population
	MobilityProfile               float64 `json:"mobility_profile" db:"mobility_profile"`
	TrajectoryCorrelation         float64 `json:"trajectory_correlation" db:"trajectory_correlation"`
	SpeedVariationCoefficient     float64 `json:"speed_variation_coefficient" db:"speed_variation_coefficient"`
	VisitTimeVariationCoefficient float64 `json:"visit_time_variation_coefficient" db:"visit_time_variation_coefficient"`

	CreatedAt int64 `json:"created_at" db:"created_at"` // Unix timestamp
}
