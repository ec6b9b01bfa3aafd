package models

// QuadrantCell is one occupied cell of a quadrant_parts x quadrant_parts grid
// laid over a bounding box. A nil EntityID marks the dataset-wide grid.
type QuadrantCell struct {
	ID           int64   `json:"-" db:"id"`
	Dataset      string  `json:"dataset" db:"dataset"`
	EntityID     *int64  `json:"entity_id" db:"entity_id"`
	XIndex       int     `json:"x_index" db:"x_index"`
	YIndex       int     `json:"y_index" db:"y_index"`
	VisitCount   int     `json:"visit_count" db:"visit_count"`
	Entropy      float64 `json:"entropy" db:"entropy"`
	SpatialCover int     `json:"spatial_cover" db:"spatial_cover"`
}
