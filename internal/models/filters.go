package models

// RunFilter represents filter parameters for listing processing runs
type RunFilter struct {
	Dataset string `form:"dataset"`
	Status  string `form:"status"` // pending, running, completed, failed
	Limit   int    `form:"limit"`
	Offset  int    `form:"offset"`
}

// EntityFilter narrows per-entity listings to one entity
type EntityFilter struct {
	EntityID *int64 `form:"entity_id"`
}

// QuadrantFilter selects the dataset-wide grid or one entity's grid
type QuadrantFilter struct {
	EntityID *int64 `form:"entity_id"`
	Global   bool   `form:"global"` // only cells with a nil entity
}
