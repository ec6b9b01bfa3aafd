package models

// Proximity is an instantaneous contact: two entities closer than the
// radius threshold at the same timestamp. ID1 is always the smaller id.
type Proximity struct {
	ID1       int64   `json:"id1"`
	ID2       int64   `json:"id2"`
	Timestamp float64 `json:"timestamp"`
}

// Contact is a continuous interval during which two entities stayed in proximity
type Contact struct {
	ID               int64   `json:"-" db:"id"`
	Dataset          string  `json:"dataset" db:"dataset"`
	ID1              int64   `json:"id1" db:"id1"`
	ID2              int64   `json:"id2" db:"id2"`
	InitialTimestamp float64 `json:"initial_timestamp" db:"initial_timestamp"`
	FinalTimestamp   float64 `json:"final_timestamp" db:"final_timestamp"`
	ContactTime      float64 `json:"contact_time" db:"contact_time"`
}
