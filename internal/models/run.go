package models

// ProcessingRun tracks one execution of the pipeline over a dataset
type ProcessingRun struct {
	ID      string `json:"id" db:"id"` // UUID
	Dataset string `json:"dataset" db:"dataset"`

	// Status
	Status          string `json:"status" db:"status"` // pending, running, completed, failed
	Stage           string `json:"stage,omitempty" db:"stage"`
	ProgressPercent int    `json:"progress_percent" db:"progress_percent"`

	// Input size
	TotalPoints   int `json:"total_points" db:"total_points"`
	TotalEntities int `json:"total_entities" db:"total_entities"`

	// Execution info
	StartTime    int64  `json:"start_time,omitempty" db:"start_time"` // Unix timestamp
	EndTime      int64  `json:"end_time,omitempty" db:"end_time"`     // Unix timestamp
	ErrorMessage string `json:"error_message,omitempty" db:"error_message"`

	CreatedAt int64 `json:"created_at" db:"created_at"`
	UpdatedAt int64 `json:"updated_at" db:"updated_at"`
}

// RunStatus constants
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
