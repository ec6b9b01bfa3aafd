package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidParams is returned when a pipeline configuration is incomplete or out of range
var ErrInvalidParams = errors.New("invalid parameters")

// Params is the configuration of one dataset run
type Params struct {
	DatasetName string `json:"dataset_name" db:"dataset"`
	Label       string `json:"label" db:"label"`

	// Stay points
	DistanceThreshold float64 `json:"distance_threshold" db:"distance_threshold"` // meters (geographic) or trace units
	TimeThreshold     float64 `json:"time_threshold" db:"time_threshold"`         // seconds

	// Contacts
	RadiusThreshold      float64 `json:"radius_threshold" db:"radius_threshold"`
	ContactTimeThreshold float64 `json:"contact_time_threshold" db:"contact_time_threshold"`
	SkipContactDetection bool    `json:"skip_contact_detection" db:"skip_contact_detection"`

	// Quadrant entropy
	QuadrantParts int `json:"quadrant_parts" db:"quadrant_parts"`

	IsGeographicalCoordinates bool `json:"is_geographical_coordinates" db:"is_geographical"`
}

// Validate checks that every required value is present and in range
func (p Params) Validate() error {
	if strings.TrimSpace(p.DatasetName) == "" {
		return fmt.Errorf("%w: dataset_name is required", ErrInvalidParams)
	}

	checks := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"distance_threshold", p.DistanceThreshold, true},
		{"time_threshold", p.TimeThreshold, false},
		{"contact_time_threshold", p.ContactTimeThreshold, false},
	}
	if !p.SkipContactDetection {
		checks = append(checks, struct {
			name     string
			value    float64
			positive bool
		}{"radius_threshold", p.RadiusThreshold, true})
	}

	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidParams, c.name)
		}
		if c.positive && c.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidParams, c.name, c.value)
		}
		if c.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidParams, c.name, c.value)
		}
	}

	if p.QuadrantParts < 1 {
		return fmt.Errorf("%w: quadrant_parts must be at least 1, got %d", ErrInvalidParams, p.QuadrantParts)
	}

	return nil
}

// DatasetConfig is the stored configuration of a processed dataset
type DatasetConfig struct {
	Params
	CreatedAt int64 `json:"created_at" db:"created_at"` // Unix timestamp
}
