package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// AggregateFunc is an SQL aggregate function
type AggregateFunc string

// Supported aggregate functions
const (
	Sum   AggregateFunc = "SUM"
	Avg   AggregateFunc = "AVG"
	Count AggregateFunc = "COUNT"
)

// Aggregation computes Func(Column) and reports it under Alias
type Aggregation struct {
	Func   AggregateFunc
	Column string // "*" is only valid with Count
	Alias  string
}

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var aggregateTables = map[string]bool{
	"entity_metrics": true,
	"stay_points":    true,
	"visits":         true,
	"journeys":       true,
	"contacts":       true,
	"quadrant_cells": true,
}

// Aggregate evaluates the aggregations over the dataset's rows of table.
// Aggregates over no rows are reported as 0.
func (s *Store) Aggregate(ctx context.Context, table, dataset string, aggs ...Aggregation) (map[string]float64, error) {
	if !aggregateTables[table] {
		return nil, fmt.Errorf("aggregate over unsupported table %q", table)
	}
	if len(aggs) == 0 {
		return map[string]float64{}, nil
	}

	exprs := make([]string, len(aggs))
	for i, a := range aggs {
		switch a.Func {
		case Sum, Avg, Count:
		default:
			return nil, fmt.Errorf("unsupported aggregate function %q", a.Func)
		}
		if a.Column == "*" {
			if a.Func != Count {
				return nil, fmt.Errorf("%s(*) is not supported", a.Func)
			}
		} else if !identifier.MatchString(a.Column) {
			return nil, fmt.Errorf("invalid aggregate column %q", a.Column)
		}
		exprs[i] = fmt.Sprintf("%s(%s)", a.Func, a.Column)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE dataset = ?", strings.Join(exprs, ", "), table)

	values := make([]sql.NullFloat64, len(aggs))
	dest := make([]any, len(aggs))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := s.db.QueryRowContext(ctx, query, dataset).Scan(dest...); err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", table, err)
	}

	result := make(map[string]float64, len(aggs))
	for i, a := range aggs {
		alias := a.Alias
		if alias == "" {
			alias = strings.ToLower(string(a.Func)) + "_" + strings.Trim(a.Column, "*")
		}
		result[alias] = values[i].Float64
	}
	return result, nil
}
