package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/mobility-metrics-go/internal/models"
)

// ContactRepository handles database operations for contacts
type ContactRepository struct {
	db *sql.DB
}

// BulkCreate stores contact intervals
func (r *ContactRepository) BulkCreate(ctx context.Context, contacts []models.Contact) error {
	rows := make([][]any, len(contacts))
	for i, c := range contacts {
		rows[i] = []any{c.Dataset, c.ID1, c.ID2, c.InitialTimestamp, c.FinalTimestamp, c.ContactTime}
	}
	return bulkInsert(ctx, r.db, "contacts", []string{
		"dataset", "id1", "id2", "initial_timestamp", "final_timestamp", "contact_time",
	}, rows)
}

// List retrieves a dataset's contacts; an entity filter matches either endpoint
func (r *ContactRepository) List(ctx context.Context, dataset string, filter models.EntityFilter) ([]models.Contact, error) {
	query := `
		SELECT id, dataset, id1, id2, initial_timestamp, final_timestamp, contact_time
		FROM contacts
		WHERE dataset = ?
	`
	args := []any{dataset}
	if filter.EntityID != nil {
		query += " AND (id1 = ? OR id2 = ?)"
		args = append(args, *filter.EntityID, *filter.EntityID)
	}
	query += " ORDER BY id1, id2, initial_timestamp"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		var c models.Contact
		err := rows.Scan(&c.ID, &c.Dataset, &c.ID1, &c.ID2, &c.InitialTimestamp, &c.FinalTimestamp, &c.ContactTime)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
