package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/huson-app/huson/internal/core/domain"
)

type CollectionPointRepository struct {
	db *sql.DB
}

func NewCollectionPointRepository(db *sql.DB) *CollectionPointRepository {
	return &CollectionPointRepository{db: db}
}

func (r *CollectionPointRepository) ListActive(ctx context.Context) ([]domain.CollectionPoint, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, type, address, latitude, longitude, contact_phone, contact_email, operating_hours,
	accepted_items, description, is_active
FROM collection_points
WHERE is_active = TRUE
ORDER BY name ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list collection points: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CollectionPoint, 0)
	for rows.Next() {
		var p domain.CollectionPoint
		var accepted []byte
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Type,
			&p.Address,
			&p.Latitude,
			&p.Longitude,
			&p.ContactPhone,
			&p.ContactEmail,
			&p.OperatingHours,
			&accepted,
			&p.Description,
			&p.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan collection point: %w", err)
		}
		if len(accepted) > 0 {
			if err := json.Unmarshal(accepted, &p.AcceptedItems); err != nil {
				return nil, fmt.Errorf("unmarshal accepted items: %w", err)
			}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection points: %w", err)
	}
	return out, nil
}

// Upsert inserts or replaces a collection point by id. Used by the seeder.
func (r *CollectionPointRepository) Upsert(ctx context.Context, p domain.CollectionPoint) error {
	accepted := p.AcceptedItems
	if accepted == nil {
		accepted = []string{}
	}
	acceptedJSON, err := json.Marshal(accepted)
	if err != nil {
		return fmt.Errorf("marshal accepted items: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO collection_points (
	id, name, type, address, latitude, longitude, contact_phone, contact_email, operating_hours,
	accepted_items, description, is_active
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	type = EXCLUDED.type,
	address = EXCLUDED.address,
	latitude = EXCLUDED.latitude,
	longitude = EXCLUDED.longitude,
	contact_phone = EXCLUDED.contact_phone,
	contact_email = EXCLUDED.contact_email,
	operating_hours = EXCLUDED.operating_hours,
	accepted_items = EXCLUDED.accepted_items,
	description = EXCLUDED.description,
	is_active = EXCLUDED.is_active
`,
		p.ID, p.Name, p.Type, p.Address, p.Latitude, p.Longitude, p.ContactPhone, p.ContactEmail, p.OperatingHours,
		acceptedJSON, p.Description, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("upsert collection point: %w", err)
	}
	return nil
}
