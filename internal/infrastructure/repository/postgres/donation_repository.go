package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/huson-app/huson/internal/core/domain"
)

type DonationRepository struct {
	db *sql.DB
}

func NewDonationRepository(db *sql.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) Create(ctx context.Context, d *domain.Donation) error {
	var classification []byte
	if d.ClassificationResult != nil {
		raw, err := json.Marshal(d.ClassificationResult)
		if err != nil {
			return fmt.Errorf("marshal classification result: %w", err)
		}
		classification = raw
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO donations (
	id, donor_id, item_type, item_name, quantity, unit, description, pickup_location, expiry_date,
	image_url, image_key, classification_result, freshness_score, condition_score, status, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
`,
		d.ID, d.DonorID, string(d.ItemType), d.ItemName, d.Quantity, d.Unit, d.Description, d.PickupLocation, d.ExpiryDate,
		d.ImageURL, d.ImageKey, classification, d.FreshnessScore, d.ConditionScore, string(d.Status), d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

func (r *DonationRepository) ListByDonor(ctx context.Context, donorID string) ([]domain.Donation, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, donor_id, item_type, item_name, quantity, unit, description, pickup_location, expiry_date,
	image_url, classification_result, freshness_score, condition_score, status, created_at
FROM donations
WHERE donor_id = $1
ORDER BY created_at DESC
`, donorID)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Donation, 0)
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donations: %w", err)
	}
	return out, nil
}

func (r *DonationRepository) ImageKeyReferenced(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM donations WHERE image_key = $1)`, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup donation image: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonation(row rowScanner) (domain.Donation, error) {
	var d domain.Donation
	var itemType, status string
	var classification []byte
	err := row.Scan(
		&d.ID,
		&d.DonorID,
		&itemType,
		&d.ItemName,
		&d.Quantity,
		&d.Unit,
		&d.Description,
		&d.PickupLocation,
		&d.ExpiryDate,
		&d.ImageURL,
		&classification,
		&d.FreshnessScore,
		&d.ConditionScore,
		&status,
		&d.CreatedAt,
	)
	if err != nil {
		return domain.Donation{}, err
	}
	if len(classification) > 0 {
		var result domain.ClassificationResult
		if err := json.Unmarshal(classification, &result); err != nil {
			return domain.Donation{}, fmt.Errorf("unmarshal classification result: %w", err)
		}
		d.ClassificationResult = &result
	}
	d.ItemType = domain.ItemType(itemType)
	d.Status = domain.DonationStatus(status)
	return d, nil
}
