package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/huson-app/huson/internal/core/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return db, mock, func() { _ = db.Close() }
}

var donationColumns = []string{
	"id", "donor_id", "item_type", "item_name", "quantity", "unit", "description", "pickup_location", "expiry_date",
	"image_url", "classification_result", "freshness_score", "condition_score", "status", "created_at",
}

func TestDonationRepositoryCreateWithoutImage(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO donations").
		WithArgs("d-1", "u-1", "food", "Rice", 10, "kg", "", "123 Main St", nil,
			nil, nil, nil, nil, nil, "pending", created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewDonationRepository(db)
	err := repo.Create(context.Background(), &domain.Donation{
		ID:             "d-1",
		DonorID:        "u-1",
		ItemType:       domain.ItemTypeFood,
		ItemName:       "Rice",
		Quantity:       10,
		Unit:           "kg",
		PickupLocation: "123 Main St",
		Status:         domain.DonationStatusPending,
		CreatedAt:      created,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDonationRepositoryCreateStoresClassificationJSON(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	url := "http://localhost/storage/donations/u-1/1.jpg"
	key := "u-1/1.jpg"
	score := 80.0
	mock.ExpectExec("INSERT INTO donations").
		WithArgs("d-2", "u-1", "food", "Rice", 1, "items", "", "Main St", nil,
			url, key, []byte(`{"classification":"food","freshness_score":80,"confidence":0.9}`), score, nil, "pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewDonationRepository(db)
	err := repo.Create(context.Background(), &domain.Donation{
		ID:                   "d-2",
		DonorID:              "u-1",
		ItemType:             domain.ItemTypeFood,
		ItemName:             "Rice",
		Quantity:             1,
		Unit:                 domain.DefaultUnit,
		PickupLocation:       "Main St",
		ImageURL:             &url,
		ImageKey:             &key,
		ClassificationResult: &domain.ClassificationResult{Classification: "food", FreshnessScore: &score, Confidence: 0.9},
		FreshnessScore:       &score,
		Status:               domain.DonationStatusPending,
		CreatedAt:            time.Now(),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDonationRepositoryListByDonor(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(donationColumns).
		AddRow("d-2", "u-1", "books", "Novels", 3, "items", "", "Main St", nil,
			"http://x/2.jpg", []byte(`{"classification":"books","confidence":0.7}`), nil, 90.0, "delivered", now).
		AddRow("d-1", "u-1", "food", "Rice", 10, "kg", "", "Main St", now,
			nil, nil, nil, nil, "pending", now.Add(-time.Hour))

	mock.ExpectQuery("FROM donations").
		WithArgs("u-1").
		WillReturnRows(rows)

	repo := NewDonationRepository(db)
	donations, err := repo.ListByDonor(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListByDonor() error = %v", err)
	}
	if len(donations) != 2 {
		t.Fatalf("expected 2 donations, got %d", len(donations))
	}
	first := donations[0]
	if first.ImageURL == nil || *first.ImageURL != "http://x/2.jpg" {
		t.Fatalf("unexpected image url: %v", first.ImageURL)
	}
	if first.ClassificationResult == nil || first.ClassificationResult.Classification != "books" {
		t.Fatalf("unexpected classification: %+v", first.ClassificationResult)
	}
	if first.ConditionScore == nil || *first.ConditionScore != 90 {
		t.Fatalf("unexpected condition score: %v", first.ConditionScore)
	}
	if first.Status != domain.DonationStatusDelivered {
		t.Fatalf("unexpected status %s", first.Status)
	}
	second := donations[1]
	if second.ImageURL != nil || second.ClassificationResult != nil || second.ExpiryDate == nil {
		t.Fatalf("unexpected nullable fields: %+v", second)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDonationRepositoryImageKeyReferenced(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM donations WHERE image_key = \$1\)`).
		WithArgs("u-1/1.jpg").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("u-1/2.jpg").
		WillReturnError(errors.New("conn reset"))

	repo := NewDonationRepository(db)
	ok, err := repo.ImageKeyReferenced(context.Background(), "u-1/1.jpg")
	if err != nil || !ok {
		t.Fatalf("expected referenced, got %v %v", ok, err)
	}
	if _, err := repo.ImageKeyReferenced(context.Background(), "u-1/2.jpg"); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEnsureSchemaTakesAdvisoryLock(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WithArgs(schemaLockID).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
