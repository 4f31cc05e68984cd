package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/huson-app/huson/internal/core/domain"
)

func TestGetUserByEmailReturnsDomainNotFound(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	mock.ExpectQuery("FROM users").
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepository(db).GetUserByEmail(context.Background(), "missing@example.com")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateUserMapsUniqueViolationToConflict(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("u-1", "a@b.c", "hash", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	err := NewUserRepository(db).CreateUser(context.Background(), &domain.User{ID: "u-1", Email: "a@b.c", PasswordHash: "hash", CreatedAt: time.Now()})
	if !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestGetSessionScansRevokedAt(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery("FROM sessions").
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at", "expires_at", "revoked_at"}).
			AddRow("s-1", "u-1", now, now.Add(time.Hour), now))

	session, err := NewSessionRepository(db).GetSession(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if session.RevokedAt == nil || session.Active(now) {
		t.Fatalf("expected revoked session, got %+v", session)
	}
}

func TestRevokeSessionReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	mock.ExpectExec("UPDATE sessions").
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewSessionRepository(db).RevokeSession(context.Background(), "missing", time.Now())
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
