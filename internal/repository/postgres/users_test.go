package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/bookwise/booking-platform/internal/core/domain"
	"github.com/bookwise/booking-platform/internal/repository"
)

var userRows = []string{
	"id", "full_name", "email", "phone", "password_hash", "role", "created_at", "updated_at",
}

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	now := time.Now().UTC()
	user := domain.User{
		ID:           "user-1",
		FullName:     "Jane Doe",
		Email:        "jane@example.com",
		Phone:        "+15550100",
		PasswordHash: "encoded-hash",
		Role:         domain.RoleClient,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec(`INSERT INTO booking\.users`).
		WithArgs(
			user.ID,
			user.FullName,
			user.Email,
			user.Phone,
			user.PasswordHash,
			"client",
			user.CreatedAt,
			user.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	now := time.Now().UTC()
	rows := pgxmock.NewRows(userRows).AddRow(
		"user-1", "Jane Doe", "jane@example.com", "+15550100", "encoded-hash", "client", now, now,
	)

	mock.ExpectQuery(`SELECT .+ FROM booking\.users WHERE email =`).
		WithArgs("jane@example.com").
		WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("ID = %q", user.ID)
	}
	if user.Phone != "+15550100" {
		t.Fatalf("Phone = %q", user.Phone)
	}
	if user.Role != domain.RoleClient {
		t.Fatalf("Role = %q", user.Role)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	mock.ExpectQuery(`SELECT .+ FROM booking\.users WHERE id =`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(userRows))

	_, err = repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUserRepository_ListByRole(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	now := time.Now().UTC()
	rows := pgxmock.NewRows(userRows).
		AddRow("admin-2", "New Admin", "new@example.com", nil, "hash-2", "admin", now, now).
		AddRow("admin-1", "Old Admin", "old@example.com", "+15550101", "hash-1", "admin", now.Add(-time.Hour), now)

	mock.ExpectQuery(`SELECT .+ FROM booking\.users WHERE role = .+ ORDER BY created_at DESC`).
		WithArgs("admin").
		WillReturnRows(rows)

	users, err := repo.ListByRole(context.Background(), domain.RoleAdmin)
	if err != nil {
		t.Fatalf("ListByRole returned error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len = %d, want 2", len(users))
	}
	if users[0].ID != "admin-2" {
		t.Fatalf("first user = %q, want newest first", users[0].ID)
	}
	if users[0].Phone != "" {
		t.Fatalf("Phone = %q, want empty for NULL column", users[0].Phone)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdatePasswordNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	mock.ExpectExec(`UPDATE booking\.users SET`).
		WithArgs("new-hash", pgxmock.AnyArg(), "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdatePassword(context.Background(), "ghost", "new-hash")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
