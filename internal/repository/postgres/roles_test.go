package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/repository"
)

func TestRoleRepository_GetByName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRoleRepository(mock)

	now := time.Now().UTC()
	description := "Default role for self-registered accounts"
	rows := pgxmock.NewRows([]string{"id", "name", "description", "created_at"}).
		AddRow("role-customer", domain.RoleCustomer, description, now)

	mock.ExpectQuery(`SELECT id, name, description, created_at FROM crm\.roles WHERE name = \$1`).
		WithArgs(domain.RoleCustomer).
		WillReturnRows(rows)

	role, err := repo.GetByName(context.Background(), domain.RoleCustomer)
	if err != nil {
		t.Fatalf("GetByName returned error: %v", err)
	}
	if role.Name != domain.RoleCustomer {
		t.Errorf("name = %q, want customer", role.Name)
	}
	if role.Description == nil || *role.Description != description {
		t.Errorf("description not populated")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRoleRepository_GetByNameNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRoleRepository(mock)

	mock.ExpectQuery(`SELECT id, name, description, created_at FROM crm\.roles`).
		WithArgs("superuser").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByName(context.Background(), "superuser")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("GetByName error = %v, want ErrNotFound", err)
	}
}

func TestRoleRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRoleRepository(mock)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "name", "description", "created_at"}).
		AddRow("role-admin", domain.RoleAdmin, nil, now).
		AddRow("role-customer", domain.RoleCustomer, nil, now).
		AddRow("role-manager", domain.RoleManager, nil, now)

	mock.ExpectQuery(`SELECT id, name, description, created_at FROM crm\.roles ORDER BY name ASC`).
		WillReturnRows(rows)

	roles, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(roles) != 3 {
		t.Fatalf("len(roles) = %d, want 3", len(roles))
	}
	if roles[0].Description != nil {
		t.Errorf("description = %v, want nil", *roles[0].Description)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRoleRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRoleRepository(mock)

	now := time.Now().UTC()
	role := domain.Role{ID: "role-admin", Name: domain.RoleAdmin, CreatedAt: now}

	mock.ExpectExec(`INSERT INTO crm\.roles`).
		WithArgs(role.ID, role.Name, role.Description, role.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), role); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
