package user

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
)

func TestSQLiteRepository_CreateAndGetByID(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	rec := &Record{
		Name:         "Alice",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$04$hash",
		Roles:        []acl.Role{acl.RoleUser, acl.RoleAdmin},
	}
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.ID == "" {
		t.Fatal("Create() should generate an ID")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("Create() should set CreatedAt")
	}

	got, err := repo.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Username = %q, want alice", got.Username)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("Email = %q, want alice@example.com", got.Email)
	}
	if got.PasswordHash != "$2a$04$hash" {
		t.Errorf("PasswordHash = %q", got.PasswordHash)
	}
	if len(got.Roles) != 2 || got.Roles[0] != acl.RoleUser || got.Roles[1] != acl.RoleAdmin {
		t.Errorf("Roles = %v, want [USER ADMIN]", got.Roles)
	}
	if got.Disabled {
		t.Error("Disabled should be false")
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, rec.CreatedAt)
	}
}

func TestSQLiteRepository_GetByUsername(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	rec := &Record{Name: "Bob", Username: "bob", PasswordHash: "h", Roles: []acl.Role{acl.RoleUser}, Disabled: true}
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if got.ID != rec.ID {
		t.Errorf("ID = %q, want %q", got.ID, rec.ID)
	}
	if !got.Disabled {
		t.Error("Disabled should round-trip as true")
	}
	if got.Email != "" {
		t.Errorf("Email = %q, want empty", got.Email)
	}
}

func TestSQLiteRepository_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "usr-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByUsername(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByUsername() error = %v, want ErrNotFound", err)
	}
	if err := repo.Update(ctx, &Record{ID: "usr-missing", Name: "x", PasswordHash: "h"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, "usr-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_DuplicateUsername(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	first := &Record{Name: "A", Username: "dup", PasswordHash: "h", Roles: []acl.Role{acl.RoleUser}}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second := &Record{Name: "B", Username: "dup", PasswordHash: "h", Roles: []acl.Role{acl.RoleUser}}
	if err := repo.Create(ctx, second); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("Create() error = %v, want ErrUsernameExists", err)
	}
}

func TestSQLiteRepository_ListUpdateDeleteCount(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	for _, name := range []string{"carol", "dave"} {
		if err := repo.Create(ctx, &Record{Name: name, Username: name, PasswordHash: "h", Roles: []acl.Role{acl.RoleUser}}); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(list))
	}

	carol := list[0]
	carol.Name = "Carol C."
	carol.Roles = []acl.Role{acl.RoleAdmin}
	carol.Disabled = true
	if err := repo.Update(ctx, &carol); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := repo.GetByID(ctx, carol.ID)
	if got.Name != "Carol C." || !got.Disabled || len(got.Roles) != 1 || got.Roles[0] != acl.RoleAdmin {
		t.Errorf("after Update() got %+v", got)
	}

	if err := repo.Delete(ctx, carol.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}
