package user

import (
	"context"
	"log/slog"
	"testing"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
)

func TestSeedAdmin_CreatesOnEmptyDB(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	pw, err := SeedAdmin(ctx, svc, SeedConfig{}, slog.Default())
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if len(pw) != seedPasswordBytes*2 {
		t.Fatalf("generated password length = %d, want %d", len(pw), seedPasswordBytes*2)
	}

	admin, err := svc.FindByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("FindByUsername(admin) error = %v", err)
	}
	if !admin.Actor().HasRole(acl.RoleAdmin) {
		t.Errorf("Roles = %v, want ADMIN", admin.Roles)
	}
	if admin.Disabled {
		t.Error("seed admin should be enabled")
	}
	if ok, _ := svc.hasher.Verify(ctx, pw, admin.PasswordHash); !ok {
		t.Error("generated password should verify against stored hash")
	}
}

func TestSeedAdmin_ConfiguredCredentials(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	pw, err := SeedAdmin(ctx, svc, SeedConfig{Username: "ops", Password: "configured-pw"}, slog.Default())
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if pw != "configured-pw" {
		t.Errorf("password = %q, want configured value", pw)
	}
	if _, err := svc.FindByUsername(ctx, "ops"); err != nil {
		t.Errorf("FindByUsername(ops) error = %v", err)
	}
}

func TestSeedAdmin_SkipsWhenUsersExist(t *testing.T) {
	svc, repo := testService(t)
	ctx := context.Background()
	mustCreate(t, svc, validInput("existing"))

	pw, err := SeedAdmin(ctx, svc, SeedConfig{}, slog.Default())
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if pw != "" {
		t.Error("SeedAdmin() should return empty password when skipped")
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}
