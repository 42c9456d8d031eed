package user

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
	"github.com/nerrad567/gray-logic-authcore/internal/password"
)

// testDB creates a temporary SQLite database with the users schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "user-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			username TEXT NOT NULL UNIQUE,
			email TEXT,
			password_hash TEXT NOT NULL,
			roles TEXT NOT NULL DEFAULT 'USER',
			disabled INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("applying users schema: %v", err)
	}

	return db
}

// testService returns a Service over a fresh database with a fast hasher.
func testService(t *testing.T) (*Service, *SQLiteRepository) {
	t.Helper()

	hasher, err := password.NewHasher(password.Config{BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("NewHasher() error = %v", err)
	}
	repo := NewSQLiteRepository(testDB(t))
	return NewService(repo, hasher), repo
}

// validInput returns a CreateInput that passes validation.
func validInput(username string, roles ...acl.Role) CreateInput {
	if len(roles) == 0 {
		roles = []acl.Role{acl.RoleUser}
	}
	return CreateInput{
		Name:     "Test " + username,
		Username: username,
		Email:    username + "@example.com",
		Password: "s3cret-pass",
		Roles:    roles,
	}
}

// mustCreate creates a user through svc or fails the test.
func mustCreate(t *testing.T, svc *Service, in CreateInput) *Record {
	t.Helper()

	rec, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create(%s) error = %v", in.Username, err)
	}
	return rec
}
