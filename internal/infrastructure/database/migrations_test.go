package database

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"20260101_000000_widgets.up.sql": {Data: []byte(`
			CREATE TABLE widgets (id TEXT PRIMARY KEY, name TEXT NOT NULL) STRICT;
		`)},
		"20260101_000000_widgets.down.sql": {Data: []byte(`DROP TABLE widgets;`)},
		"20260102_000000_gadgets.up.sql": {Data: []byte(`
			CREATE TABLE gadgets (id TEXT PRIMARY KEY) STRICT;
		`)},
		"20260102_000000_gadgets.down.sql": {Data: []byte(`DROP TABLE gadgets;`)},
		"README.md":                        {Data: []byte("not a migration")},
	}
}

// useMigrations swaps the registered migrations for the duration of a test.
func useMigrations(t *testing.T, fsys fs.FS) {
	t.Helper()

	origFS, origDir := MigrationsFS, MigrationsDir
	MigrationsFS, MigrationsDir = fsys, "."
	t.Cleanup(func() {
		MigrationsFS, MigrationsDir = origFS, origDir
	})
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()

	var count int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&count)
	if err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	return count == 1
}

func TestMigrate(t *testing.T) {
	useMigrations(t, testMigrations())
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	for _, table := range []string{"widgets", "gadgets"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s not created", table)
		}
	}

	applied, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 {
		t.Errorf("applied = %d, want 2", len(applied))
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
	if applied[0].Version != "20260101_000000" || applied[0].AppliedAt.IsZero() {
		t.Errorf("applied[0] = %+v", applied[0])
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	useMigrations(t, testMigrations())
	db := openTestDB(t)
	ctx := context.Background()

	for i := range 3 {
		if err := db.Migrate(ctx); err != nil {
			t.Fatalf("Migrate() run %d error = %v", i+1, err)
		}
	}

	applied, _, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 {
		t.Errorf("applied = %d, want 2", len(applied))
	}
}

func TestMigrate_FailureRollsBackOnlyFailingMigration(t *testing.T) {
	fsys := testMigrations()
	fsys["20260103_000000_broken.up.sql"] = &fstest.MapFile{Data: []byte(`CREATE TABLE broken (;`)}
	useMigrations(t, fsys)
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err == nil {
		t.Fatal("Migrate() with broken SQL should fail")
	}

	applied, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 {
		t.Errorf("applied = %d, want 2", len(applied))
	}
	if len(pending) != 1 || pending[0].Name != "broken" {
		t.Errorf("pending = %+v, want the broken migration", pending)
	}
}

func TestMigrateDown(t *testing.T) {
	useMigrations(t, testMigrations())
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}

	if tableExists(t, db, "gadgets") {
		t.Error("gadgets should be dropped after MigrateDown")
	}
	if !tableExists(t, db, "widgets") {
		t.Error("widgets should remain after one MigrateDown")
	}

	_, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(pending) != 1 || pending[0].Version != "20260102_000000" {
		t.Errorf("pending = %+v", pending)
	}
}

func TestMigrateDown_NothingApplied(t *testing.T) {
	useMigrations(t, testMigrations())
	db := openTestDB(t)

	if err := db.MigrateDown(context.Background()); err != nil {
		t.Errorf("MigrateDown() on empty database error = %v", err)
	}
}

func TestMigrateDown_NoDownSQL(t *testing.T) {
	useMigrations(t, fstest.MapFS{
		"20260101_000000_oneway.up.sql": {Data: []byte(`CREATE TABLE oneway (id TEXT) STRICT;`)},
	})
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx); err == nil {
		t.Error("MigrateDown() without down SQL should fail")
	}
}

func TestMigrate_NoneRegistered(t *testing.T) {
	useMigrations(t, nil)
	db := openTestDB(t)

	if err := db.Migrate(context.Background()); err != nil {
		t.Errorf("Migrate() with no migrations error = %v", err)
	}
}

func TestLoadMigrations_Invalid(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{
			name: "orphan down",
			fsys: fstest.MapFS{
				"20260101_000000_orphan.down.sql": {Data: []byte(`SELECT 1;`)},
			},
		},
		{
			name: "duplicate version",
			fsys: fstest.MapFS{
				"20260101_000000_a.up.sql": {Data: []byte(`SELECT 1;`)},
				"20260101_000000_b.up.sql": {Data: []byte(`SELECT 1;`)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadMigrations(tt.fsys, "."); err == nil {
				t.Error("loadMigrations() should fail")
			}
		})
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		wantVersion string
		wantUp      bool
		wantOK      bool
	}{
		{"20260301_090000_users.up.sql", "20260301_090000", true, true},
		{"20260301_090000_users.down.sql", "20260301_090000", false, true},
		{"20260301_090000_auth_events.up.sql", "20260301_090000", true, true},
		{"20260301_090000_users.sql", "", false, false},
		{"20260301.up.sql", "", false, false},
		{"notes.txt", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.name)
			if version != tt.wantVersion || isUp != tt.wantUp || ok != tt.wantOK {
				t.Errorf("parseMigrationFilename(%q) = (%q, %v, %v), want (%q, %v, %v)",
					tt.name, version, isUp, ok, tt.wantVersion, tt.wantUp, tt.wantOK)
			}
		})
	}
}

func TestExtractMigrationName(t *testing.T) {
	tests := map[string]string{
		"20260301_090000_users.up.sql":         "users",
		"20260301_090100_auth_events.down.sql": "auth_events",
	}
	for filename, want := range tests {
		if got := extractMigrationName(filename); got != want {
			t.Errorf("extractMigrationName(%q) = %q, want %q", filename, got, want)
		}
	}
}
