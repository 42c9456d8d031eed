// Package database provides SQLite connectivity for authcore.
//
// This package manages:
//   - The database connection (WAL mode, busy timeout, foreign keys)
//   - Embedded, versioned schema migrations
//   - Health checks and lifecycle
//
// Security Considerations:
//   - All queries use parameterised statements
//   - The database file holds password hashes; its permissions are set to 0600
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files live in the top-level migrations package and are named
// YYYYMMDD_HHMMSS_description.up.sql / .down.sql.
package database
