// Package testing provides testing utilities and helpers for the mars-command project.
package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/mars-command/internal/database"
)

// NewTestDB creates a temporary SQLite database with its embedded schema applied.
// Returns the database instance and a cleanup function that closes the connection.
//
// Supported schema names:
//   - "state" - applies state_schema.sql
//   - "history" - applies history_schema.sql
//   - Unknown names - creates empty database (no schema applied)
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	profile := database.ProfileStandard
	if name == "history" {
		profile = database.ProfileLedger
	}

	// Each test gets its own directory so runs stay isolated
	dir, err := os.MkdirTemp("", fmt.Sprintf("test_%s_*", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database directory: %v", err)
	}

	db, err := database.New(database.Config{
		Path:    filepath.Join(dir, name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.RemoveAll(dir)
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	return db, func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		if err := os.RemoveAll(dir); err != nil {
			t.Logf("Warning: Failed to remove temporary database directory %s: %v", dir, err)
		}
	}
}
