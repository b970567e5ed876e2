package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

// newTestDatabase connects to TEST_DATABASE_URL and applies the schema.
// Tests are skipped when the variable is unset.
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn, database.PoolOptions{MaxConns: 4, MinConns: 1})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(db.Close)

	if err := applySchema(context.Background(), db); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	if err := truncateAllTables(context.Background(), db); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	return db
}

func applySchema(ctx context.Context, db *database.DB) error {
	ddl, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "migrations", "001_attendance.sql"))
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(ddl))
	return err
}

func truncateAllTables(ctx context.Context, db *database.DB) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"check_events",
		"attendance_logs",
		"leave_requests",
		"employee_profiles",
	}

	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}
