package postgresql_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// every table. Tests are skipped when no database is configured.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, thisFile, _, _ := runtime.Caller(0)
	schema, err := os.ReadFile(filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "..", "migrations", "000001_init.up.sql"))
	require.NoError(t, err)

	_, err = db.Exec(ctx, string(schema))
	require.NoError(t, err)

	_, err = db.Exec(ctx, "TRUNCATE TABLE logbook_entries, attendances, office_locations, users CASCADE")
	require.NoError(t, err)

	return db
}

func insertUser(t *testing.T, db *database.DB, name string, divisionID *string) string {
	t.Helper()

	var id string
	err := db.QueryRow(context.Background(),
		"INSERT INTO users (full_name, email, division_id, role) VALUES ($1, $2, $3, 'employee') RETURNING id",
		name, name+"@example.com", divisionID,
	).Scan(&id)
	require.NoError(t, err)

	return id
}
