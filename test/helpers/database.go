package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/portscheduler-go/internal/infrastructure/database"
)

// NewTestDB opens a migrated in-memory journal database that is closed when
// the test ends
func NewTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := database.NewTestConnection()
	require.NoError(tb, err, "open journal test database")
	tb.Cleanup(func() { _ = database.Close(db) })

	return db
}

// CountRows counts the rows a run left in one journal table
func CountRows(tb testing.TB, db *gorm.DB, table, runID string) int64 {
	tb.Helper()

	var n int64
	require.NoError(tb, db.Table(table).Where("run_id = ?", runID).Count(&n).Error)
	return n
}
