package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/database"
)

// NewTestDB opens a private in-memory store with the saves, snapshots and game log tables
// migrated. It is closed when the test ends.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewTestConnection()
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// CountRows returns how many rows the table of model holds
func CountRows(t testing.TB, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
