// Package dbtest opens throwaway sqlite databases with the fleet schema applied.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/fleet/internal/database"
	"github.com/Additional-Code/fleet/internal/migration"
)

// New returns connections to a private in-memory database that lives for the test.
func New(t *testing.T) *database.Connections {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migration.CreateSchema(context.Background(), db))

	return &database.Connections{Writer: db, Reader: db}
}
