// Package repotest opens throwaway SQLite databases loaded with the
// fitosanitario schema for tests.
package repotest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	commoncfg "fitosanitario/common/config"
	"fitosanitario/common/database"
	"fitosanitario/internal/dao"
	"fitosanitario/internal/repository"
	"fitosanitario/schema"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// OpenDB opens a schema-loaded SQLite file under t.TempDir
func OpenDB(t testing.TB) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, &commoncfg.DatabaseConfig{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "fitosanitario.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	_, err = schema.Apply(ctx, db, database.DriverSQLite)
	require.NoError(t, err)
	return db
}

// NewStore returns a repository store over a fresh SQLite database
func NewStore(t testing.TB, opts ...dao.Option) (*repository.Store, *sql.DB) {
	t.Helper()
	db := OpenDB(t)
	opts = append([]dao.Option{dao.WithDialect(dao.SQLite), dao.WithLogger(zap.NewNop())}, opts...)
	return repository.NewStore(dao.DBAcquirer{DB: db}, opts...), db
}
