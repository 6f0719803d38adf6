package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"fitosanitario/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "fito.db")}

	db, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer Close(db)

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestClose_Idempotent(t *testing.T) {
	assert.NoError(t, Close(nil))

	db, err := Open(context.Background(), &config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	assert.NoError(t, Close(db))
	assert.NoError(t, Close(db))
}

func TestIsClosed(t *testing.T) {
	assert.False(t, IsClosed(nil))
	assert.True(t, IsClosed(sql.ErrConnDone))
	assert.True(t, IsClosed(fmt.Errorf("wrap: %w", sql.ErrConnDone)))
	assert.True(t, IsClosed(errors.New("sql: database is closed")))
	assert.False(t, IsClosed(errors.New("connection refused")))
}
