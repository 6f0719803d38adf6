package schema

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestStatements(t *testing.T) {
	for _, driver := range []string{"postgres", "sqlite"} {
		stmts := Statements(driver)
		require.NotEmpty(t, stmts, driver)
		for _, s := range stmts {
			assert.False(t, strings.HasPrefix(s, "--"), "%s: %q", driver, s)
		}
		assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE IF NOT EXISTS departamento"), driver)
	}
	assert.Contains(t, For("POSTGRES"), "BIGSERIAL")
	assert.Equal(t, For("sqlite"), For(""))
}

func TestApply_Idempotent(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	n, err := Apply(ctx, db, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, len(Statements("sqlite")), n)

	_, err = Apply(ctx, db, "sqlite")
	require.NoError(t, err)

	var tables int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('inspeccion_fitosanitaria', 'resultado_tecnico')`).Scan(&tables))
	assert.Equal(t, 2, tables)
}
