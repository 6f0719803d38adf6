// Package schema embeds the fitosanitario DDL for each supported driver.
package schema

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

var (
	//go:embed postgres.sql
	postgres string
	//go:embed sqlite.sql
	sqlite string
)

// For the DDL of driver; anything but postgres gets the sqlite flavour
func For(driver string) string {
	if strings.EqualFold(driver, "postgres") {
		return postgres
	}
	return sqlite
}

// Statements splits the DDL on ';' dropping comment-only fragments
func Statements(driver string) []string {
	var out []string
	for _, stmt := range strings.Split(For(driver), ";") {
		if stmt = strings.TrimSpace(stripComments(stmt)); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// Apply runs every statement in order. The DDL is idempotent.
func Apply(ctx context.Context, db *sql.DB, driver string) (int, error) {
	stmts := Statements(driver)
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return i, fmt.Errorf("failed to execute statement %d/%d: %w", i+1, len(stmts), err)
		}
	}
	return len(stmts), nil
}

func stripComments(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
