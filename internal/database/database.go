package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know about
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Connect opens the configured backing store. Driver is "sqlite" for the
// file-based store or "pgx" for Postgres; both are served through sqlx so the
// repository layer is identical for either.
func Connect(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "sqlite":
		if dir := sqliteDir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
		db, err := sqlx.Connect("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		// modernc sqlite serializes through a single connection
		db.SetMaxOpenConns(1)
		return db, nil
	case "pgx":
		return sqlx.Connect("pgx", dsn)
	default:
		return nil, fmt.Errorf("unknown db driver %q", driver)
	}
}

func sqliteDir(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.HasPrefix(path, ":") {
		return ""
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}
