package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

// DB wraps the bun handle shared by the stores.
type DB struct {
	*bun.DB
}

// Open connects to Postgres for postgres:// DSNs and to SQLite otherwise
// (file paths, file: URIs, :memory:).
func Open(ctx context.Context, dsn string) (*DB, error) {
	var (
		sqlDB *sql.DB
		bunDB *bun.DB
		err   error
	)

	if isPostgres(dsn) {
		sqlDB, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("db: open postgres: %w", err)
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		bunDB = bun.NewDB(sqlDB, pgdialect.New())
	} else {
		sqlDB, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("db: open sqlite: %w", err)
		}
		// single writer; also keeps in-memory databases alive
		sqlDB.SetMaxOpenConns(1)
		bunDB = bun.NewDB(sqlDB, sqlitedialect.New())
	}

	if err := bunDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}

	return &DB{DB: bunDB}, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
