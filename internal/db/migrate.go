package db

import (
	"context"
	"fmt"
)

// Migrate creates the users table and its unique indexes if missing.
// Email is stored lowercased, so a plain unique index enforces
// case-insensitive uniqueness. NULL external ids do not collide.
func Migrate(ctx context.Context, db *DB) error {
	_, err := db.NewCreateTable().
		Model((*userRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("db: create users table: %w", err)
	}

	indexes := []struct {
		name   string
		column string
	}{
		{name: "users_email_unique", column: "email"},
		{name: "users_external_id_unique", column: "external_id"},
	}

	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model((*userRecord)(nil)).
			Index(idx.name).
			Unique().
			IfNotExists().
			Column(idx.column).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("db: create index %s: %w", idx.name, err)
		}
	}

	return nil
}
