package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"identity-service/internal/auth"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/uptrace/bun"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type userRecord struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk"`
	Name         string    `bun:"name,notnull"`
	Surname      string    `bun:"surname,notnull"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,nullzero"`
	Role         string    `bun:"role,notnull"`
	ExternalID   string    `bun:"external_id,nullzero"`
	RefreshToken string    `bun:"refresh_token,nullzero"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

func (r *userRecord) toUser() *auth.User {
	return &auth.User{
		ID:           r.ID,
		Name:         r.Name,
		Surname:      r.Surname,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         auth.Role(r.Role),
		ExternalID:   r.ExternalID,
		RefreshToken: r.RefreshToken,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// UserStore implements auth.Store on top of bun.
type UserStore struct {
	db *DB
}

func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) findOne(ctx context.Context, column, value string) (*auth.User, error) {
	rec := new(userRecord)
	err := s.db.NewSelect().
		Model(rec).
		Where("? = ?", bun.Ident(column), value).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by %s: %w", column, err)
	}
	return rec.toUser(), nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findOne(ctx, "email", email)
}

func (s *UserStore) FindByExternalID(ctx context.Context, externalID string) (*auth.User, error) {
	if externalID == "" {
		return nil, nil
	}
	return s.findOne(ctx, "external_id", externalID)
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	return s.findOne(ctx, "id", id)
}

func (s *UserStore) Create(ctx context.Context, u *auth.User) error {
	now := time.Now().UTC()
	rec := &userRecord{
		ID:           uuid.NewString(),
		Name:         u.Name,
		Surname:      u.Surname,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		ExternalID:   u.ExternalID,
		RefreshToken: u.RefreshToken,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return auth.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}

	u.ID = rec.ID
	u.CreatedAt = rec.CreatedAt
	u.UpdatedAt = rec.UpdatedAt
	return nil
}

func (s *UserStore) updateColumn(ctx context.Context, id, column string, value any) error {
	_, err := s.db.NewUpdate().
		Model((*userRecord)(nil)).
		Set("? = ?", bun.Ident(column), value).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update user %s: %w", column, err)
	}
	return nil
}

func (s *UserStore) UpdateRefreshToken(ctx context.Context, id string, value string) error {
	return s.updateColumn(ctx, id, "refresh_token", nullString(value))
}

func (s *UserStore) SwapRefreshToken(ctx context.Context, id string, old string, next string) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*userRecord)(nil)).
		Set("refresh_token = ?", nullString(next)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("refresh_token = ?", old).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("swap refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("swap refresh token: %w", err)
	}
	return n == 1, nil
}

func (s *UserStore) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	return s.updateColumn(ctx, id, "password_hash", nullString(hash))
}

func (s *UserStore) UpdateRole(ctx context.Context, id string, role auth.Role) error {
	return s.updateColumn(ctx, id, "role", string(role))
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.NewDelete().
		Model((*userRecord)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE"))
	}
	return false
}

var _ auth.Store = (*UserStore)(nil)
