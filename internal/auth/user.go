package auth

import (
	"net/mail"
	"strings"
	"time"
)

// Role is the closed set of roles an identity can hold.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// ParseRole converts s into a Role, rejecting anything outside the set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", invalidField("role", "must be one of Admin, User")
	}
	return r, nil
}

// User is one authenticated principal as persisted by the Store.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	ExternalID   string    `json:"externalId,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasPassword reports whether the identity can log in with local credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Public returns a copy of u safe to hand outside the core: the
// password hash and the refresh slot are removed.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PasswordHash = ""
	cp.RefreshToken = ""
	return &cp
}

// Validate checks the fields required at creation time.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return invalidField("name", "required")
	}
	if u.Email == "" {
		return invalidField("email", "required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return invalidField("email", "malformed")
	}
	if !u.Role.Valid() {
		return invalidField("role", "must be one of Admin, User")
	}
	return nil
}

// NormalizeEmail lowercases and trims an email address for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
