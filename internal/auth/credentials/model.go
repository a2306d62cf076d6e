package credentials

import "identity-service/internal/auth"

// Registration carries the fields of a local sign-up.
// Password is plaintext; it is hashed exactly once by Register.
type Registration struct {
	Name     string
	Surname  string
	Email    string
	Password string
	Role     auth.Role
}

func (r Registration) user() *auth.User {
	return &auth.User{
		Name:    r.Name,
		Surname: r.Surname,
		Email:   auth.NormalizeEmail(r.Email),
		Role:    r.Role,
	}
}
