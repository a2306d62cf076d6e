package auth

// Profile represents a normalized external authentication identity
// returned by an OAuth provider. It contains facts only, no decisions.
type Profile struct {
	Provider      string // e.g. "google", "keycloak"
	ExternalID    string // provider-scoped unique user identifier (sub)
	Email         string // email returned by provider
	EmailVerified bool   // whether provider asserts email ownership
	GivenName     string
	FamilyName    string
}
