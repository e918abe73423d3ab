package auth

import "time"

// Config drives identity resolution against Supabase.
type Config struct {
	// SupabaseURL is the project URL; the expected token issuer is derived from it.
	SupabaseURL string
	// JWTSecret enables local HS256 verification. Empty means every lookup
	// goes to the remote auth endpoint.
	JWTSecret string
	Leeway    time.Duration
}

// User is the authenticated caller.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Claims are extracted from a Supabase access token.
type Claims struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}
