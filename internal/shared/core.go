package shared

import (
	"context"
	"time"
)

// User represents an authenticated identity in the system.
type User struct {
	ID        string // Google token subject
	Email     string
	Name      *string
	Role      string
	CreatedAt time.Time
}

// IdentityClaims carries the validated claims of a Google ID token.
type IdentityClaims struct {
	Subject  string
	Email    string
	Name     string
	Issuer   string
	Audience string
	Expiry   time.Time
}

// TokenVerifier validates a raw bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*IdentityClaims, error)
}

// Service defines the interface for user directory operations.
type Service interface {
	// ResolveOrCreate returns the user row for the claims' subject, creating
	// it on first login. The role assigned at creation time is permanent.
	ResolveOrCreate(ctx context.Context, claims *IdentityClaims) (usr *User, wasCreated bool, err error)
	GetByID(ctx context.Context, id string) (*User, error)
}
