// File: internal/common/context_keys.go
package common

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// AdminSecretHeader is the header name carrying the static reset secret
	AdminSecretHeader = "X-Admin-Secret"
	// UserIDKey is the context key for storing the authenticated user's ID (token subject)
	UserIDKey = "userID"
	// UserEmailKey is the context key for storing the authenticated user's email
	UserEmailKey = "userEmail"
	// UserRoleKey is the context key for storing the authenticated user's role
	UserRoleKey = "userRole"
	// UserClaimsKey stores the full set of verified identity claims
	UserClaimsKey = "userClaims"
)

const (
	// RoleAdmin may update points and trigger reseeds.
	RoleAdmin = "admin"
	// RoleViewer is the default role for any authenticated identity.
	RoleViewer = "viewer"
)
