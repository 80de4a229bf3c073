// File: internal/middleware/auth_test.go
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nexus_mapping_backend/internal/auth"
	"nexus_mapping_backend/internal/common"
	"nexus_mapping_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubVerifier struct {
	claims *shared.IdentityClaims
	err    error
}

func (s *stubVerifier) Verify(ctx context.Context, rawToken string) (*shared.IdentityClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

type stubUserService struct {
	users map[string]*shared.User
}

func (s *stubUserService) ResolveOrCreate(ctx context.Context, claims *shared.IdentityClaims) (*shared.User, bool, error) {
	return nil, false, common.ErrInternalServer
}

func (s *stubUserService) GetByID(ctx context.Context, id string) (*shared.User, error) {
	if usr, ok := s.users[id]; ok {
		return usr, nil
	}
	return nil, common.ErrNotFound
}

func newAuthRouter(verifier shared.TokenVerifier, users shared.Service, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers := []gin.HandlerFunc{AuthMiddleware(verifier, users, zap.NewNop())}
	if len(roles) > 0 {
		handlers = append(handlers, RoleAuthMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"uid":  GetUserIDFromContext(c),
			"role": GetUserRoleFromContext(c),
		})
	})
	router.GET("/protected", handlers...)
	return router
}

func authRequest(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set(common.AuthorizationHeader, header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func authMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	router := newAuthRouter(&stubVerifier{}, &stubUserService{})

	rec := authRequest(router, "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized: Missing or invalid token.", authMessage(t, rec))
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	router := newAuthRouter(&stubVerifier{}, &stubUserService{})

	for _, header := range []string{"Bearer", "Basic abc123", "Bearer "} {
		rec := authRequest(router, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestAuthMiddlewareRejectionMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{auth.ErrTokenExpired, "Forbidden: Token has expired."},
		{auth.ErrNoMatchingKey, "Forbidden: Token signature is invalid."},
		{auth.ErrMissingSubject, "Forbidden: Token is missing user identifier."},
		{auth.ErrTokenMalformed, "Forbidden: Invalid token."},
		{auth.ErrInvalidAudience, "Forbidden: Invalid token."},
	}
	for _, tc := range cases {
		router := newAuthRouter(&stubVerifier{err: tc.err}, &stubUserService{})
		rec := authRequest(router, "Bearer some-token")

		require.Equal(t, http.StatusForbidden, rec.Code, tc.want)
		assert.Equal(t, tc.want, authMessage(t, rec))
	}
}

func TestAuthMiddlewareUnknownSubjectDefaultsToViewer(t *testing.T) {
	verifier := &stubVerifier{claims: &shared.IdentityClaims{Subject: "sub-1", Email: "x@example.com"}}
	router := newAuthRouter(verifier, &stubUserService{})

	rec := authRequest(router, "Bearer some-token")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "sub-1", body["uid"])
	assert.Equal(t, common.RoleViewer, body["role"])
}

func TestAuthMiddlewareUsesDirectoryRole(t *testing.T) {
	verifier := &stubVerifier{claims: &shared.IdentityClaims{Subject: "sub-2", Email: "admin@example.com"}}
	users := &stubUserService{users: map[string]*shared.User{
		"sub-2": {ID: "sub-2", Email: "admin@example.com", Role: common.RoleAdmin},
	}}
	router := newAuthRouter(verifier, users)

	rec := authRequest(router, "Bearer some-token")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, common.RoleAdmin, body["role"])
}

func TestRoleAuthMiddlewareBlocksViewer(t *testing.T) {
	verifier := &stubVerifier{claims: &shared.IdentityClaims{Subject: "sub-3", Email: "x@example.com"}}
	router := newAuthRouter(verifier, &stubUserService{}, common.RoleAdmin)

	rec := authRequest(router, "Bearer some-token")

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden: You do not have permission to perform this action.", authMessage(t, rec))
}

func TestRoleAuthMiddlewareAllowsAdmin(t *testing.T) {
	verifier := &stubVerifier{claims: &shared.IdentityClaims{Subject: "sub-4", Email: "admin@example.com"}}
	users := &stubUserService{users: map[string]*shared.User{
		"sub-4": {ID: "sub-4", Email: "admin@example.com", Role: common.RoleAdmin},
	}}
	router := newAuthRouter(verifier, users, common.RoleAdmin)

	rec := authRequest(router, "Bearer some-token")

	assert.Equal(t, http.StatusOK, rec.Code)
}
