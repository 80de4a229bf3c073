// File: internal/session/service_test.go
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nexus_mapping_backend/internal/common"
	"nexus_mapping_backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const testSessionSecret = "test-session-secret"

func newSessionService(cfg *config.Config) *Service {
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = testSessionSecret
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = time.Hour
	}
	return NewService(cfg, zap.NewNop())
}

// fakeIDToken builds a structurally valid Google ID token. The session
// service only parses it; signature verification happens at the API gate.
func fakeIDToken(t *testing.T, sub, email, name string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss":   "https://accounts.google.com",
		"sub":   sub,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	if name != "" {
		claims["name"] = name
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("google-side-key"))
	require.NoError(t, err)
	return signed
}

// newTokenServer stubs the OAuth token endpoint. An empty idToken omits the
// id_token field from the response.
func newTokenServer(t *testing.T, idToken string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		payload := map[string]interface{}{
			"access_token": "stub-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		}
		if idToken != "" {
			payload["id_token"] = idToken
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func pointOAuthAt(svc *Service, ts *httptest.Server) {
	svc.oauth.Endpoint = oauth2.Endpoint{
		AuthURL:  ts.URL + "/auth",
		TokenURL: ts.URL + "/token",
	}
}

func TestCompleteLoginIssuesSession(t *testing.T) {
	idToken := fakeIDToken(t, "google-sub-1", "admin@example.com", "Ada")

	syncServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users/sync", r.URL.Path)
		require.Equal(t, "Bearer "+idToken, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"user":    map[string]string{"role": common.RoleAdmin},
		})
	}))
	defer syncServer.Close()

	tokenServer := newTokenServer(t, idToken)
	defer tokenServer.Close()

	svc := newSessionService(&config.Config{BackendBaseURL: syncServer.URL})
	pointOAuthAt(svc, tokenServer)

	signed, claims, err := svc.CompleteLogin(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Equal(t, "google-sub-1", claims.UID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, common.RoleAdmin, claims.Role)
	assert.Equal(t, idToken, claims.IDToken)

	// The returned token validates against the same service.
	parsed, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, claims.UID, parsed.UID)
	assert.Equal(t, claims.Role, parsed.Role)
}

func TestCompleteLoginDegradesToViewerOnSyncFailure(t *testing.T) {
	idToken := fakeIDToken(t, "google-sub-2", "someone@example.com", "")

	syncServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer syncServer.Close()

	tokenServer := newTokenServer(t, idToken)
	defer tokenServer.Close()

	svc := newSessionService(&config.Config{BackendBaseURL: syncServer.URL})
	pointOAuthAt(svc, tokenServer)

	_, claims, err := svc.CompleteLogin(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, common.RoleViewer, claims.Role)
}

func TestCompleteLoginDegradesToViewerWithoutSyncBackend(t *testing.T) {
	idToken := fakeIDToken(t, "google-sub-3", "someone@example.com", "")

	tokenServer := newTokenServer(t, idToken)
	defer tokenServer.Close()

	svc := newSessionService(&config.Config{})
	pointOAuthAt(svc, tokenServer)

	_, claims, err := svc.CompleteLogin(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, common.RoleViewer, claims.Role)
}

func TestCompleteLoginRequiresIDToken(t *testing.T) {
	tokenServer := newTokenServer(t, "")
	defer tokenServer.Close()

	svc := newSessionService(&config.Config{})
	pointOAuthAt(svc, tokenServer)

	_, _, err := svc.CompleteLogin(context.Background(), "auth-code")
	assert.ErrorIs(t, err, ErrNoIDToken)
}

func TestCompleteLoginRejectsIDTokenWithoutIdentity(t *testing.T) {
	// Parseable token but no sub/email claims.
	bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"foo": "bar"}).SignedString([]byte("k"))
	require.NoError(t, err)

	tokenServer := newTokenServer(t, bad)
	defer tokenServer.Close()

	svc := newSessionService(&config.Config{})
	pointOAuthAt(svc, tokenServer)

	_, _, err = svc.CompleteLogin(context.Background(), "auth-code")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func signSessionToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func sessionClaims(uid string, issuer string, expiresAt time.Time) *Claims {
	return &Claims{
		UID:   uid,
		Email: "x@example.com",
		Role:  common.RoleViewer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
}

func TestValidateTokenRoundtrip(t *testing.T) {
	svc := newSessionService(&config.Config{})
	signed := signSessionToken(t, testSessionSecret, sessionClaims("uid-1", sessionIssuer, time.Now().Add(time.Hour)))

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UID)
}

func TestValidateTokenMissing(t *testing.T) {
	svc := newSessionService(&config.Config{})

	_, err := svc.ValidateToken("   ")
	assert.ErrorIs(t, err, ErrMissingSessionToken)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newSessionService(&config.Config{})
	signed := signSessionToken(t, testSessionSecret, sessionClaims("uid-2", sessionIssuer, time.Now().Add(-time.Minute)))

	_, err := svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrExpiredSessionToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := newSessionService(&config.Config{})
	signed := signSessionToken(t, "some-other-secret", sessionClaims("uid-3", sessionIssuer, time.Now().Add(time.Hour)))

	_, err := svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	svc := newSessionService(&config.Config{})
	signed := signSessionToken(t, testSessionSecret, sessionClaims("uid-4", "someone-else", time.Now().Add(time.Hour)))

	_, err := svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}
