// File: internal/session/service.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nexus_mapping_backend/internal/common"
	"nexus_mapping_backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const sessionIssuer = "nexus-mapping"

var (
	ErrMissingSessionToken = errors.New("session: token required")
	ErrInvalidSessionToken = errors.New("session: invalid token")
	ErrExpiredSessionToken = errors.New("session: token expired")
	ErrNoIDToken           = errors.New("session: token response missing id_token")
)

// Claims is the payload signed into the session cookie. The embedded ID token
// is never trusted by itself: privileged API calls present it as a bearer
// token and the request gate re-verifies it.
type Claims struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role"`
	IDToken string `json:"id_token"`
	jwt.RegisteredClaims
}

// Service drives the Google OAuth login flow and issues HS256 session cookies.
type Service struct {
	cfg        *config.Config
	oauth      *oauth2.Config
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a new session service.
func NewService(cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.Named("SessionService"),
		now:        time.Now,
	}
}

// AuthCodeURL builds the Google consent page URL carrying the CSRF state.
func (s *Service) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// CookieName returns the configured session cookie name.
func (s *Service) CookieName() string {
	return s.cfg.SessionCookieName
}

// CompleteLogin exchanges the authorization code, learns the caller's role
// from the backend sync endpoint, and returns a signed session token. Role
// lookup failures degrade to viewer; they never fail the login.
func (s *Service) CompleteLogin(ctx context.Context, code string) (string, *Claims, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("OAuth code exchange failed", zap.Error(err))
		return "", nil, fmt.Errorf("code exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", nil, ErrNoIDToken
	}

	// The claims only seed the session payload here; the API gate
	// re-verifies the ID token signature on every privileged call.
	idClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, idClaims); err != nil {
		return "", nil, fmt.Errorf("id_token unparsable: %w", err)
	}
	subject, _ := idClaims["sub"].(string)
	email, _ := idClaims["email"].(string)
	name, _ := idClaims["name"].(string)
	if subject == "" || email == "" {
		return "", nil, ErrInvalidSessionToken
	}

	role := s.syncRole(ctx, rawIDToken)

	now := s.now().UTC()
	claims := &Claims{
		UID:     subject,
		Email:   email,
		Name:    name,
		Role:    role,
		IDToken: rawIDToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SessionTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.SessionSecret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, claims, nil
}

// syncRole calls the backend users sync endpoint with the ID token and
// returns the role it reports. Any failure degrades to viewer.
func (s *Service) syncRole(ctx context.Context, rawIDToken string) string {
	base := strings.TrimRight(s.cfg.BackendBaseURL, "/")
	if base == "" {
		s.logger.Warn("BACKEND_BASE_URL not set; defaulting session role to viewer")
		return common.RoleViewer
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/users/sync", nil)
	if err != nil {
		return common.RoleViewer
	}
	req.Header.Set(common.AuthorizationHeader, common.AuthorizationTypeBearer+" "+rawIDToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("User sync request failed; defaulting to viewer", zap.Error(err))
		return common.RoleViewer
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		s.logger.Warn("User sync returned non-success status; defaulting to viewer",
			zap.Int("status", resp.StatusCode))
		return common.RoleViewer
	}

	var body struct {
		Success bool `json:"success"`
		User    struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || !body.Success || body.User.Role == "" {
		s.logger.Warn("User sync response malformed; defaulting to viewer", zap.Error(err))
		return common.RoleViewer
	}
	return body.User.Role
}

// ValidateToken validates a signed session token and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMissingSessionToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("%w: unexpected signing algorithm %s", ErrInvalidSessionToken, t.Method.Alg())
			}
			return []byte(s.cfg.SessionSecret), nil
		},
		jwt.WithTimeFunc(s.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredSessionToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}
	if parsed == nil || !parsed.Valid || claims.Issuer != sessionIssuer || claims.UID == "" {
		return nil, ErrInvalidSessionToken
	}
	return claims, nil
}
