// File: internal/auth/verifier.go
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"nexus_mapping_backend/internal/config"
	"nexus_mapping_backend/internal/shared"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	issuerGoogle    = "https://accounts.google.com"
	issuerGoogleAlt = "accounts.google.com"
)

// Sentinel errors describing why a token was rejected. The request gate maps
// each of them to its own response message.
var (
	ErrTokenExpired    = errors.New("auth: token has expired")
	ErrTokenMalformed  = errors.New("auth: token is malformed")
	ErrNoMatchingKey   = errors.New("auth: token signature could not be verified")
	ErrInvalidIssuer   = errors.New("auth: token issuer not allowed")
	ErrInvalidAudience = errors.New("auth: token audience mismatch")
	ErrMissingSubject  = errors.New("auth: token missing subject claim")
	ErrMissingEmail    = errors.New("auth: token missing email claim")

	ErrInvalidVerifierConfig = errors.New("auth: invalid google verifier config")

	errMissingAudienceConfig = errors.New("audience configuration required")
	errMissingJWKSURL        = errors.New("jwks url configuration required")
	errMissingKeyIdentifier  = errors.New("token missing key identifier")
)

// GoogleVerifierConfig bundles configuration required to instantiate a GoogleVerifier.
type GoogleVerifierConfig struct {
	Audience   string
	JWKSURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
	Clock      func() time.Time
}

// GoogleVerifier verifies Google ID tokens offline using cached JWKS.
// Keys are fetched once and reused; an unknown key ID triggers a refresh.
type GoogleVerifier struct {
	audience   string
	jwksURL    string
	logger     *zap.Logger
	httpClient *http.Client
	clock      func() time.Time
	cache      *jwksCache
	issuers    map[string]struct{}
}

var _ shared.TokenVerifier = (*GoogleVerifier)(nil)

// idTokenClaims extends the registered claims with the Google profile claims
// the user directory needs.
type idTokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// NewGoogleVerifier constructs a verifier with validated configuration.
func NewGoogleVerifier(cfg GoogleVerifierConfig) (*GoogleVerifier, error) {
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVerifierConfig, errMissingAudienceConfig)
	}

	jwksURL := strings.TrimSpace(cfg.JWKSURL)
	if jwksURL == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVerifierConfig, errMissingJWKSURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &GoogleVerifier{
		audience:   audience,
		jwksURL:    jwksURL,
		logger:     logger,
		httpClient: httpClient,
		clock:      clock,
		cache:      &jwksCache{},
		issuers: map[string]struct{}{
			issuerGoogle:    {},
			issuerGoogleAlt: {},
		},
	}, nil
}

// Verify validates the provided ID token and returns the claims required downstream.
func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*shared.IdentityClaims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrTokenMalformed
	}

	claims := &idTokenClaims{}
	token, err := jwt.ParseWithClaims(
		rawToken,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
				return nil, fmt.Errorf("unexpected signing algorithm: %s", token.Method.Alg())
			}
			keyID, _ := token.Header["kid"].(string)
			if keyID == "" {
				return nil, errMissingKeyIdentifier
			}
			key, keyErr := v.lookupKey(ctx, keyID)
			if keyErr != nil {
				return nil, keyErr
			}
			return key, nil
		},
		jwt.WithAudience(v.audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithTimeFunc(v.clock),
	)
	if err != nil {
		return nil, v.mapParseError(err)
	}
	if !token.Valid {
		return nil, ErrNoMatchingKey
	}

	if _, allowed := v.issuers[claims.Issuer]; !allowed {
		return nil, ErrInvalidIssuer
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	if claims.Email == "" {
		return nil, ErrMissingEmail
	}

	expiry := time.Time{}
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}
	audience := ""
	if len(claims.Audience) > 0 {
		audience = claims.Audience[0]
	}

	return &shared.IdentityClaims{
		Subject:  claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Issuer:   claims.Issuer,
		Audience: audience,
		Expiry:   expiry,
	}, nil
}

func (v *GoogleVerifier) mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrInvalidAudience
	case errors.Is(err, ErrNoMatchingKey), errors.Is(err, errMissingKeyIdentifier):
		return ErrNoMatchingKey
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrNoMatchingKey
	default:
		v.logger.Debug("token verification failed", zap.Error(err))
		return fmt.Errorf("auth: token rejected: %w", err)
	}
}

func (v *GoogleVerifier) lookupKey(ctx context.Context, keyID string) (*rsa.PublicKey, error) {
	if key := v.cache.get(keyID); key != nil {
		return key, nil
	}

	if err := v.refreshKeys(ctx); err != nil {
		return nil, err
	}

	if key := v.cache.get(keyID); key != nil {
		return key, nil
	}

	return nil, ErrNoMatchingKey
}

func (v *GoogleVerifier) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return err
	}

	response, err := v.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks request returned status %d", response.StatusCode)
	}

	var document jwksDocument
	if err := json.NewDecoder(response.Body).Decode(&document); err != nil {
		return err
	}

	keyMap := make(map[string]*rsa.PublicKey, len(document.Keys))
	for _, key := range document.Keys {
		if key.KeyType != "RSA" || key.Use != "sig" {
			continue
		}
		publicKey, err := key.toRSAPublicKey()
		if err != nil {
			v.logger.Debug("skipping jwk", zap.String("kid", key.KeyID), zap.Error(err))
			continue
		}
		keyMap[key.KeyID] = publicKey
	}

	if len(keyMap) == 0 {
		return errors.New("jwks document contained no usable keys")
	}

	v.cache.store(keyMap)
	return nil
}

type jwksCache struct {
	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

func (c *jwksCache) get(keyID string) *rsa.PublicKey {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.keys == nil {
		return nil
	}
	return c.keys[keyID]
}

func (c *jwksCache) store(keys map[string]*rsa.PublicKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = keys
}

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	KeyType string `json:"kty"`
	Alg     string `json:"alg"`
	KeyID   string `json:"kid"`
	Use     string `json:"use"`
	Modulus string `json:"n"`
	Exp     string `json:"e"`
}

func (k jwk) toRSAPublicKey() (*rsa.PublicKey, error) {
	modulusBytes, err := base64.RawURLEncoding.DecodeString(k.Modulus)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus encoding: %w", err)
	}
	exponentBytes, err := base64.RawURLEncoding.DecodeString(k.Exp)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent encoding: %w", err)
	}

	if len(exponentBytes) == 0 {
		return nil, errors.New("missing exponent bytes")
	}

	exponent := 0
	for _, b := range exponentBytes {
		exponent = exponent<<8 + int(b)
	}
	if exponent == 0 {
		return nil, errors.New("invalid exponent value")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(modulusBytes),
		E: exponent,
	}, nil
}

// NewVerifierFromConfig adapts the application configuration into a TokenVerifier.
func NewVerifierFromConfig(cfg *config.Config, logger *zap.Logger) (shared.TokenVerifier, error) {
	return NewGoogleVerifier(GoogleVerifierConfig{
		Audience: cfg.GoogleClientID,
		JWKSURL:  cfg.GoogleJWKSURL,
		Logger:   logger.Named("GoogleVerifier"),
	})
}
