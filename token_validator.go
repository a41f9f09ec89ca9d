package identity

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

var _ TokenValidator = &HSTokenValidator{}
var _ TokenValidator = &JWKSTokenValidator{}

// HSTokenValidator verifies HMAC-signed session tokens using the shared
// signing key from Config.
type HSTokenValidator struct {
	config Config
	logger Logger
}

// NewHSTokenValidator creates a validator for HS256 tokens.
func NewHSTokenValidator(cfg Config) (*HSTokenValidator, error) {
	if cfg == nil || cfg.GetSigningKey() == "" {
		return nil, fmt.Errorf("identity: signing key is required")
	}
	return &HSTokenValidator{
		config: cfg,
		logger: defLogger{},
	}, nil
}

// Validate implements TokenValidator.
func (v *HSTokenValidator) Validate(tokenString string) (AuthClaims, error) {
	key := []byte(v.config.GetSigningKey())
	claims, err := parseClaims(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	}, v.config)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// JWKSTokenValidator verifies tokens against a remote JWK Set, for
// deployments where an external identity provider signs sessions.
type JWKSTokenValidator struct {
	config Config
	jwks   *keyfunc.JWKS
	logger Logger
}

// NewJWKSTokenValidator creates a validator backed by the JWK Set URL from
// Config. The key set refreshes in the background until Close is called.
func NewJWKSTokenValidator(cfg Config, logger Logger) (*JWKSTokenValidator, error) {
	if cfg == nil || cfg.GetJWKSetURL() == "" {
		return nil, fmt.Errorf("identity: JWK set URL is required")
	}

	if logger == nil {
		logger = defLogger{}
	}

	jwks, err := keyfunc.Get(cfg.GetJWKSetURL(), keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.Warn("background JWK set refresh failed: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("identity: failed to get JWK set: %w", err)
	}

	return &JWKSTokenValidator{
		config: cfg,
		jwks:   jwks,
		logger: logger,
	}, nil
}

// Validate implements TokenValidator.
func (v *JWKSTokenValidator) Validate(tokenString string) (AuthClaims, error) {
	return parseClaims(tokenString, v.jwks.Keyfunc, v.config)
}

// Close stops the background key refresh.
func (v *JWKSTokenValidator) Close() {
	v.jwks.EndBackground()
}

func parseClaims(tokenString string, keyFunc jwt.Keyfunc, cfg Config) (*JWTClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
	}
	if iss := cfg.GetIssuer(); iss != "" {
		opts = append(opts, jwt.WithIssuer(iss))
	}
	if aud := cfg.GetAudience(); len(aud) > 0 {
		opts = append(opts, jwt.WithAudience(aud[0]))
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc, opts...)
	if err != nil {
		return nil, normalizeTokenError(err)
	}

	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.AccountID() == "" {
		return nil, ErrUnableToMapClaims
	}

	return claims, nil
}

func normalizeTokenError(err error) error {
	if err == nil {
		return nil
	}

	clone := ErrTokenMalformed.Clone()
	if stderrors.Is(err, jwt.ErrTokenExpired) {
		clone = ErrTokenExpired.Clone()
	}

	clone.Source = err
	return clone.WithMetadata(map[string]any{
		"cause": err.Error(),
	})
}
