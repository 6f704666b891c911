// Package token mints and verifies the signed session tokens that carry
// a caller's identity. Resolving a token is the only way a request gains
// a non-anonymous identity; a missing or bad token degrades to anonymous
// at the call site, never to a partial identity.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Youssef-Elmorali/studio/internal/authz"
	apperrors "github.com/Youssef-Elmorali/studio/internal/errors"
)

// tokenEnv holds raw env values before post-parse validation.
type tokenEnv struct {
	Issuer string `env:"STUDIO_TOKEN_ISSUER" envDefault:"studio"`
	Secret string `env:"STUDIO_TOKEN_SECRET"`
	TTL    string `env:"STUDIO_TOKEN_TTL" envDefault:"24h"`
}

// Config defines how session tokens are signed and verified.
type Config struct {
	Issuer string
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

// sessionClaims is the internal claims type used for JWT parsing.
type sessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// LoadConfigFromEnv reads token signing configuration.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw tokenEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse token env: %w", err)
	}
	secret := strings.TrimSpace(raw.Secret)
	if secret == "" {
		return Config{}, fmt.Errorf("STUDIO_TOKEN_SECRET is required")
	}
	ttl, err := time.ParseDuration(strings.TrimSpace(raw.TTL))
	if err != nil {
		return Config{}, fmt.Errorf("parse STUDIO_TOKEN_TTL: %w", err)
	}
	if ttl <= 0 {
		return Config{}, fmt.Errorf("STUDIO_TOKEN_TTL must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return Config{
		Issuer: strings.TrimSpace(raw.Issuer),
		Secret: []byte(secret),
		TTL:    ttl,
		Now:    now,
	}, nil
}

// Mint signs a session token for the given identity.
func Mint(identity authz.Identity, cfg Config) (string, error) {
	if identity.IsAnonymous() {
		return "", apperrors.New(apperrors.CodeTokenInvalid, "cannot mint token for anonymous identity")
	}
	if len(cfg.Secret) == 0 {
		return "", errors.New("token signer is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	now := cfg.Now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   identity.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
		Role: identity.Role.Label(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Resolve verifies a session token and returns the identity it carries.
func Resolve(raw string, cfg Config) (authz.Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return authz.Identity{}, apperrors.New(apperrors.CodeTokenInvalid, "session token is required")
	}
	if len(cfg.Secret) == 0 {
		return authz.Identity{}, errors.New("token verifier is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return authz.Identity{}, mapJWTError(err)
	}

	if cfg.Issuer != "" && parsed.Issuer != cfg.Issuer {
		return authz.Identity{}, apperrors.WithMetadata(
			apperrors.CodeTokenInvalid,
			"session token issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return authz.Identity{}, apperrors.New(apperrors.CodeTokenInvalid, "session token sub is required")
	}
	if parsed.ExpiresAt == nil {
		return authz.Identity{}, apperrors.New(apperrors.CodeTokenInvalid, "session token exp is required")
	}
	now := cfg.Now().UTC()
	if !parsed.ExpiresAt.Time.UTC().After(now) {
		return authz.Identity{}, apperrors.New(apperrors.CodeTokenExpired, "session token is expired")
	}

	role := authz.ParseRole(parsed.Role)
	if role == authz.RoleUnspecified {
		return authz.Identity{}, apperrors.WithMetadata(
			apperrors.CodeTokenInvalid,
			"session token role is not recognized",
			map[string]string{"Field": "role"},
		)
	}
	return authz.Identity{Subject: parsed.Subject, Role: role}, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return apperrors.New(apperrors.CodeTokenInvalid, "session token signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeTokenInvalid, "session token alg is invalid")
	}
	return apperrors.New(apperrors.CodeTokenInvalid, "session token is invalid")
}
