// Package token issues and verifies stateless HS256 session tokens.
package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
)

// TTL is the fixed session lifetime.
const TTL = 7 * 24 * time.Hour

// Configuration errors reported by New.
var (
	ErrMissingSigningKey = fmt.Errorf("%w: missing jwt signing key", errs.ErrConfig)
	ErrMissingIssuer     = fmt.Errorf("%w: missing jwt issuer", errs.ErrConfig)
	ErrMissingAudience   = fmt.Errorf("%w: missing jwt audience", errs.ErrConfig)
)

// Config holds the read-only token settings loaded once at startup.
type Config struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	Now        func() time.Time // time.Now when nil
}

// Claims is the JWT payload. Claim names follow the nameid/unique_name convention.
type Claims struct {
	UserID   string `json:"nameid"`
	Username string `json:"unique_name"`
	jwt.RegisteredClaims
}

// Manager mints and verifies tokens. It is immutable and safe for concurrent use.
type Manager struct {
	key      []byte
	issuer   string
	audience string
	now      func() time.Time
	parser   *jwt.Parser
}

// New validates cfg and constructs a Manager.
func New(cfg Config) (*Manager, error) {
	switch {
	case len(cfg.SigningKey) == 0:
		return nil, ErrMissingSigningKey
	case cfg.Issuer == "":
		return nil, ErrMissingIssuer
	case cfg.Audience == "":
		return nil, ErrMissingAudience
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	m := &Manager{
		key:      append([]byte(nil), cfg.SigningKey...),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      cfg.Now,
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(m.now),
	)
	return m, nil
}

// Generate issues a signed token for the given user and returns it with its expiry.
func (m *Manager) Generate(userID int64, username string) (string, time.Time, error) {
	now := m.now().UTC()
	exp := now.Add(TTL)
	claims := Claims{
		UserID:   strconv.FormatInt(userID, 10),
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, issuer, audience and expiry and returns the embedded identity.
// Any failure yields errs.ErrUnauthorized.
func (m *Manager) Verify(tokenString string) (model.Identity, error) {
	var claims Claims
	parsed, err := m.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	})
	if err != nil || !parsed.Valid {
		return model.Identity{}, errs.ErrUnauthorized
	}
	id, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil || id <= 0 || claims.Username == "" {
		return model.Identity{}, errs.ErrUnauthorized
	}
	return model.Identity{UserID: id, Username: claims.Username}, nil
}
