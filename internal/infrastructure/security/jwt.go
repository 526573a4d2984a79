package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// JWTConfig holds the signing material for both token kinds.
type JWTConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

type claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies HS256 access and refresh tokens. The two kinds
// use different secrets, so neither verifies as the other.
type JWTIssuer struct {
	cfg JWTConfig
	now func() time.Time
}

func NewJWTIssuer(cfg JWTConfig) (*JWTIssuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("jwt: access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("jwt: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &JWTIssuer{cfg: cfg, now: time.Now}, nil
}

// IssuePair signs a fresh access token and refresh token for c.
func (j *JWTIssuer) IssuePair(c domain.TokenClaims) (domain.TokenPair, error) {
	access, err := j.sign(c, tokenTypeAccess, j.cfg.AccessSecret, j.cfg.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := j.sign(c, tokenTypeRefresh, j.cfg.RefreshSecret, j.cfg.RefreshTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (j *JWTIssuer) VerifyAccess(token string) (*domain.TokenClaims, error) {
	return j.verify(token, tokenTypeAccess, j.cfg.AccessSecret)
}

func (j *JWTIssuer) VerifyRefresh(token string) (*domain.TokenClaims, error) {
	return j.verify(token, tokenTypeRefresh, j.cfg.RefreshSecret)
}

func (j *JWTIssuer) sign(c domain.TokenClaims, typ, secret string, ttl time.Duration) (string, error) {
	now := j.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: c.UserID,
		Email:  c.Email,
		Role:   c.Role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return t.SignedString([]byte(secret))
}

func (j *JWTIssuer) verify(token, typ, secret string) (*domain.TokenClaims, error) {
	var parsed claims
	tkn, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	if parsed.Type != typ || parsed.UserID == "" {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	return &domain.TokenClaims{
		UserID: parsed.UserID,
		Email:  parsed.Email,
		Role:   parsed.Role,
	}, nil
}
