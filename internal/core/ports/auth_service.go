package ports

import (
	"context"

	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
)

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string // optional, defaults to domain.RoleUser
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User *domain.User
	domain.TokenPair
}

// AuthService defines the authentication use cases.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	GetByID(ctx context.Context, userID string) (*domain.User, error)
}

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// TokenIssuer signs token pairs and verifies them.
type TokenIssuer interface {
	TokenVerifier
	IssuePair(claims domain.TokenClaims) (domain.TokenPair, error)
	VerifyRefresh(token string) (*domain.TokenClaims, error)
}

// TokenVerifier is the read side used by the HTTP auth middleware.
type TokenVerifier interface {
	VerifyAccess(token string) (*domain.TokenClaims, error)
}
