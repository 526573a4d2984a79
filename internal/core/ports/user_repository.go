package ports

import (
	"context"

	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
)

// UserRepository defines the persistence operations for users.
// Lookups return domain.ErrUserNotFound when nothing matches; Create returns
// domain.ErrDuplicateEmail when the store's uniqueness constraint rejects it.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
