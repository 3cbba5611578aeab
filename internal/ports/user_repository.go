package ports

import (
	"context"

	"logistics-service/internal/domain"
)

// Port: user accounts for the back office and the API.
type UserRepository interface {
	// Create inserts u; duplicate username or email yields domain.FieldErrors.
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
