package repository

import (
	"context"

	"github.com/coachbar/catalog-api/internal/domain/entity"
)

// UserQuery carries listing options. Limit <= 0 disables pagination.
type UserQuery struct {
	Page  int
	Limit int
	Sort  string
	Order string
}

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, q UserQuery) ([]*entity.User, int64, error)
	Update(ctx context.Context, u *entity.User) error
}
