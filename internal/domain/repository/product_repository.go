package repository

import (
	"context"

	"github.com/coachbar/catalog-api/internal/domain/entity"
)

// ProductQuery carries listing filters. AssignedTo, when non-empty,
// restricts results to products assigned to that user id; it is how the
// ownership scope reaches the repository and is never caller supplied.
type ProductQuery struct {
	Search     string
	Category   string
	Source     string
	AssignedTo string
	Page       int
	Limit      int
	Sort       string
	Order      string
}

// ProductRepository defines the interface for product persistence.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, q ProductQuery) ([]*entity.Product, int64, error)
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
}
