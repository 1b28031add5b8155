package repository

import (
	"context"

	"github.com/polkiloo/healthmart/internal/domain/model"
)

// ProductRepository describes persistence operations for catalog entries.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, product model.Product) (*model.Product, error)
	// Update writes the editable fields of product. Stock is left alone;
	// it only changes through SetStock and the stock counters below.
	Update(ctx context.Context, product model.Product) (*model.Product, error)
	Delete(ctx context.Context, id int64) error
	SetStock(ctx context.Context, id int64, stock int) (*model.Product, error)
	// DecrementStock subtracts quantity only when enough units remain and
	// returns the remaining stock; ErrInsufficientStock otherwise.
	DecrementStock(ctx context.Context, id int64, quantity int) (int, error)
	IncrementStock(ctx context.Context, id int64, quantity int) (int, error)
	// AddReview stores the review and refreshes the product ratings.
	AddReview(ctx context.Context, review model.Review) (*model.Product, error)
}
