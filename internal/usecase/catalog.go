package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/polkiloo/healthmart/internal/domain/model"
	"github.com/polkiloo/healthmart/internal/domain/repository"
)

// CatalogUseCase manages browsing and administration of products.
type CatalogUseCase struct {
	products repository.ProductRepository
	now      func() time.Time
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(products repository.ProductRepository) *CatalogUseCase {
	return &CatalogUseCase{products: products, now: time.Now}
}

// List returns a filtered, sorted page of products.
func (u *CatalogUseCase) List(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	if err := validateProductFilter(filter); err != nil {
		return nil, err
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Page = model.NewPage(filter.Page.Number, filter.Page.Limit)
	if filter.Sort == "" {
		filter.Sort = model.SortNewest
	}

	items, total, err := u.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &model.ProductPage{Items: items, Total: total, Pagination: filter.Page.Paginate(total)}, nil
}

// Get returns a single product.
func (u *CatalogUseCase) Get(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		return nil, invalid("product id must be positive")
	}
	return u.products.GetByID(ctx, id)
}

// Create validates and stores a new product.
func (u *CatalogUseCase) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	p.ID = 0
	p.Ratings = model.Ratings{}
	return u.products.Create(ctx, p)
}

// Update applies the fields present in patch to the stored product.
// Stock changes only when the patch carries it.
func (u *CatalogUseCase) Update(ctx context.Context, id int64, patch model.ProductPatch) (*model.Product, error) {
	current, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p := patch.Apply(*current)
	p.Name = strings.TrimSpace(p.Name)
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	updated, err := u.products.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	if patch.Stock == nil || *patch.Stock == updated.Stock {
		return updated, nil
	}
	return u.products.SetStock(ctx, id, *patch.Stock)
}

// Delete removes a product. Placed orders keep their line snapshots.
func (u *CatalogUseCase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalid("product id must be positive")
	}
	return u.products.Delete(ctx, id)
}

// SetStock overwrites the available quantity.
func (u *CatalogUseCase) SetStock(ctx context.Context, id int64, stock int) (*model.Product, error) {
	if stock < 0 || stock > model.MaxStock {
		return nil, invalid("stock must be an integer between 0 and %d", model.MaxStock)
	}
	if id <= 0 {
		return nil, invalid("product id must be positive")
	}
	return u.products.SetStock(ctx, id, stock)
}

// AddReview records a user's single review of a product.
func (u *CatalogUseCase) AddReview(ctx context.Context, productID, userID int64, rating int, comment string) (*model.Product, error) {
	comment = strings.TrimSpace(comment)
	if err := validateReview(rating, comment); err != nil {
		return nil, err
	}
	if _, err := u.Get(ctx, productID); err != nil {
		return nil, err
	}
	return u.products.AddReview(ctx, model.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: u.now(),
	})
}
