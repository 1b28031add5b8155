package dto

import (
	"time"

	"github.com/polkiloo/healthmart/internal/domain/model"
)

// Discount is a percentage off until a deadline.
type Discount struct {
	Percentage float64    `json:"percentage"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`
}

// ProductRequest describes product create payload.
type ProductRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       model.Money `json:"price"`
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory"`
	Brand       string      `json:"brand"`
	Stock       int         `json:"stock"`
	Images      []string    `json:"images"`
	Discount    *Discount   `json:"discount"`
	IsActive    *bool       `json:"isActive"`
}

// ProductPatchRequest describes product update payload; absent fields are kept.
type ProductPatchRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Price       *model.Money `json:"price"`
	Category    *string      `json:"category"`
	Subcategory *string      `json:"subcategory"`
	Brand       *string      `json:"brand"`
	Stock       *int         `json:"stock"`
	Images      *[]string    `json:"images"`
	Discount    *Discount    `json:"discount"`
	IsActive    *bool        `json:"isActive"`
}

// StockRequest overwrites stock level.
type StockRequest struct {
	Stock *int `json:"stock" binding:"required"`
}

// ReviewRequest rates a product.
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// Ratings aggregates reviews.
type Ratings struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// ProductResponse is the catalog view of a product.
type ProductResponse struct {
	ID          int64       `json:"_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       model.Money `json:"price"`
	FinalPrice  model.Money `json:"finalPrice"`
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory,omitempty"`
	Brand       string      `json:"brand,omitempty"`
	Stock       int         `json:"stock"`
	InStock     bool        `json:"inStock"`
	Images      []string    `json:"images"`
	Discount    Discount    `json:"discount"`
	Ratings     Ratings     `json:"ratings"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
