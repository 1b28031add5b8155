package model

import (
	"math"
	"time"
)

// Category groups catalog items.
type Category string

const (
	CategoryHealthSupplements  Category = "Health Supplements"
	CategoryMedicalSupplies    Category = "Medical Supplies"
	CategoryGeneralMerchandise Category = "General Merchandise"
)

// Valid reports whether category is one of the known catalog categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryHealthSupplements, CategoryMedicalSupplies, CategoryGeneralMerchandise:
		return true
	}
	return false
}

// Discount is a time-bounded percentage reduction of the list price.
type Discount struct {
	Percentage float64
	ValidUntil *time.Time
}

// ActiveAt reports whether discount applies at the given moment.
func (d Discount) ActiveAt(now time.Time) bool {
	return d.Percentage > 0 && d.ValidUntil != nil && !d.ValidUntil.Before(now)
}

// Apply returns price reduced by the discount when it is active.
func (d Discount) Apply(price Money, now time.Time) Money {
	if !d.ActiveAt(now) {
		return price
	}
	pct := math.Min(d.Percentage, 100)
	return Money(math.Round(float64(price) * (100 - pct) / 100))
}

// Ratings aggregates product reviews.
type Ratings struct {
	Average float64
	Count   int
}

const (
	// MaxUnitPrice is the highest list price accepted, one million in major units.
	MaxUnitPrice Money = 100_000_000
	// MaxStock matches the integer column stock is stored in.
	MaxStock = math.MaxInt32
)

// Product is a catalog entry.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       Money
	Category    Category
	Subcategory string
	Brand       string
	Stock       int
	Images      []string
	Discount    Discount
	Ratings     Ratings
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EffectivePrice is the unit price after any currently valid discount.
func (p Product) EffectivePrice(now time.Time) Money {
	return p.Discount.Apply(p.Price, now)
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// Review is a single customer rating of a product.
type Review struct {
	ID        int64
	ProductID int64
	UserID    int64
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// ProductPatch carries optional product changes; nil fields are untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *Money
	Category    *Category
	Subcategory *string
	Brand       *string
	Stock       *int
	Images      *[]string
	Discount    *Discount
	IsActive    *bool
}

// Apply returns p with the patched fields replaced. Stock is not applied.
func (pp ProductPatch) Apply(p Product) Product {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Subcategory != nil {
		p.Subcategory = *pp.Subcategory
	}
	if pp.Brand != nil {
		p.Brand = *pp.Brand
	}
	if pp.Images != nil {
		p.Images = *pp.Images
	}
	if pp.Discount != nil {
		p.Discount = *pp.Discount
	}
	if pp.IsActive != nil {
		p.IsActive = *pp.IsActive
	}
	return p
}
