package model

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	// MaxPageNumber keeps Offset far below the int and bigint limits.
	MaxPageNumber = 1_000_000
)

// Page selects a window of a sorted listing.
type Page struct {
	Number int
	Limit  int
}

// NewPage normalizes page number and size.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Number: number, Limit: limit}
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// PageRef points at a neighbouring page.
type PageRef struct {
	Page  int
	Limit int
}

// Pagination links to neighbouring pages when they exist.
type Pagination struct {
	Next *PageRef
	Prev *PageRef
}

// Paginate builds neighbour links for a listing with total rows.
func (p Page) Paginate(total int) Pagination {
	var out Pagination
	if p.Number*p.Limit < total {
		out.Next = &PageRef{Page: p.Number + 1, Limit: p.Limit}
	}
	if p.Offset() > 0 {
		out.Prev = &PageRef{Page: p.Number - 1, Limit: p.Limit}
	}
	return out
}

// ProductPage is one page of a catalog listing.
type ProductPage struct {
	Items      []Product
	Total      int
	Pagination Pagination
}

// OrderPage is one page of an administrative order listing.
type OrderPage struct {
	Items      []Order
	Total      int
	Pagination Pagination
}

// ProductSort is a whitelisted catalog ordering.
type ProductSort string

const (
	SortNewest     ProductSort = "-createdAt"
	SortOldest     ProductSort = "createdAt"
	SortPriceAsc   ProductSort = "price"
	SortPriceDesc  ProductSort = "-price"
	SortNameAsc    ProductSort = "name"
	SortNameDesc   ProductSort = "-name"
	SortRatingAsc  ProductSort = "rating"
	SortRatingDesc ProductSort = "-rating"
)

// Valid reports whether sort is supported.
func (s ProductSort) Valid() bool {
	switch s {
	case SortNewest, SortOldest, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc, SortRatingAsc, SortRatingDesc:
		return true
	}
	return false
}

// ProductFilter narrows a catalog listing.
type ProductFilter struct {
	Category   Category
	Search     string
	MinPrice   *Money
	MaxPrice   *Money
	InStock    bool
	ActiveOnly bool
	Sort       ProductSort
	Page       Page
}

// OrderFilter narrows an administrative order listing.
type OrderFilter struct {
	UserID        int64
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Page          Page
}
