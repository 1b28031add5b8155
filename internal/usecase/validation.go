package usecase

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	domainErrors "github.com/polkiloo/healthmart/internal/domain/errors"
	"github.com/polkiloo/healthmart/internal/domain/model"
)

const (
	maxProductName        = 100
	maxProductDescription = 2000
	maxReviewComment      = 500
	maxOrderLines         = 100
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domainErrors.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// normalizeEmail lowercases and trims email, failing when it is malformed.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return "", invalid("email %q is not valid", email)
	}
	return email, nil
}

func validateLines(lines []model.LineRequest) error {
	if len(lines) == 0 {
		return invalid("order has no lines")
	}
	if len(lines) > maxOrderLines {
		return invalid("order has more than %d lines", maxOrderLines)
	}
	for i, line := range lines {
		if line.ProductID <= 0 {
			return invalid("line %d: product id is required", i+1)
		}
		if line.Quantity < 1 || line.Quantity > model.MaxLineQuantity {
			return invalid("line %d: quantity must be between 1 and %d", i+1, model.MaxLineQuantity)
		}
	}
	return nil
}

func validateAddress(addr model.ShippingAddress) error {
	fields := []struct {
		name  string
		value string
	}{
		{"street", addr.Street},
		{"city", addr.City},
		{"state", addr.State},
		{"zipCode", addr.ZipCode},
		{"country", addr.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return invalid("shipping address %s is required", f.name)
		}
	}
	return nil
}

func validatePlaceOrder(req model.PlaceOrderRequest) error {
	if req.UserID <= 0 {
		return domainErrors.ErrUnauthorized
	}
	if err := validateLines(req.Lines); err != nil {
		return err
	}
	if err := validateAddress(req.ShippingAddress); err != nil {
		return err
	}
	if !req.PaymentMethod.Valid() {
		return invalid("unsupported payment method %q", req.PaymentMethod)
	}
	if !req.ShippingMethod.Valid() {
		return invalid("unsupported shipping method %q", req.ShippingMethod)
	}
	return nil
}

func validateProduct(p model.Product) error {
	name := strings.TrimSpace(p.Name)
	switch {
	case name == "":
		return invalid("product name is required")
	case utf8.RuneCountInString(name) > maxProductName:
		return invalid("product name cannot exceed %d characters", maxProductName)
	case strings.TrimSpace(p.Description) == "":
		return invalid("product description is required")
	case utf8.RuneCountInString(p.Description) > maxProductDescription:
		return invalid("description cannot exceed %d characters", maxProductDescription)
	case p.Price < 0:
		return invalid("price cannot be negative")
	case p.Price > model.MaxUnitPrice:
		return invalid("price cannot exceed %s", model.MaxUnitPrice)
	case !p.Category.Valid():
		return invalid("unknown category %q", p.Category)
	case p.Stock < 0 || p.Stock > model.MaxStock:
		return invalid("stock must be between 0 and %d", model.MaxStock)
	case p.Discount.Percentage < 0 || p.Discount.Percentage > 100:
		return invalid("discount percentage must be between 0 and 100")
	}
	for _, img := range p.Images {
		u, err := url.Parse(img)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return invalid("image %q is not a valid URL", img)
		}
	}
	return nil
}

func validateReview(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return invalid("rating must be between 1 and 5")
	}
	if utf8.RuneCountInString(comment) > maxReviewComment {
		return invalid("comment cannot exceed %d characters", maxReviewComment)
	}
	return nil
}

func validateProductFilter(f model.ProductFilter) error {
	if f.Category != "" && !f.Category.Valid() {
		return invalid("unknown category %q", f.Category)
	}
	if f.Sort != "" && !f.Sort.Valid() {
		return invalid("unsupported sort %q", f.Sort)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return invalid("minPrice exceeds maxPrice")
	}
	return nil
}
