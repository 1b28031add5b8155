package handlers

import (
	"time"

	"github.com/polkiloo/healthmart/internal/domain/model"
	"github.com/polkiloo/healthmart/internal/server/http/dto"
)

func toUserResponse(u *model.User, token string) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		Phone:       u.Phone,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		Token:       token,
	}
}

func toProductResponse(p model.Product, now time.Time) dto.ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		FinalPrice:  p.EffectivePrice(now),
		Category:    string(p.Category),
		Subcategory: p.Subcategory,
		Brand:       p.Brand,
		Stock:       p.Stock,
		InStock:     p.InStock(),
		Images:      images,
		Discount:    dto.Discount{Percentage: p.Discount.Percentage, ValidUntil: p.Discount.ValidUntil},
		Ratings:     dto.Ratings{Average: p.Ratings.Average, Count: p.Ratings.Count},
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductResponses(products []model.Product, now time.Time) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p, now))
	}
	return out
}

func fromProductPatchRequest(req dto.ProductPatchRequest) model.ProductPatch {
	patch := model.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Subcategory: req.Subcategory,
		Brand:       req.Brand,
		Stock:       req.Stock,
		Images:      req.Images,
		IsActive:    req.IsActive,
	}
	if req.Category != nil {
		category := model.Category(*req.Category)
		patch.Category = &category
	}
	if req.Discount != nil {
		patch.Discount = &model.Discount{Percentage: req.Discount.Percentage, ValidUntil: req.Discount.ValidUntil}
	}
	return patch
}

func fromProductRequest(req dto.ProductRequest) model.Product {
	p := model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    model.Category(req.Category),
		Subcategory: req.Subcategory,
		Brand:       req.Brand,
		Stock:       req.Stock,
		Images:      req.Images,
		IsActive:    true,
	}
	if req.Discount != nil {
		p.Discount = model.Discount{Percentage: req.Discount.Percentage, ValidUntil: req.Discount.ValidUntil}
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	return p
}

func toLineResponses(lines []model.OrderLine) []dto.OrderLineResponse {
	out := make([]dto.OrderLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.OrderLineResponse{ProductID: l.ProductID, Name: l.Name, Quantity: l.Quantity, Price: l.Price})
	}
	return out
}

func toOrderResponse(o model.Order) dto.OrderResponse {
	a := o.ShippingAddress
	return dto.OrderResponse{
		ID:                    o.ID,
		UserID:                o.UserID,
		OrderItems:            toLineResponses(o.Lines),
		ShippingAddress:       dto.Address{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country},
		PaymentMethod:         string(o.PaymentMethod),
		ShippingMethod:        string(o.ShippingMethod),
		Subtotal:              o.Subtotal,
		ShippingCost:          o.ShippingCost,
		TotalAmount:           o.TotalAmount,
		Status:                string(o.Status),
		PaymentStatus:         string(o.PaymentStatus),
		PaymentDetails:        dto.PaymentDetails{TransactionID: o.Payment.TransactionID, PaidAt: o.Payment.PaidAt},
		TrackingNumber:        o.TrackingNumber,
		EstimatedDeliveryDate: o.EstimatedDeliveryAt,
		DeliveredAt:           o.DeliveredAt,
		Notes:                 o.Notes,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func toLineRequests(items []dto.LineRequest) []model.LineRequest {
	out := make([]model.LineRequest, 0, len(items))
	for _, it := range items {
		out = append(out, model.LineRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func toPagination(p model.Pagination) *dto.Pagination {
	out := &dto.Pagination{}
	if p.Next != nil {
		out.Next = &dto.PageRef{Page: p.Next.Page, Limit: p.Next.Limit}
	}
	if p.Prev != nil {
		out.Prev = &dto.PageRef{Page: p.Prev.Page, Limit: p.Prev.Limit}
	}
	return out
}
