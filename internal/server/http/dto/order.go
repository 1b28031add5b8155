package dto

import (
	"time"

	"github.com/polkiloo/healthmart/internal/domain/model"
)

// LineRequest is one requested cart line; client prices are ignored.
type LineRequest struct {
	ProductID int64 `json:"product"`
	Quantity  int   `json:"quantity" binding:"min=1,max=1000"`
}

// CartLines is the cart as the storefront posts it under "products".
// "orderItems" is accepted as an alias.
type CartLines struct {
	Products   []LineRequest `json:"products" binding:"dive"`
	OrderItems []LineRequest `json:"orderItems" binding:"dive"`
}

// Lines returns the posted lines, preferring "products".
func (c CartLines) Lines() []LineRequest {
	if len(c.Products) > 0 {
		return c.Products
	}
	return c.OrderItems
}

// Address is a shipping destination.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// PlaceOrderRequest describes checkout payload.
type PlaceOrderRequest struct {
	CartLines
	ShippingAddress Address `json:"shippingAddress"`
	PaymentMethod   string  `json:"paymentMethod"`
	ShippingMethod  string  `json:"shippingMethod"`
	Notes           string  `json:"notes"`
}

// QuoteRequest prices a cart without placing it.
type QuoteRequest struct {
	CartLines
	ShippingMethod string `json:"shippingMethod"`
}

// StatusRequest moves an order through fulfilment.
type StatusRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"trackingNumber"`
}

// PaymentRequest records a payment outcome.
type PaymentRequest struct {
	Status        string `json:"paymentStatus" binding:"required"`
	TransactionID string `json:"transactionId"`
}

// OrderLineResponse is a purchase snapshot line.
type OrderLineResponse struct {
	ProductID int64       `json:"product"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	Price     model.Money `json:"price"`
}

// PaymentDetails records settlement.
type PaymentDetails struct {
	TransactionID string     `json:"transactionId,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

// OrderResponse is the public view of an order.
type OrderResponse struct {
	ID                    int64               `json:"_id"`
	UserID                int64               `json:"user"`
	OrderItems            []OrderLineResponse `json:"orderItems"`
	ShippingAddress       Address             `json:"shippingAddress"`
	PaymentMethod         string              `json:"paymentMethod"`
	ShippingMethod        string              `json:"shippingMethod"`
	Subtotal              model.Money         `json:"subtotal"`
	ShippingCost          model.Money         `json:"shippingCost"`
	TotalAmount           model.Money         `json:"totalAmount"`
	Status                string              `json:"status"`
	PaymentStatus         string              `json:"paymentStatus"`
	PaymentDetails        PaymentDetails      `json:"paymentDetails"`
	TrackingNumber        string              `json:"trackingNumber,omitempty"`
	EstimatedDeliveryDate *time.Time          `json:"estimatedDeliveryDate,omitempty"`
	DeliveredAt           *time.Time          `json:"deliveredAt,omitempty"`
	Notes                 string              `json:"notes,omitempty"`
	CreatedAt             time.Time           `json:"createdAt"`
	UpdatedAt             time.Time           `json:"updatedAt"`
}

// QuoteResponse is a priced cart.
type QuoteResponse struct {
	OrderItems   []OrderLineResponse `json:"orderItems"`
	Subtotal     model.Money         `json:"subtotal"`
	ShippingCost model.Money         `json:"shippingCost"`
	TotalAmount  model.Money         `json:"totalAmount"`
}
