package model

import "time"

// OrderStatus describes fulfilment lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// Valid reports whether status is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus describes payment lifecycle, independent from fulfilment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
	PaymentStatusRefunded  PaymentStatus = "Refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusFailed:    {PaymentStatusPending, PaymentStatusCompleted},
	PaymentStatusCompleted: {PaymentStatusRefunded},
}

// Valid reports whether status is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentMethod is the customer's chosen way to pay.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "Credit Card"
	PaymentDebitCard  PaymentMethod = "Debit Card"
	PaymentPayPal     PaymentMethod = "PayPal"
)

// Valid reports whether method is accepted at checkout.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentPayPal:
		return true
	}
	return false
}

// ShippingAddress is the delivery destination; every field is required.
type ShippingAddress struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// OrderLine is an immutable purchase snapshot of one product.
type OrderLine struct {
	ProductID int64
	Name      string
	Quantity  int
	Price     Money
}

// Subtotal is price times quantity.
func (l OrderLine) Subtotal() Money {
	return l.Price.Times(l.Quantity)
}

// PaymentDetails records settlement of the order.
type PaymentDetails struct {
	TransactionID string
	PaidAt        *time.Time
}

// Order is a placed purchase with its fulfilment and payment state.
type Order struct {
	ID                  int64
	UserID              int64
	Lines               []OrderLine
	ShippingAddress     ShippingAddress
	PaymentMethod       PaymentMethod
	ShippingMethod      ShippingMethod
	Subtotal            Money
	ShippingCost        Money
	TotalAmount         Money
	Status              OrderStatus
	PaymentStatus       PaymentStatus
	Payment             PaymentDetails
	TrackingNumber      string
	EstimatedDeliveryAt *time.Time
	DeliveredAt         *time.Time
	Notes               string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CanBeCancelled reports whether order may still move to Cancelled.
func (o Order) CanBeCancelled() bool {
	return o.Status.CanTransitionTo(OrderStatusCancelled)
}

// SumLines returns the total of all line subtotals.
func SumLines(lines []OrderLine) Money {
	var total Money
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

// MaxLineQuantity bounds a single cart line so totals and stock arithmetic stay in range.
const MaxLineQuantity = 1000

// LineRequest is a requested product and quantity.
type LineRequest struct {
	ProductID int64
	Quantity  int
}

// PlaceOrderRequest is the checkout input.
type PlaceOrderRequest struct {
	UserID          int64
	Lines           []LineRequest
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	ShippingMethod  ShippingMethod
	Notes           string
}

// Quote is a priced cart without side effects.
type Quote struct {
	Lines        []OrderLine
	Subtotal     Money
	ShippingCost Money
	TotalAmount  Money
}

// StatusChange is a compare-and-set update of order status.
type StatusChange struct {
	From                OrderStatus
	To                  OrderStatus
	TrackingNumber      string
	EstimatedDeliveryAt *time.Time
	DeliveredAt         *time.Time
}

// PaymentChange is a compare-and-set update of payment status.
type PaymentChange struct {
	From          PaymentStatus
	To            PaymentStatus
	TransactionID string
	PaidAt        *time.Time
}
