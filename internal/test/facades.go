package test

import (
	"context"
	"time"

	domainErrors "github.com/polkiloo/healthmart/internal/domain/errors"
	"github.com/polkiloo/healthmart/internal/domain/model"
)

// AuthFacadeStub provides controllable behaviour for auth endpoints.
type AuthFacadeStub struct {
	RegisterFn       func(context.Context, string, string, string) (*model.User, string, error)
	AuthenticateFn   func(context.Context, string, string) (*model.User, string, error)
	ParseFn          func(string) (int64, error)
	CurrentUserFn    func(context.Context, int64) (*model.User, error)
	UpdateProfileFn  func(context.Context, int64, model.ProfileUpdate) (*model.User, error)
	UpdatePasswordFn func(context.Context, int64, string, string) (string, error)
	ForgotFn         func(context.Context, string) error
	ResetFn          func(context.Context, string, string) (*model.User, string, error)
	IsAdminFn        func(context.Context, int64) (bool, error)
}

// Register returns a customer account with a fixed token.
func (s AuthFacadeStub) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, name, email, password)
	}
	return &model.User{ID: 1, Name: name, Email: email, Role: model.RoleCustomer}, "token", nil
}

// Authenticate returns a customer account with a fixed token.
func (s AuthFacadeStub) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, email, password)
	}
	return &model.User{ID: 1, Email: email, Role: model.RoleCustomer}, "token", nil
}

// ParseToken resolves every token to user 1 unless overridden.
func (s AuthFacadeStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

// CurrentUser returns a stored profile for the id.
func (s AuthFacadeStub) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	if s.CurrentUserFn != nil {
		return s.CurrentUserFn(ctx, userID)
	}
	return &model.User{ID: userID, Name: "user", Email: "user@example.com", Role: model.RoleCustomer}, nil
}

// UpdateProfile echoes the update onto a default profile.
func (s AuthFacadeStub) UpdateProfile(ctx context.Context, userID int64, update model.ProfileUpdate) (*model.User, error) {
	if s.UpdateProfileFn != nil {
		return s.UpdateProfileFn(ctx, userID, update)
	}
	user := &model.User{ID: userID, Name: "user", Email: "user@example.com", Role: model.RoleCustomer}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	return user, nil
}

// UpdatePassword returns a fresh token.
func (s AuthFacadeStub) UpdatePassword(ctx context.Context, userID int64, current, next string) (string, error) {
	if s.UpdatePasswordFn != nil {
		return s.UpdatePasswordFn(ctx, userID, current, next)
	}
	return "token", nil
}

// ForgotPassword succeeds unless overridden.
func (s AuthFacadeStub) ForgotPassword(ctx context.Context, email string) error {
	if s.ForgotFn != nil {
		return s.ForgotFn(ctx, email)
	}
	return nil
}

// ResetPassword returns user 1 with a fresh token.
func (s AuthFacadeStub) ResetPassword(ctx context.Context, token, password string) (*model.User, string, error) {
	if s.ResetFn != nil {
		return s.ResetFn(ctx, token, password)
	}
	return &model.User{ID: 1, Role: model.RoleCustomer}, "token", nil
}

// IsAdmin reports false unless overridden.
func (s AuthFacadeStub) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	if s.IsAdminFn != nil {
		return s.IsAdminFn(ctx, userID)
	}
	return false, nil
}

// CatalogFacadeStub simulates catalog operations.
type CatalogFacadeStub struct {
	ProductsFn  func(context.Context, model.ProductFilter) (*model.ProductPage, error)
	ProductFn   func(context.Context, int64) (*model.Product, error)
	CreateFn    func(context.Context, model.Product) (*model.Product, error)
	UpdateFn    func(context.Context, int64, model.ProductPatch) (*model.Product, error)
	DeleteFn    func(context.Context, int64) error
	SetStockFn  func(context.Context, int64, int) (*model.Product, error)
	AddReviewFn func(context.Context, int64, int64, int, string) (*model.Product, error)
}

// Products returns a single-item page.
func (s CatalogFacadeStub) Products(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	if s.ProductsFn != nil {
		return s.ProductsFn(ctx, filter)
	}
	return &model.ProductPage{Items: []model.Product{sampleProduct(1)}, Total: 1}, nil
}

// Product returns a sample product with the requested id.
func (s CatalogFacadeStub) Product(ctx context.Context, id int64) (*model.Product, error) {
	if s.ProductFn != nil {
		return s.ProductFn(ctx, id)
	}
	p := sampleProduct(id)
	return &p, nil
}

// CreateProduct assigns id 1 to the product.
func (s CatalogFacadeStub) CreateProduct(ctx context.Context, product model.Product) (*model.Product, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, product)
	}
	product.ID = 1
	return &product, nil
}

// UpdateProduct applies the patch to a sample product.
func (s CatalogFacadeStub) UpdateProduct(ctx context.Context, id int64, patch model.ProductPatch) (*model.Product, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, id, patch)
	}
	product := patch.Apply(sampleProduct(id))
	if patch.Stock != nil {
		product.Stock = *patch.Stock
	}
	return &product, nil
}

// DeleteProduct succeeds unless overridden.
func (s CatalogFacadeStub) DeleteProduct(ctx context.Context, id int64) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, id)
	}
	return nil
}

// SetStock returns a sample product holding the stock.
func (s CatalogFacadeStub) SetStock(ctx context.Context, id int64, stock int) (*model.Product, error) {
	if s.SetStockFn != nil {
		return s.SetStockFn(ctx, id, stock)
	}
	p := sampleProduct(id)
	p.Stock = stock
	return &p, nil
}

// AddReview returns a sample product with one rating.
func (s CatalogFacadeStub) AddReview(ctx context.Context, productID, userID int64, rating int, comment string) (*model.Product, error) {
	if s.AddReviewFn != nil {
		return s.AddReviewFn(ctx, productID, userID, rating, comment)
	}
	p := sampleProduct(productID)
	p.Ratings = model.Ratings{Average: float64(rating), Count: 1}
	return &p, nil
}

// OrderFacadeStub simulates checkout and order operations.
type OrderFacadeStub struct {
	QuoteFn         func(context.Context, []model.LineRequest, model.ShippingMethod) (*model.Quote, error)
	PlaceFn         func(context.Context, model.PlaceOrderRequest) (*model.Order, error)
	OrderFn         func(context.Context, int64, int64) (*model.Order, error)
	MyOrdersFn      func(context.Context, int64) ([]model.Order, error)
	OrdersFn        func(context.Context, model.OrderFilter) (*model.OrderPage, error)
	UpdateStatusFn  func(context.Context, int64, model.OrderStatus, string) (*model.Order, error)
	UpdatePaymentFn func(context.Context, int64, model.PaymentStatus, string) (*model.Order, error)
}

// Quote prices every line at 10.00 with free shipping.
func (s OrderFacadeStub) Quote(ctx context.Context, lines []model.LineRequest, method model.ShippingMethod) (*model.Quote, error) {
	if s.QuoteFn != nil {
		return s.QuoteFn(ctx, lines, method)
	}
	q := &model.Quote{}
	for _, l := range lines {
		line := model.OrderLine{ProductID: l.ProductID, Name: "item", Quantity: l.Quantity, Price: 1000}
		q.Lines = append(q.Lines, line)
	}
	q.Subtotal = model.SumLines(q.Lines)
	q.TotalAmount = q.Subtotal
	return q, nil
}

// PlaceOrder returns a pending order owned by the requester.
func (s OrderFacadeStub) PlaceOrder(ctx context.Context, req model.PlaceOrderRequest) (*model.Order, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, req)
	}
	order := sampleOrder(1, req.UserID)
	order.ShippingMethod = req.ShippingMethod
	order.PaymentMethod = req.PaymentMethod
	return &order, nil
}

// Order returns an order owned by the requester.
func (s OrderFacadeStub) Order(ctx context.Context, orderID, requesterID int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, orderID, requesterID)
	}
	order := sampleOrder(orderID, requesterID)
	return &order, nil
}

// MyOrders returns a single order for the user.
func (s OrderFacadeStub) MyOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.MyOrdersFn != nil {
		return s.MyOrdersFn(ctx, userID)
	}
	return []model.Order{sampleOrder(1, userID)}, nil
}

// Orders returns a single-order page.
func (s OrderFacadeStub) Orders(ctx context.Context, filter model.OrderFilter) (*model.OrderPage, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, filter)
	}
	return &model.OrderPage{Items: []model.Order{sampleOrder(1, 1)}, Total: 1}, nil
}

// UpdateOrderStatus applies the status to a sample order.
func (s OrderFacadeStub) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus, trackingNumber string) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, orderID, status, trackingNumber)
	}
	order := sampleOrder(orderID, 1)
	order.Status = status
	order.TrackingNumber = trackingNumber
	return &order, nil
}

// UpdatePaymentStatus applies the payment status to a sample order.
func (s OrderFacadeStub) UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus, transactionID string) (*model.Order, error) {
	if s.UpdatePaymentFn != nil {
		return s.UpdatePaymentFn(ctx, orderID, status, transactionID)
	}
	order := sampleOrder(orderID, 1)
	order.PaymentStatus = status
	order.Payment.TransactionID = transactionID
	return &order, nil
}

// StoreFacadeStub bundles auth, catalog and order stubs.
type StoreFacadeStub struct {
	AuthFacadeStub
	CatalogFacadeStub
	OrderFacadeStub
}

// HealthCheckerStub reports configured readiness.
type HealthCheckerStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s HealthCheckerStub) HealthCheck(context.Context) error {
	return s.Err
}

// AdminOnly makes IsAdmin succeed only for the given user id.
func AdminOnly(adminID int64) func(context.Context, int64) (bool, error) {
	return func(_ context.Context, userID int64) (bool, error) {
		if userID <= 0 {
			return false, domainErrors.ErrNotFound
		}
		return userID == adminID, nil
	}
}

func sampleProduct(id int64) model.Product {
	return model.Product{
		ID:        id,
		Name:      "Vitamin C",
		Price:     1999,
		Category:  model.CategoryHealthSupplements,
		Stock:     5,
		IsActive:  true,
		CreatedAt: time.Unix(0, 0).UTC(),
		UpdatedAt: time.Unix(0, 0).UTC(),
	}
}

func sampleOrder(id, userID int64) model.Order {
	return model.Order{
		ID:     id,
		UserID: userID,
		Lines: []model.OrderLine{
			{ProductID: 1, Name: "Vitamin C", Quantity: 2, Price: 1999},
		},
		PaymentMethod:  model.PaymentCreditCard,
		ShippingMethod: model.ShippingStandard,
		Subtotal:       3998,
		ShippingCost:   1000,
		TotalAmount:    4998,
		Status:         model.OrderStatusPending,
		PaymentStatus:  model.PaymentStatusPending,
		CreatedAt:      time.Unix(0, 0).UTC(),
		UpdatedAt:      time.Unix(0, 0).UTC(),
	}
}
