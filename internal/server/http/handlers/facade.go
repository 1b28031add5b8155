package handlers

import (
	"context"

	"github.com/polkiloo/healthmart/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, name, email, password string) (*model.User, string, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, string, error)
	ParseToken(token string) (int64, error)
	CurrentUser(ctx context.Context, userID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int64, update model.ProfileUpdate) (*model.User, error)
	UpdatePassword(ctx context.Context, userID int64, current, next string) (string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) (*model.User, string, error)
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// CatalogFacade exposes browsing and product administration.
type CatalogFacade interface {
	Products(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error)
	Product(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, product model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch model.ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	SetStock(ctx context.Context, id int64, stock int) (*model.Product, error)
	AddReview(ctx context.Context, productID, userID int64, rating int, comment string) (*model.Product, error)
}

// OrderFacade encapsulates checkout and order operations exposed via HTTP.
type OrderFacade interface {
	Quote(ctx context.Context, lines []model.LineRequest, method model.ShippingMethod) (*model.Quote, error)
	PlaceOrder(ctx context.Context, req model.PlaceOrderRequest) (*model.Order, error)
	Order(ctx context.Context, orderID, requesterID int64) (*model.Order, error)
	MyOrders(ctx context.Context, userID int64) ([]model.Order, error)
	Orders(ctx context.Context, filter model.OrderFilter) (*model.OrderPage, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus, trackingNumber string) (*model.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus, transactionID string) (*model.Order, error)
}

// StoreFacade aggregates the full set of operations used across handlers.
type StoreFacade interface {
	AuthFacade
	CatalogFacade
	OrderFacade
}
