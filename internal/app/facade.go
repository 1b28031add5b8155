package app

import (
	"context"

	"github.com/polkiloo/healthmart/internal/domain/model"
	"github.com/polkiloo/healthmart/internal/usecase"
)

// StoreFacade adapts use cases to the operations exposed over HTTP.
type StoreFacade struct {
	auth     *usecase.AuthUseCase
	catalog  *usecase.CatalogUseCase
	checkout *usecase.CheckoutUseCase
	orders   *usecase.OrderUseCase
}

func NewStoreFacade(auth *usecase.AuthUseCase, catalog *usecase.CatalogUseCase, checkout *usecase.CheckoutUseCase, orders *usecase.OrderUseCase) *StoreFacade {
	return &StoreFacade{auth: auth, catalog: catalog, checkout: checkout, orders: orders}
}

func (f *StoreFacade) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	return f.auth.Register(ctx, name, email, password)
}

func (f *StoreFacade) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	return f.auth.Authenticate(ctx, email, password)
}

func (f *StoreFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *StoreFacade) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	return f.auth.GetByID(ctx, userID)
}

func (f *StoreFacade) UpdateProfile(ctx context.Context, userID int64, update model.ProfileUpdate) (*model.User, error) {
	return f.auth.UpdateProfile(ctx, userID, update)
}

func (f *StoreFacade) UpdatePassword(ctx context.Context, userID int64, current, next string) (string, error) {
	return f.auth.UpdatePassword(ctx, userID, current, next)
}

func (f *StoreFacade) ForgotPassword(ctx context.Context, email string) error {
	return f.auth.ForgotPassword(ctx, email)
}

func (f *StoreFacade) ResetPassword(ctx context.Context, token, password string) (*model.User, string, error) {
	return f.auth.ResetPassword(ctx, token, password)
}

// IsAdmin looks the role up on every call so demotions apply to live tokens.
func (f *StoreFacade) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := f.auth.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

func (f *StoreFacade) Products(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	return f.catalog.List(ctx, filter)
}

func (f *StoreFacade) Product(ctx context.Context, id int64) (*model.Product, error) {
	return f.catalog.Get(ctx, id)
}

func (f *StoreFacade) CreateProduct(ctx context.Context, product model.Product) (*model.Product, error) {
	return f.catalog.Create(ctx, product)
}

func (f *StoreFacade) UpdateProduct(ctx context.Context, id int64, patch model.ProductPatch) (*model.Product, error) {
	return f.catalog.Update(ctx, id, patch)
}

func (f *StoreFacade) DeleteProduct(ctx context.Context, id int64) error {
	return f.catalog.Delete(ctx, id)
}

func (f *StoreFacade) SetStock(ctx context.Context, id int64, stock int) (*model.Product, error) {
	return f.catalog.SetStock(ctx, id, stock)
}

func (f *StoreFacade) AddReview(ctx context.Context, productID, userID int64, rating int, comment string) (*model.Product, error) {
	return f.catalog.AddReview(ctx, productID, userID, rating, comment)
}

func (f *StoreFacade) Quote(ctx context.Context, lines []model.LineRequest, method model.ShippingMethod) (*model.Quote, error) {
	return f.checkout.Quote(ctx, lines, method)
}

func (f *StoreFacade) PlaceOrder(ctx context.Context, req model.PlaceOrderRequest) (*model.Order, error) {
	return f.checkout.PlaceOrder(ctx, req)
}

func (f *StoreFacade) Order(ctx context.Context, orderID, requesterID int64) (*model.Order, error) {
	requester, err := f.auth.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return f.orders.Get(ctx, orderID, requester)
}

func (f *StoreFacade) MyOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID)
}

func (f *StoreFacade) Orders(ctx context.Context, filter model.OrderFilter) (*model.OrderPage, error) {
	return f.orders.List(ctx, filter)
}

func (f *StoreFacade) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus, trackingNumber string) (*model.Order, error) {
	return f.checkout.TransitionStatus(ctx, orderID, status, trackingNumber)
}

func (f *StoreFacade) UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus, transactionID string) (*model.Order, error) {
	return f.orders.UpdatePayment(ctx, orderID, status, transactionID)
}
