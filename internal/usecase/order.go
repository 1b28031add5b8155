package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/healthmart/internal/domain/errors"
	"github.com/polkiloo/healthmart/internal/domain/model"
	"github.com/polkiloo/healthmart/internal/domain/repository"
)

// OrderUseCase serves order queries and payment bookkeeping.
type OrderUseCase struct {
	orders repository.OrderRepository
	now    func() time.Time
	newID  func() string
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders, now: time.Now, newID: uuid.NewString}
}

// Get returns the order when requester owns it or is an administrator.
func (u *OrderUseCase) Get(ctx context.Context, orderID int64, requester *model.User) (*model.Order, error) {
	if requester == nil {
		return nil, domainErrors.ErrUnauthorized
	}
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requester.ID && !requester.IsAdmin() {
		return nil, domainErrors.ErrForbidden
	}
	return order, nil
}

// ListByUser returns the user's orders, newest first.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// List returns a filtered page of all orders.
func (u *OrderUseCase) List(ctx context.Context, filter model.OrderFilter) (*model.OrderPage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("unknown order status %q", filter.Status)
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return nil, invalid("unknown payment status %q", filter.PaymentStatus)
	}
	filter.Page = model.NewPage(filter.Page.Number, filter.Page.Limit)

	items, total, err := u.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &model.OrderPage{Items: items, Total: total, Pagination: filter.Page.Paginate(total)}, nil
}

// UpdatePayment moves the payment status along its own lifecycle.
func (u *OrderUseCase) UpdatePayment(ctx context.Context, orderID int64, target model.PaymentStatus, transactionID string) (*model.Order, error) {
	if !target.Valid() {
		return nil, invalid("unknown payment status %q", target)
	}
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.PaymentStatus.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: payment %s to %s", domainErrors.ErrInvalidTransition, order.PaymentStatus, target)
	}

	change := model.PaymentChange{From: order.PaymentStatus, To: target, TransactionID: order.Payment.TransactionID}
	if target == model.PaymentStatusCompleted {
		if transactionID == "" {
			transactionID = u.newID()
		}
		now := u.now()
		change.TransactionID = transactionID
		change.PaidAt = &now
	}
	return u.orders.UpdatePayment(ctx, orderID, change)
}
