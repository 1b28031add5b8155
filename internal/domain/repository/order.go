package repository

import (
	"context"

	"github.com/polkiloo/healthmart/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error)
	// UpdateStatus applies change only while the stored status equals
	// change.From; ErrInvalidTransition otherwise.
	UpdateStatus(ctx context.Context, id int64, change model.StatusChange) (*model.Order, error)
	UpdatePayment(ctx context.Context, id int64, change model.PaymentChange) (*model.Order, error)
}
