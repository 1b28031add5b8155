package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	domainErrors "github.com/polkiloo/healthmart/internal/domain/errors"
	"github.com/polkiloo/healthmart/internal/domain/model"
	"github.com/polkiloo/healthmart/internal/domain/repository"
)

const tracerName = "github.com/polkiloo/healthmart/internal/usecase"

// CheckoutSettings tunes the checkout workflow.
type CheckoutSettings struct {
	// LookupConcurrency bounds parallel product reads per order.
	LookupConcurrency int
}

// CheckoutUseCase prices carts, places orders and drives fulfilment status.
type CheckoutUseCase struct {
	products    repository.ProductRepository
	orders      repository.OrderRepository
	tx          repository.Transactor
	logger      *slog.Logger
	tracer      trace.Tracer
	lookupLimit int
	now         func() time.Time
	newID       func() string
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	tx repository.Transactor,
	logger *slog.Logger,
	settings CheckoutSettings,
) *CheckoutUseCase {
	limit := settings.LookupConcurrency
	if limit <= 0 {
		limit = 1
	}
	return &CheckoutUseCase{
		products:    products,
		orders:      orders,
		tx:          tx,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
		lookupLimit: limit,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

type reservation struct {
	productID int64
	quantity  int
}

// Quote prices lines with current catalog data without touching stock.
func (u *CheckoutUseCase) Quote(ctx context.Context, lines []model.LineRequest, method model.ShippingMethod) (*model.Quote, error) {
	ctx, span := u.tracer.Start(ctx, "checkout.Quote")
	defer span.End()

	if err := validateLines(lines); err != nil {
		return nil, err
	}
	if !method.Valid() {
		return nil, invalid("unsupported shipping method %q", method)
	}

	priced, _, err := u.priceLines(ctx, lines)
	if err != nil {
		return nil, recordErr(span, err)
	}

	subtotal := model.SumLines(priced)
	shipping := model.ShippingCost(method, subtotal)
	return &model.Quote{
		Lines:        priced,
		Subtotal:     subtotal,
		ShippingCost: shipping,
		TotalAmount:  subtotal + shipping,
	}, nil
}

// PlaceOrder prices the cart server side, reserves stock and persists the order.
func (u *CheckoutUseCase) PlaceOrder(ctx context.Context, req model.PlaceOrderRequest) (*model.Order, error) {
	ctx, span := u.tracer.Start(ctx, "checkout.PlaceOrder",
		trace.WithAttributes(attribute.Int64("user.id", req.UserID), attribute.Int("order.lines", len(req.Lines))))
	defer span.End()

	if err := validatePlaceOrder(req); err != nil {
		return nil, err
	}

	lines, products, err := u.priceLines(ctx, req.Lines)
	if err != nil {
		return nil, recordErr(span, err)
	}

	demand := aggregateDemand(req.Lines)
	for _, r := range demand {
		if p := products[r.productID]; p.Stock < r.quantity {
			return nil, fmt.Errorf("%w: %s has %d left", domainErrors.ErrInsufficientStock, p.Name, p.Stock)
		}
	}

	subtotal := model.SumLines(lines)
	shipping := model.ShippingCost(req.ShippingMethod, subtotal)
	order := model.Order{
		UserID:          req.UserID,
		Lines:           lines,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ShippingMethod:  req.ShippingMethod,
		Subtotal:        subtotal,
		ShippingCost:    shipping,
		TotalAmount:     subtotal + shipping,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		Notes:           req.Notes,
	}

	var created *model.Order
	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.reserve(ctx, demand); err != nil {
			return err
		}
		var err error
		created, err = u.orders.Create(ctx, order)
		return err
	})
	if err != nil {
		return nil, recordErr(span, err)
	}

	span.SetAttributes(attribute.Int64("order.id", created.ID))
	u.logger.InfoContext(ctx, "order placed",
		slog.Int64("order_id", created.ID),
		slog.Int64("user_id", created.UserID),
		slog.String("total", created.TotalAmount.String()),
	)
	return created, nil
}

// TransitionStatus moves an order along the fulfilment graph.
func (u *CheckoutUseCase) TransitionStatus(ctx context.Context, orderID int64, target model.OrderStatus, trackingNumber string) (*model.Order, error) {
	ctx, span := u.tracer.Start(ctx, "checkout.TransitionStatus",
		trace.WithAttributes(attribute.Int64("order.id", orderID), attribute.String("order.status", string(target))))
	defer span.End()

	if !target.Valid() {
		return nil, invalid("unknown order status %q", target)
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s to %s", domainErrors.ErrInvalidTransition, order.Status, target)
	}

	now := u.now()
	change := model.StatusChange{From: order.Status, To: target}
	switch target {
	case model.OrderStatusShipped:
		if trackingNumber == "" {
			trackingNumber = u.newID()
		}
		eta := now.Add(order.ShippingMethod.DeliveryWindow())
		change.TrackingNumber = trackingNumber
		change.EstimatedDeliveryAt = &eta
	case model.OrderStatusDelivered:
		change.DeliveredAt = &now
	}

	var updated *model.Order
	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = u.orders.UpdateStatus(ctx, orderID, change)
		if err != nil {
			return err
		}
		if target == model.OrderStatusCancelled {
			return u.restock(ctx, order.Lines)
		}
		return nil
	})
	if err != nil {
		return nil, recordErr(span, err)
	}

	u.logger.InfoContext(ctx, "order status changed",
		slog.Int64("order_id", orderID),
		slog.String("from", string(change.From)),
		slog.String("to", string(change.To)),
	)
	return updated, nil
}

// priceLines resolves every distinct product concurrently and snapshots the
// effective unit price for each requested line.
func (u *CheckoutUseCase) priceLines(ctx context.Context, lines []model.LineRequest) ([]model.OrderLine, map[int64]*model.Product, error) {
	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; !ok {
			seen[l.ProductID] = struct{}{}
			ids = append(ids, l.ProductID)
		}
	}

	found := make([]*model.Product, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.lookupLimit)
	for i, id := range ids {
		g.Go(func() error {
			p, err := u.products.GetByID(gctx, id)
			if err != nil {
				return fmt.Errorf("product %d: %w", id, err)
			}
			if !p.IsActive {
				return fmt.Errorf("%w: product %d is not available", domainErrors.ErrNotFound, id)
			}
			found[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	products := make(map[int64]*model.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}

	now := u.now()
	out := make([]model.OrderLine, 0, len(lines))
	for _, l := range lines {
		p := products[l.ProductID]
		out = append(out, model.OrderLine{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  l.Quantity,
			Price:     p.EffectivePrice(now),
		})
	}
	return out, products, nil
}

// reserve decrements stock in ascending product order. On failure the
// decrements already made are undone by the enclosing transaction's rollback.
func (u *CheckoutUseCase) reserve(ctx context.Context, demand []reservation) error {
	for _, r := range demand {
		if _, err := u.products.DecrementStock(ctx, r.productID, r.quantity); err != nil {
			return fmt.Errorf("product %d: %w", r.productID, err)
		}
	}
	return nil
}

func (u *CheckoutUseCase) restock(ctx context.Context, lines []model.OrderLine) error {
	requests := make([]model.LineRequest, 0, len(lines))
	for _, l := range lines {
		requests = append(requests, model.LineRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	for _, r := range aggregateDemand(requests) {
		_, err := u.products.IncrementStock(ctx, r.productID, r.quantity)
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.WarnContext(ctx, "restock skipped for removed product", slog.Int64("product_id", r.productID))
			continue
		}
		if err != nil {
			return fmt.Errorf("restock product %d: %w", r.productID, err)
		}
	}
	return nil
}

// aggregateDemand sums quantities per product, sorted by product id.
func aggregateDemand(lines []model.LineRequest) []reservation {
	totals := make(map[int64]int, len(lines))
	for _, l := range lines {
		totals[l.ProductID] += l.Quantity
	}
	out := make([]reservation, 0, len(totals))
	for id, qty := range totals {
		out = append(out, reservation{productID: id, quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].productID < out[j].productID })
	return out
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
