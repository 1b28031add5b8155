package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/healthmart/internal/domain/errors"
	"github.com/polkiloo/healthmart/internal/domain/model"
)

const orderColumns = `id, user_id, street, city, state, zip_code, country, payment_method, shipping_method,
       subtotal, shipping_cost, total_amount, status, payment_status, transaction_id, paid_at,
       tracking_number, estimated_delivery_at, delivered_at, notes, created_at, updated_at`

func scanOrder(row scanner) (*model.Order, error) {
	var o model.Order
	a := &o.ShippingAddress
	err := row.Scan(
		&o.ID, &o.UserID, &a.Street, &a.City, &a.State, &a.ZipCode, &a.Country, &o.PaymentMethod, &o.ShippingMethod,
		&o.Subtotal, &o.ShippingCost, &o.TotalAmount, &o.Status, &o.PaymentStatus, &o.Payment.TransactionID, &o.Payment.PaidAt,
		&o.TrackingNumber, &o.EstimatedDeliveryAt, &o.DeliveredAt, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, order model.Order) (*model.Order, error) {
	const insertOrder = `INSERT INTO orders (user_id, street, city, state, zip_code, country, payment_method, shipping_method,
                             subtotal, shipping_cost, total_amount, status, payment_status, notes)
                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
                         RETURNING ` + orderColumns
	const insertLines = `INSERT INTO order_lines (order_id, position, product_id, name, quantity, price)
                         SELECT $1, l.position, l.product_id, l.name, l.quantity, l.price
                         FROM unnest($2::int[], $3::bigint[], $4::text[], $5::int[], $6::bigint[])
                              AS l(position, product_id, name, quantity, price)`

	for i, l := range order.Lines {
		if l.Quantity < 1 || l.Quantity > math.MaxInt32 {
			return nil, fmt.Errorf("%w: line %d quantity %d out of range", domainErrors.ErrInvalidRequest, i+1, l.Quantity)
		}
	}

	var created *model.Order
	err := r.storage.WithinTransaction(ctx, func(ctx context.Context) error {
		conn := r.storage.conn(ctx)
		a := order.ShippingAddress
		o, err := scanOrder(conn.QueryRow(ctx, insertOrder,
			order.UserID, a.Street, a.City, a.State, a.ZipCode, a.Country, order.PaymentMethod, order.ShippingMethod,
			order.Subtotal, order.ShippingCost, order.TotalAmount, order.Status, order.PaymentStatus, order.Notes,
		))
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		n := len(order.Lines)
		positions := make([]int32, n)
		productIDs := make([]int64, n)
		names := make([]string, n)
		quantities := make([]int32, n)
		prices := make([]int64, n)
		for i, l := range order.Lines {
			positions[i] = int32(i)
			productIDs[i] = l.ProductID
			names[i] = l.Name
			quantities[i] = int32(l.Quantity)
			prices[i] = int64(l.Price)
		}
		if _, err := conn.Exec(ctx, insertLines, o.ID, positions, productIDs, names, quantities, prices); err != nil {
			return fmt.Errorf("insert order lines: %w", err)
		}

		o.Lines = append([]model.OrderLine(nil), order.Lines...)
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	o, err := scanOrder(r.storage.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	orders := []model.Order{*o}
	if err := r.loadLines(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC, id DESC`
	orders, err := r.query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error) {
	var (
		conds []string
		args  []any
	)
	if filter.UserID > 0 {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		conds = append(conds, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.storage.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page.Limit == 0 {
		page = model.NewPage(page.Number, page.Limit)
	}
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset())

	orders, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, change model.StatusChange) (*model.Order, error) {
	const query = `UPDATE orders SET
                       status=$3,
                       tracking_number=COALESCE(NULLIF($4, ''), tracking_number),
                       estimated_delivery_at=COALESCE($5, estimated_delivery_at),
                       delivered_at=COALESCE($6, delivered_at),
                       updated_at=NOW()
                   WHERE id=$1 AND status=$2
                   RETURNING ` + orderColumns
	o, err := scanOrder(r.storage.conn(ctx).QueryRow(ctx, query,
		id, change.From, change.To, change.TrackingNumber, change.EstimatedDeliveryAt, change.DeliveredAt))
	if err != nil {
		return nil, r.casError(ctx, id, err, fmt.Sprintf("order %d is no longer %s", id, change.From))
	}
	return r.withLines(ctx, o)
}

func (r *orderRepository) UpdatePayment(ctx context.Context, id int64, change model.PaymentChange) (*model.Order, error) {
	const query = `UPDATE orders SET
                       payment_status=$3,
                       transaction_id=COALESCE(NULLIF($4, ''), transaction_id),
                       paid_at=COALESCE($5, paid_at),
                       updated_at=NOW()
                   WHERE id=$1 AND payment_status=$2
                   RETURNING ` + orderColumns
	o, err := scanOrder(r.storage.conn(ctx).QueryRow(ctx, query,
		id, change.From, change.To, change.TransactionID, change.PaidAt))
	if err != nil {
		return nil, r.casError(ctx, id, err, fmt.Sprintf("payment of order %d is no longer %s", id, change.From))
	}
	return r.withLines(ctx, o)
}

// casError tells a missing order apart from one whose state moved on.
func (r *orderRepository) casError(ctx context.Context, id int64, err error, conflict string) error {
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return err
	}
	var exists bool
	if err := r.storage.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domainErrors.ErrNotFound
	}
	return fmt.Errorf("%w: %s", domainErrors.ErrInvalidTransition, conflict)
}

func (r *orderRepository) withLines(ctx context.Context, o *model.Order) (*model.Order, error) {
	orders := []model.Order{*o}
	if err := r.loadLines(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *orderRepository) query(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.loadLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// loadLines fills Lines of every order with one query.
func (r *orderRepository) loadLines(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	const query = `SELECT order_id, product_id, name, quantity, price
                   FROM order_lines WHERE order_id = ANY($1)
                   ORDER BY order_id, position`
	rows, err := r.storage.conn(ctx).Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID int64
			line    model.OrderLine
		)
		if err := rows.Scan(&orderID, &line.ProductID, &line.Name, &line.Quantity, &line.Price); err != nil {
			return err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Lines = append(orders[i].Lines, line)
		}
	}
	return rows.Err()
}
