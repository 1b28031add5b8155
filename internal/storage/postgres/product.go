package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/healthmart/internal/domain/errors"
	"github.com/polkiloo/healthmart/internal/domain/model"
)

const productColumns = `id, name, description, price, category, subcategory, brand, stock, images,
       discount_percentage, discount_valid_until, rating_average, rating_count, is_active, created_at, updated_at`

var productOrder = map[model.ProductSort]string{
	model.SortNewest:     "created_at DESC, id DESC",
	model.SortOldest:     "created_at ASC, id ASC",
	model.SortPriceAsc:   "price ASC, id ASC",
	model.SortPriceDesc:  "price DESC, id DESC",
	model.SortNameAsc:    "name ASC, id ASC",
	model.SortNameDesc:   "name DESC, id DESC",
	model.SortRatingAsc:  "rating_average ASC, id ASC",
	model.SortRatingDesc: "rating_average DESC, id DESC",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func scanProduct(row scanner) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Subcategory, &p.Brand, &p.Stock, &p.Images,
		&p.Discount.Percentage, &p.Discount.ValidUntil, &p.Ratings.Average, &p.Ratings.Count, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	return scanProduct(r.storage.conn(ctx).QueryRow(ctx, query, id))
}

// productWhere renders filter as a WHERE clause with positional arguments.
func productWhere(filter model.ProductFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.ActiveOnly {
		conds = append(conds, "is_active")
	}
	if filter.InStock {
		conds = append(conds, "stock > 0")
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.Search != "" {
		add("name ILIKE $%d", "%"+likeEscaper.Replace(filter.Search)+"%")
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	where, args := productWhere(filter)
	conn := r.storage.conn(ctx)

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order, ok := productOrder[filter.Sort]
	if !ok {
		order = productOrder[model.SortNewest]
	}
	page := filter.Page
	if page.Limit == 0 {
		page = model.NewPage(page.Number, page.Limit)
	}
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, where, order, len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset())

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.storage.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	return total, err
}

func (r *productRepository) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	const query = `INSERT INTO products (name, description, price, category, subcategory, brand, stock, images,
                       discount_percentage, discount_valid_until, is_active)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
                   RETURNING ` + productColumns
	return scanProduct(r.storage.conn(ctx).QueryRow(ctx, query,
		p.Name, p.Description, p.Price, p.Category, p.Subcategory, p.Brand, p.Stock, images(p.Images),
		p.Discount.Percentage, p.Discount.ValidUntil, p.IsActive,
	))
}

func (r *productRepository) Update(ctx context.Context, p model.Product) (*model.Product, error) {
	const query = `UPDATE products SET
                       name=$2, description=$3, price=$4, category=$5, subcategory=$6, brand=$7, images=$8,
                       discount_percentage=$9, discount_valid_until=$10, is_active=$11, updated_at=NOW()
                   WHERE id=$1
                   RETURNING ` + productColumns
	return scanProduct(r.storage.conn(ctx).QueryRow(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Subcategory, p.Brand, images(p.Images),
		p.Discount.Percentage, p.Discount.ValidUntil, p.IsActive,
	))
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.storage.conn(ctx).Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *productRepository) SetStock(ctx context.Context, id int64, stock int) (*model.Product, error) {
	const query = `UPDATE products SET stock=$2, updated_at=NOW() WHERE id=$1 RETURNING ` + productColumns
	return scanProduct(r.storage.conn(ctx).QueryRow(ctx, query, id, stock))
}

func (r *productRepository) DecrementStock(ctx context.Context, id int64, quantity int) (int, error) {
	const query = `UPDATE products SET stock = stock - $2, updated_at = NOW()
                   WHERE id=$1 AND stock >= $2
                   RETURNING stock`
	var left int
	err := r.storage.conn(ctx).QueryRow(ctx, query, id, quantity).Scan(&left)
	if err == nil {
		return left, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, domainErrors.ErrNotFound
	}
	return 0, fmt.Errorf("%w: product %d", domainErrors.ErrInsufficientStock, id)
}

func (r *productRepository) IncrementStock(ctx context.Context, id int64, quantity int) (int, error) {
	const query = `UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id=$1 RETURNING stock`
	var left int
	err := r.storage.conn(ctx).QueryRow(ctx, query, id, quantity).Scan(&left)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrNotFound
		}
		return 0, err
	}
	return left, nil
}

func (r *productRepository) AddReview(ctx context.Context, review model.Review) (*model.Product, error) {
	const insert = `INSERT INTO reviews (product_id, user_id, rating, comment) VALUES ($1, $2, $3, $4)`
	const refresh = `UPDATE products SET rating_average = agg.average, rating_count = agg.total
                     FROM (SELECT COALESCE(AVG(rating), 0)::float8 AS average, COUNT(*)::int AS total
                           FROM reviews WHERE product_id=$1) AS agg
                     WHERE id=$1
                     RETURNING ` + productColumns

	var product *model.Product
	err := r.storage.WithinTransaction(ctx, func(ctx context.Context) error {
		conn := r.storage.conn(ctx)
		if _, err := conn.Exec(ctx, insert, review.ProductID, review.UserID, review.Rating, review.Comment); err != nil {
			switch {
			case hasCode(err, pgerrcode.UniqueViolation):
				return domainErrors.ErrAlreadyReviewed
			case hasCode(err, pgerrcode.ForeignKeyViolation):
				return domainErrors.ErrNotFound
			}
			return err
		}
		var err error
		product, err = scanProduct(conn.QueryRow(ctx, refresh, review.ProductID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepository) exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.storage.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}

// images keeps NOT NULL array columns non-null.
func images(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
