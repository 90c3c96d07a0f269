package report

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	LowStock(ctx context.Context, userID uuid.UUID, threshold int) ([]LowStockItem, error)
	LowStockAll(ctx context.Context, threshold int) ([]LowStockItem, error)
	ShippedOrders(ctx context.Context, userID uuid.UUID, r DateRange) ([]Sale, error)
	InboundEntries(ctx context.Context, userID uuid.UUID, r DateRange) ([]Purchase, error)
}

type sqlxRepository struct {
	db *sqlx.DB
}

// NewRepository shares the pgx pool through database/sql for read-only queries.
func NewRepository(pool *pgxpool.Pool) Repository {
	return NewSQLXRepository(sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"))
}

func NewSQLXRepository(db *sqlx.DB) Repository {
	return &sqlxRepository{db: db}
}

func (r *sqlxRepository) LowStock(ctx context.Context, userID uuid.UUID, threshold int) ([]LowStockItem, error) {
	query := `
		SELECT id, user_id, name, manufacturer, category, price, stock
		FROM products
		WHERE user_id = $1 AND stock <= $2
		ORDER BY stock ASC, name ASC
	`
	items := make([]LowStockItem, 0)
	if err := r.db.SelectContext(ctx, &items, query, userID, threshold); err != nil {
		return nil, fmt.Errorf("repository: failed to select low stock products: %w", err)
	}
	return items, nil
}

func (r *sqlxRepository) LowStockAll(ctx context.Context, threshold int) ([]LowStockItem, error) {
	query := `
		SELECT id, user_id, name, manufacturer, category, price, stock
		FROM products
		WHERE stock <= $1
		ORDER BY user_id, stock ASC, name ASC
	`
	items := make([]LowStockItem, 0)
	if err := r.db.SelectContext(ctx, &items, query, threshold); err != nil {
		return nil, fmt.Errorf("repository: failed to select low stock products: %w", err)
	}
	return items, nil
}

func (r *sqlxRepository) ShippedOrders(ctx context.Context, userID uuid.UUID, dr DateRange) ([]Sale, error) {
	query := `
		SELECT o.id, o.total_amount, o.shipping_address, o.order_date,
		       (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count
		FROM orders o
		WHERE o.user_id = $1
		  AND o.status = 'shipped'
		  AND ($2::timestamptz IS NULL OR o.order_date >= $2)
		  AND ($3::timestamptz IS NULL OR o.order_date <= $3)
		ORDER BY o.order_date DESC, o.id DESC
	`
	sales := make([]Sale, 0)
	if err := r.db.SelectContext(ctx, &sales, query, userID, dr.From, dr.To); err != nil {
		return nil, fmt.Errorf("repository: failed to select shipped orders: %w", err)
	}
	return sales, nil
}

func (r *sqlxRepository) InboundEntries(ctx context.Context, userID uuid.UUID, dr DateRange) ([]Purchase, error) {
	query := `
		SELECT t.id, t.product_id, p.name AS product_name, t.quantity, t.unit_price,
		       p.price AS current_price, t.description, t.created_at
		FROM stock_transactions t
		LEFT JOIN products p ON p.id = t.product_id
		WHERE t.user_id = $1
		  AND t.direction = 'in'
		  AND ($2::timestamptz IS NULL OR t.created_at >= $2)
		  AND ($3::timestamptz IS NULL OR t.created_at <= $3)
		ORDER BY t.created_at DESC, t.id DESC
	`
	purchases := make([]Purchase, 0)
	if err := r.db.SelectContext(ctx, &purchases, query, userID, dr.From, dr.To); err != nil {
		return nil, fmt.Errorf("repository: failed to select inbound transactions: %w", err)
	}
	return purchases, nil
}
