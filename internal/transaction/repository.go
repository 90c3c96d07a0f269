package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahdiimanzadeh/storetrack/internal/db"
)

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Transaction, error)
	ListByProduct(ctx context.Context, userID, productID uuid.UUID) ([]Transaction, error)
	DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, t *Transaction) error {
	if t.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate transaction ID: %w", err)
		}
		t.ID = id
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO stock_transactions (id, user_id, product_id, direction, quantity, unit_price, description, order_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		t.ID,
		t.UserID,
		t.ProductID,
		string(t.Direction),
		t.Quantity,
		t.UnitPrice,
		t.Description,
		t.OrderID,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert transaction for product %s: %w", t.ProductID, err)
	}

	return nil
}

const selectWithProduct = `
	SELECT t.id, t.user_id, t.product_id, t.direction, t.quantity, t.unit_price, t.description, t.order_id, t.created_at,
	       p.id, p.name, p.category, p.price
	FROM stock_transactions t
	LEFT JOIN products p ON p.id = t.product_id
`

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Transaction, error) {
	query := selectWithProduct + `
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC, t.id DESC
	`
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query transactions for user id %s: %w", userID, err)
	}
	return scanTransactions(rows)
}

func (r *postgresRepository) ListByProduct(ctx context.Context, userID, productID uuid.UUID) ([]Transaction, error) {
	query := selectWithProduct + `
		WHERE t.user_id = $1 AND t.product_id = $2
		ORDER BY t.created_at DESC, t.id DESC
	`
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query transactions for product id %s: %w", productID, err)
	}
	return scanTransactions(rows)
}

func (r *postgresRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	cmdTag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM stock_transactions WHERE product_id = $1`, productID)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to delete transactions for product id %s: %w", productID, err)
	}
	return cmdTag.RowsAffected(), nil
}

func (r *postgresRepository) DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	cmdTag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM stock_transactions WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to delete transactions for order id %s: %w", orderID, err)
	}
	return cmdTag.RowsAffected(), nil
}

func scanTransactions(rows pgx.Rows) ([]Transaction, error) {
	defer rows.Close()

	transactions := make([]Transaction, 0)
	for rows.Next() {
		var (
			t            Transaction
			direction    string
			productID    *uuid.UUID
			productName  *string
			productCat   *string
			productPrice *float64
		)
		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.ProductID,
			&direction,
			&t.Quantity,
			&t.UnitPrice,
			&t.Description,
			&t.OrderID,
			&t.CreatedAt,
			&productID,
			&productName,
			&productCat,
			&productPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan transaction: %w", err)
		}
		t.Direction = Direction(direction)
		if productID != nil {
			t.Product = &ProductSummary{
				ID:       *productID,
				Name:     deref(productName),
				Category: deref(productCat),
				Price:    derefFloat(productPrice),
			}
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating transactions: %w", err)
	}

	return transactions, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
