package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahdiimanzadeh/storetrack/internal/db"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Order, error)
	// GetForUpdate locks the order row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, o *Order) error {
	if o.ID == uuid.Nil {
		genID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate order ID: %w", err)
		}
		o.ID = genID
	}
	now := time.Now().UTC()
	if o.OrderDate.IsZero() {
		o.OrderDate = now
	}
	o.CreatedAt = now
	o.UpdatedAt = now

	conn := db.Conn(ctx, r.pool)

	queryOrder := `
		INSERT INTO orders (id, user_id, status, total_amount, shipping_address, order_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := conn.Exec(ctx, queryOrder,
		o.ID,
		o.UserID,
		string(o.Status),
		o.TotalAmount,
		o.ShippingAddress,
		o.OrderDate,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (id, order_id, position, product_id, quantity, price_at_order)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i := range o.Items {
		item := &o.Items[i]
		if item.ID == uuid.Nil {
			itemID, genErr := uuid.NewV4()
			if genErr != nil {
				return fmt.Errorf("repository: failed to generate order item ID: %w", genErr)
			}
			item.ID = itemID
		}

		_, err = conn.Exec(ctx, queryItem, item.ID, o.ID, i, item.ProductID, item.Quantity, item.PriceAtOrder)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
		}
	}

	return nil
}

const orderColumns = `id, user_id, status, total_amount, shipping_address, order_date, created_at, updated_at`

func (r *postgresRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`
	return r.getOne(ctx, query, ownerID, id)
}

func (r *postgresRepository) GetForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2 FOR UPDATE`
	return r.getOne(ctx, query, ownerID, id)
}

func (r *postgresRepository) getOne(ctx context.Context, query string, ownerID, id uuid.UUID) (*Order, error) {
	conn := db.Conn(ctx, r.pool)

	o, err := scanOrder(conn.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	items, err := r.itemsFor(ctx, conn, []uuid.UUID{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	if o.Items == nil {
		o.Items = make([]Item, 0)
	}

	return o, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`
	cmdTag, err := db.Conn(ctx, r.pool).Exec(ctx, query, id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: failed to update status for order id %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	cmdTag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM orders WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete order id %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	conn := db.Conn(ctx, r.pool)

	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY order_date DESC, id DESC`
	rows, err := conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user id %s: %w", userID, err)
	}

	orders := make([]Order, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("repository: failed to scan order for user id %s: %w", userID, err)
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders for user id %s: %w", userID, err)
	}

	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.itemsFor(ctx, conn, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = make([]Item, 0)
		}
	}

	return orders, nil
}

// itemsFor loads line items for the given orders with their product summaries.
func (r *postgresRepository) itemsFor(ctx context.Context, conn db.Querier, orderIDs []uuid.UUID) (map[uuid.UUID][]Item, error) {
	ids := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT oi.order_id, oi.id, oi.product_id, oi.quantity, oi.price_at_order,
		       p.id, p.name, p.price, p.category
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY oi.order_id, oi.position
	`
	rows, err := conn.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]Item, len(orderIDs))
	for rows.Next() {
		var (
			orderID      uuid.UUID
			item         Item
			productID    *uuid.UUID
			productName  *string
			productPrice *float64
			productCat   *string
		)
		err := rows.Scan(
			&orderID,
			&item.ID,
			&item.ProductID,
			&item.Quantity,
			&item.PriceAtOrder,
			&productID,
			&productName,
			&productPrice,
			&productCat,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if productID != nil {
			item.Product = &ProductSummary{ID: *productID}
			if productName != nil {
				item.Product.Name = *productName
			}
			if productPrice != nil {
				item.Product.Price = *productPrice
			}
			if productCat != nil {
				item.Product.Category = *productCat
			}
		}
		items[orderID] = append(items[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	return items, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o      Order
		status string
	)
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&status,
		&o.TotalAmount,
		&o.ShippingAddress,
		&o.OrderDate,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	return &o, nil
}
