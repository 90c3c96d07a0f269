package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahdiimanzadeh/storetrack/internal/db"
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Product, error)
	GetForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*Product, error)
	// AdjustStock applies delta only when the result stays non-negative.
	AdjustStock(ctx context.Context, ownerID, id uuid.UUID, delta int) (*Product, error)
	UpdateAttributes(ctx context.Context, p *Product) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ListByUser(ctx context.Context, ownerID uuid.UUID) ([]Product, error)
	Search(ctx context.Context, ownerID uuid.UUID, term string) ([]Product, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const productColumns = `id, user_id, name, manufacturer, description, price, category, stock, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate product ID: %w", err)
		}
		p.ID = id
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		p.ID,
		p.UserID,
		p.Name,
		p.Manufacturer,
		p.Description,
		p.Price,
		p.Category,
		p.Stock,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND user_id = $2`
	return r.getOne(ctx, query, id, ownerID)
}

func (r *postgresRepository) GetForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND user_id = $2 FOR UPDATE`
	return r.getOne(ctx, query, id, ownerID)
}

func (r *postgresRepository) getOne(ctx context.Context, query string, id, ownerID uuid.UUID) (*Product, error) {
	p, err := scanProduct(db.Conn(ctx, r.pool).QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}
	return p, nil
}

func (r *postgresRepository) AdjustStock(ctx context.Context, ownerID, id uuid.UUID, delta int) (*Product, error) {
	query := `
		UPDATE products
		SET stock = stock + $3::bigint, updated_at = $4
		WHERE id = $1 AND user_id = $2 AND stock + $3::bigint BETWEEN 0 AND $5
		RETURNING ` + productColumns

	p, err := scanProduct(db.Conn(ctx, r.pool).QueryRow(ctx, query, id, ownerID, delta, time.Now().UTC(), MaxQuantity))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("repository: failed to adjust stock for product %s: %w", id, err)
	}

	// No row matched: the product is absent or the bounds check refused it.
	current, getErr := r.GetByID(ctx, ownerID, id)
	if getErr != nil {
		return nil, getErr
	}
	if delta > 0 {
		return nil, fmt.Errorf("%w: %s has %d, adding %d", ErrStockLimit, current.Name, current.Stock, delta)
	}
	return nil, &InsufficientStockError{
		ProductID: current.ID,
		Name:      current.Name,
		Available: current.Stock,
		Requested: -delta,
	}
}

func (r *postgresRepository) UpdateAttributes(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $3, manufacturer = $4, description = $5, price = $6, category = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2
	`
	cmdTag, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		p.ID,
		p.UserID,
		p.Name,
		p.Manufacturer,
		p.Description,
		p.Price,
		p.Category,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	cmdTag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM products WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, ownerID uuid.UUID) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products for user id %s: %w", ownerID, err)
	}
	return scanProducts(rows)
}

func (r *postgresRepository) Search(ctx context.Context, ownerID uuid.UUID, term string) ([]Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE user_id = $1 AND name ILIKE '%' || $2 || '%' ESCAPE '\'
		ORDER BY name ASC, id ASC
	`
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, ownerID, escapeLike(term))
	if err != nil {
		return nil, fmt.Errorf("repository: failed to search products for user id %s: %w", ownerID, err)
	}
	return scanProducts(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside a LIKE pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Manufacturer,
		&p.Description,
		&p.Price,
		&p.Category,
		&p.Stock,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating products: %w", err)
	}

	return products, nil
}
