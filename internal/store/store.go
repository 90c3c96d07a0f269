package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/mahdiimanzadeh/storetrack/internal/db"
)

var ErrValidation = errors.New("invalid store")

type Store struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Category  string    `json:"category" db:"category"`
	Address   string    `json:"address" db:"address"`
	City      string    `json:"city" db:"city"`
	Image     string    `json:"image" db:"image"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type Repository interface {
	Create(ctx context.Context, s *Store) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Store, error)
}

type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, s Store) (*Store, error)
	ListByUser(ctx context.Context, ownerID uuid.UUID) ([]Store, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ownerID uuid.UUID, s Store) (*Store, error) {
	s.UserID = ownerID
	s.Name = strings.TrimSpace(s.Name)
	s.Category = strings.TrimSpace(s.Category)
	s.Address = strings.TrimSpace(s.Address)
	s.City = strings.TrimSpace(s.City)
	if ownerID == uuid.Nil || s.Name == "" || s.Category == "" || s.Address == "" || s.City == "" {
		return nil, fmt.Errorf("%w: name, category, address and city are required", ErrValidation)
	}

	if err := svc.repo.Create(ctx, &s); err != nil {
		log.Error().Err(err).Stringer("user_id", ownerID).Msg("service: failed to create store")
		return nil, fmt.Errorf("service: failed to create store: %w", err)
	}
	return &s, nil
}

func (svc *service) ListByUser(ctx context.Context, ownerID uuid.UUID) ([]Store, error) {
	stores, err := svc.repo.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list stores: %w", err)
	}
	return stores, nil
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, s *Store) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate store ID: %w", err)
	}
	s.ID = id
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt

	query := `
		INSERT INTO stores (id, user_id, name, category, address, city, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = db.Conn(ctx, r.pool).Exec(ctx, query, s.ID, s.UserID, s.Name, s.Category, s.Address, s.City, s.Image, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert store: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Store, error) {
	query := `
		SELECT id, user_id, name, category, address, city, image, created_at, updated_at
		FROM stores
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query stores for user id %s: %w", userID, err)
	}
	defer rows.Close()

	stores := make([]Store, 0)
	for rows.Next() {
		var s Store
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Category, &s.Address, &s.City, &s.Image, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan store: %w", err)
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating stores: %w", err)
	}
	return stores, nil
}
