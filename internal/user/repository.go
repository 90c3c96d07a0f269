package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahdiimanzadeh/storetrack/internal/db"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("user with this email already exists")
)

type Repository interface {
	Create(ctx context.Context, u *User) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, u *User) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to generate user ID: %w", err)
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO users (id, first_name, last_name, email, password_hash, phone_number, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`
	_, err = db.Conn(ctx, r.pool).Exec(ctx, query,
		id,
		u.FirstName,
		u.LastName,
		strings.ToLower(u.Email),
		u.PasswordHash,
		u.PhoneNumber,
		u.ImageURL,
		now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return uuid.Nil, ErrEmailExists
		}
		return uuid.Nil, fmt.Errorf("repository: failed to insert user: %w", err)
	}

	u.CreatedAt = now
	u.UpdatedAt = now
	return id, nil
}

const userColumns = `id, first_name, last_name, email, password_hash, phone_number, image_url, created_at, updated_at`

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, strings.ToLower(email))
}

func (r *repository) getOne(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&u.PhoneNumber,
		&u.ImageURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user: %w", err)
	}
	return &u, nil
}
