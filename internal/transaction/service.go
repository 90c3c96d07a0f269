package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

const CreationDescription = "Initial product creation with 0 stock"

var (
	ErrValidation       = errors.New("invalid transaction")
	ErrInvalidDirection = errors.New("invalid transaction direction")
)

// AppendInput describes one ledger entry. Callers adjust stock themselves;
// the log only records what happened.
type AppendInput struct {
	UserID      uuid.UUID
	ProductID   uuid.UUID
	Direction   Direction
	Quantity    int
	UnitPrice   float64
	Description string
	OrderID     *uuid.UUID
}

type Service interface {
	Append(ctx context.Context, in AppendInput) (*Transaction, error)
	RecordCreation(ctx context.Context, userID, productID uuid.UUID, unitPrice float64) (*Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Transaction, error)
	ListByProduct(ctx context.Context, userID, productID uuid.UUID) ([]Transaction, error)
	DeleteByProduct(ctx context.Context, productID uuid.UUID) error
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Append(ctx context.Context, in AppendInput) (*Transaction, error) {
	if in.UserID == uuid.Nil || in.ProductID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id and product id are required", ErrValidation)
	}
	if !in.Direction.Valid() {
		return nil, fmt.Errorf("%w: %w: must be %q or %q, got %q", ErrValidation, ErrInvalidDirection, DirectionIn, DirectionOut, in.Direction)
	}
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1, got %d", ErrValidation, in.Quantity)
	}
	if in.Quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: quantity must be at most %d, got %d", ErrValidation, MaxQuantity, in.Quantity)
	}

	return s.create(ctx, &Transaction{
		UserID:      in.UserID,
		ProductID:   in.ProductID,
		Direction:   in.Direction,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Description: in.Description,
		OrderID:     in.OrderID,
	})
}

// RecordCreation writes the zero-quantity "in" entry that marks a new product.
// It is the only path allowed to store a quantity below 1.
func (s *service) RecordCreation(ctx context.Context, userID, productID uuid.UUID, unitPrice float64) (*Transaction, error) {
	return s.create(ctx, &Transaction{
		UserID:      userID,
		ProductID:   productID,
		Direction:   DirectionIn,
		Quantity:    0,
		UnitPrice:   unitPrice,
		Description: CreationDescription,
	})
}

func (s *service) create(ctx context.Context, t *Transaction) (*Transaction, error) {
	if err := s.repo.Create(ctx, t); err != nil {
		log.Error().Err(err).Stringer("product_id", t.ProductID).Stringer("direction", t.Direction).Msg("service: failed to append transaction")
		return nil, fmt.Errorf("service: failed to append transaction: %w", err)
	}

	log.Debug().
		Stringer("transaction_id", t.ID).
		Stringer("product_id", t.ProductID).
		Stringer("direction", t.Direction).
		Int("quantity", t.Quantity).
		Msg("service: transaction appended")

	return t, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Transaction, error) {
	transactions, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to list transactions")
		return nil, fmt.Errorf("service: failed to list transactions: %w", err)
	}
	return transactions, nil
}

func (s *service) ListByProduct(ctx context.Context, userID, productID uuid.UUID) ([]Transaction, error) {
	transactions, err := s.repo.ListByProduct(ctx, userID, productID)
	if err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to list product transactions")
		return nil, fmt.Errorf("service: failed to list product transactions: %w", err)
	}
	return transactions, nil
}

func (s *service) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	n, err := s.repo.DeleteByProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("service: failed to delete product transactions: %w", err)
	}
	log.Info().Stringer("product_id", productID).Int64("deleted", n).Msg("service: product transactions deleted")
	return nil
}

func (s *service) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	n, err := s.repo.DeleteByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("service: failed to delete order transactions: %w", err)
	}
	log.Info().Stringer("order_id", orderID).Int64("deleted", n).Msg("service: order transactions deleted")
	return nil
}
