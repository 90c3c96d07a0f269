package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mahdiimanzadeh/storetrack/internal/db"
	"github.com/mahdiimanzadeh/storetrack/internal/transaction"
)

const (
	ManualIncreaseDescription = "Manual stock increase"
	ManualDecreaseDescription = "Manual stock decrease"
)

// Adjustment is the result of one stock change: the product after the change
// and the ledger entry recording it.
type Adjustment struct {
	Product     *Product
	Transaction *transaction.Transaction
}

type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, attrs Attributes) (*Product, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*Product, error)
	AdjustStock(ctx context.Context, ownerID, id uuid.UUID, delta int, description string, orderID *uuid.UUID) (*Adjustment, error)
	UpdateAttributes(ctx context.Context, ownerID, id uuid.UUID, upd Update) (*Product, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID) ([]Product, error)
	Search(ctx context.Context, ownerID uuid.UUID, term string) ([]Product, error)
}

type service struct {
	repo   Repository
	ledger transaction.Service
	tx     db.TxManager
}

func NewService(repo Repository, ledger transaction.Service, tx db.TxManager) Service {
	return &service{
		repo:   repo,
		ledger: ledger,
		tx:     tx,
	}
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, attrs Attributes) (*Product, error) {
	p := &Product{
		UserID:       ownerID,
		Name:         strings.TrimSpace(attrs.Name),
		Manufacturer: strings.TrimSpace(attrs.Manufacturer),
		Description:  attrs.Description,
		Price:        attrs.Price,
		Category:     strings.TrimSpace(attrs.Category),
		Stock:        0,
	}
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}
		_, err := s.ledger.RecordCreation(ctx, p.UserID, p.ID, p.Price)
		return err
	})
	if err != nil {
		log.Error().Err(err).Stringer("user_id", ownerID).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", p.ID).Stringer("user_id", ownerID).Msg("service: product created")
	return p, nil
}

func (s *service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch product: %w", err)
	}
	return p, nil
}

// AdjustStock is the single path through which stock changes. It applies delta
// with a floor check and appends the matching ledger entry in the same
// storage transaction.
func (s *service) AdjustStock(ctx context.Context, ownerID, id uuid.UUID, delta int, description string, orderID *uuid.UUID) (*Adjustment, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: stock delta cannot be zero", ErrValidation)
	}
	if delta > MaxQuantity || delta < -MaxQuantity {
		return nil, fmt.Errorf("%w: stock delta %d is out of range", ErrValidation, delta)
	}

	direction := transaction.DirectionIn
	quantity := delta
	if delta < 0 {
		direction = transaction.DirectionOut
		quantity = -delta
	}

	var adj Adjustment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.AdjustStock(ctx, ownerID, id, delta)
		if err != nil {
			return err
		}
		entry, err := s.ledger.Append(ctx, transaction.AppendInput{
			UserID:      p.UserID,
			ProductID:   p.ID,
			Direction:   direction,
			Quantity:    quantity,
			UnitPrice:   p.Price,
			Description: description,
			OrderID:     orderID,
		})
		if err != nil {
			return err
		}
		adj = Adjustment{Product: p, Transaction: entry}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			log.Warn().Stringer("product_id", id).Int("delta", delta).Msg("service: stock adjustment for unknown product")
			return nil, err
		}
		if errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrValidation) {
			log.Warn().Err(err).Stringer("product_id", id).Int("delta", delta).Msg("service: stock adjustment refused")
			return nil, err
		}
		log.Error().Err(err).Stringer("product_id", id).Int("delta", delta).Msg("service: failed to adjust stock")
		return nil, fmt.Errorf("service: failed to adjust stock: %w", err)
	}

	log.Info().
		Stringer("product_id", id).
		Int("delta", delta).
		Int("stock", adj.Product.Stock).
		Msg("service: stock adjusted")

	return &adj, nil
}

func (s *service) UpdateAttributes(ctx context.Context, ownerID, id uuid.UUID, upd Update) (*Product, error) {
	if upd.Stock != nil && (*upd.Stock < 0 || *upd.Stock > MaxQuantity) {
		return nil, fmt.Errorf("%w: stock must be between 0 and %d", ErrValidation, MaxQuantity)
	}

	var updated *Product
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, ownerID, id)
		if err != nil {
			return err
		}

		upd.apply(current)
		if err := validate(current); err != nil {
			return err
		}
		if err := s.repo.UpdateAttributes(ctx, current); err != nil {
			return err
		}
		updated = current

		if upd.Stock == nil || *upd.Stock == current.Stock {
			return nil
		}

		delta := *upd.Stock - current.Stock
		description := ManualIncreaseDescription
		if delta < 0 {
			description = ManualDecreaseDescription
		}
		adj, err := s.AdjustStock(ctx, ownerID, id, delta, description, nil)
		if err != nil {
			return err
		}
		updated = adj.Product
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrValidation) || errors.Is(err, ErrInsufficientStock) {
			return nil, err
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to update product")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}

	return updated, nil
}

// Delete removes the product together with its whole ledger history.
func (s *service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, ownerID, id); err != nil {
			return err
		}
		return s.ledger.DeleteByProduct(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return err
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}

	log.Info().Stringer("product_id", id).Stringer("user_id", ownerID).Msg("service: product deleted")
	return nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID) ([]Product, error) {
	products, err := s.repo.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, nil
}

func (s *service) Search(ctx context.Context, ownerID uuid.UUID, term string) ([]Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx, ownerID)
	}
	products, err := s.repo.Search(ctx, ownerID, term)
	if err != nil {
		return nil, fmt.Errorf("service: failed to search products: %w", err)
	}
	return products, nil
}

func validate(p *Product) error {
	var missing []string
	if p.Name == "" {
		missing = append(missing, "name")
	}
	if p.Manufacturer == "" {
		missing = append(missing, "manufacturer")
	}
	if p.Category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must be non-negative, got %f", ErrValidation, p.Price)
	}
	return nil
}
