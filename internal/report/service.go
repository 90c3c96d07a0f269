package report

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	LowStock(ctx context.Context, userID uuid.UUID, threshold int) ([]LowStockItem, error)
	LowStockAcrossOwners(ctx context.Context, threshold int) ([]LowStockItem, error)
	Sales(ctx context.Context, userID uuid.UUID, r DateRange) (*SalesReport, error)
	Purchases(ctx context.Context, userID uuid.UUID, r DateRange) (*PurchaseReport, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) LowStock(ctx context.Context, userID uuid.UUID, threshold int) ([]LowStockItem, error) {
	if threshold < 0 || threshold > MaxThreshold {
		return nil, fmt.Errorf("%w: threshold must be between 0 and %d", ErrValidation, MaxThreshold)
	}
	items, err := s.repo.LowStock(ctx, userID, threshold)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: low stock report failed")
		return nil, fmt.Errorf("service: low stock report: %w", err)
	}
	return items, nil
}

func (s *service) LowStockAcrossOwners(ctx context.Context, threshold int) ([]LowStockItem, error) {
	if threshold < 0 || threshold > MaxThreshold {
		return nil, fmt.Errorf("%w: threshold must be between 0 and %d", ErrValidation, MaxThreshold)
	}
	items, err := s.repo.LowStockAll(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("service: low stock scan: %w", err)
	}
	return items, nil
}

// Sales counts shipped orders only.
func (s *service) Sales(ctx context.Context, userID uuid.UUID, r DateRange) (*SalesReport, error) {
	sales, err := s.repo.ShippedOrders(ctx, userID, r)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: sales report failed")
		return nil, fmt.Errorf("service: sales report: %w", err)
	}

	rep := &SalesReport{Count: len(sales), Details: sales}
	for _, sale := range sales {
		rep.Total += sale.TotalAmount
	}
	return rep, nil
}

func (s *service) Purchases(ctx context.Context, userID uuid.UUID, r DateRange) (*PurchaseReport, error) {
	purchases, err := s.repo.InboundEntries(ctx, userID, r)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: purchase report failed")
		return nil, fmt.Errorf("service: purchase report: %w", err)
	}

	rep := &PurchaseReport{Count: len(purchases), Details: purchases}
	for _, p := range purchases {
		if p.CurrentPrice != nil {
			rep.Total += float64(p.Quantity) * *p.CurrentPrice
		}
		rep.SnapshotTotal += float64(p.Quantity) * p.UnitPrice
	}
	return rep, nil
}
