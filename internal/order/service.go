package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mahdiimanzadeh/storetrack/internal/db"
	"github.com/mahdiimanzadeh/storetrack/internal/product"
	"github.com/mahdiimanzadeh/storetrack/internal/transaction"
)

// Cancellation is reachable from every non-cancelled status; cancelled has no exits.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusShipped:   true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusCancelled: true,
	},
	StatusCancelled: {},
}

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrValidation              = errors.New("invalid order")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

func SoldDescription(orderID uuid.UUID) string {
	return fmt.Sprintf("Sold as part of order %s", orderID)
}

func CancelledDescription(orderID uuid.UUID) string {
	return fmt.Sprintf("Stock returned due to cancelled order %s", orderID)
}

type Service interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Order, error)
	GetOrder(ctx context.Context, ownerID, orderID uuid.UUID) (*Order, error)
	SetStatus(ctx context.Context, ownerID, orderID uuid.UUID, newStatus Status) (*Order, error)
	DeleteOrder(ctx context.Context, ownerID, orderID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
}

type service struct {
	orderRepo Repository
	products  product.Service
	ledger    transaction.Service
	tx        db.TxManager
}

func NewService(orderRepo Repository, products product.Service, ledger transaction.Service, tx db.TxManager) Service {
	return &service{
		orderRepo: orderRepo,
		products:  products,
		ledger:    ledger,
		tx:        tx,
	}
}

// PlaceOrder decrements stock for every item and stores the order in one
// storage transaction. Any failing item leaves no stock change behind.
func (s *service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Order, error) {
	if in.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	if len(in.Items) == 0 {
		log.Warn().Stringer("user_id", in.UserID).Msg("service: attempt to create order with no items")
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	for _, item := range in.Items {
		if item.ProductID == uuid.Nil {
			return nil, fmt.Errorf("%w: product id in order item cannot be nil", ErrValidation)
		}
		if item.Quantity < 1 || item.Quantity > product.MaxQuantity {
			return nil, fmt.Errorf("%w: quantity for product %s must be between 1 and %d", ErrValidation, item.ProductID, product.MaxQuantity)
		}
	}

	orderID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order ID: %w", err)
	}

	o := &Order{
		ID:              orderID,
		UserID:          in.UserID,
		Status:          StatusPending,
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		Items:           make([]Item, 0, len(in.Items)),
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		total := 0.0
		for _, req := range in.Items {
			adj, err := s.products.AdjustStock(ctx, in.UserID, req.ProductID, -req.Quantity, SoldDescription(orderID), &orderID)
			if err != nil {
				return err
			}
			p := adj.Product
			o.Items = append(o.Items, Item{
				ProductID:    p.ID,
				Quantity:     req.Quantity,
				PriceAtOrder: p.Price,
				Product:      &ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price, Category: p.Category},
			})
			total += float64(req.Quantity) * p.Price
		}
		o.TotalAmount = total

		return s.orderRepo.Create(ctx, o)
	})
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) || errors.Is(err, product.ErrInsufficientStock) {
			log.Warn().Err(err).Stringer("user_id", in.UserID).Msg("service: order rejected")
			return nil, err
		}
		log.Error().Err(err).Stringer("user_id", in.UserID).Msg("service: failed to create order")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().
		Stringer("order_id", o.ID).
		Stringer("user_id", o.UserID).
		Float64("total_amount", o.TotalAmount).
		Msg("service: order created successfully")

	return o, nil
}

func (s *service) GetOrder(ctx context.Context, ownerID, orderID uuid.UUID) (*Order, error) {
	o, err := s.orderRepo.GetByID(ctx, ownerID, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", orderID).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

// SetStatus moves the order through the state machine. Entering cancelled
// returns every line's quantity to stock exactly once; re-applying the current
// status is a no-op.
func (s *service) SetStatus(ctx context.Context, ownerID, orderID uuid.UUID, newStatus Status) (*Order, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidStatus, newStatus)
	}

	var result *Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.orderRepo.GetForUpdate(ctx, ownerID, orderID)
		if err != nil {
			return err
		}
		result = current

		if current.Status == newStatus {
			log.Info().Stringer("order_id", orderID).Stringer("status", newStatus).Msg("service: order status is already the same, no update needed")
			return nil
		}

		if !allowedTransitions[current.Status][newStatus] {
			log.Warn().
				Stringer("order_id", current.ID).
				Stringer("current_status", current.Status).
				Stringer("new_status", newStatus).
				Msg("service: invalid status transition attempt")
			return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, current.Status, newStatus)
		}

		if newStatus == StatusCancelled {
			if err := s.restock(ctx, current); err != nil {
				return err
			}
		}

		if err := s.orderRepo.UpdateStatus(ctx, orderID, newStatus); err != nil {
			return err
		}

		log.Info().Stringer("order_id", orderID).Stringer("old_status", current.Status).Stringer("new_status", newStatus).Msg("service: order status updated successfully")
		current.Status = newStatus
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: order not found, cannot update status")
			return nil, ErrOrderNotFound
		}
		if errors.Is(err, ErrInvalidStatusTransition) {
			return nil, err
		}
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: failed to update order status")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	return result, nil
}

// restock reverses placement: one "in" entry per line, linked to the order.
// Lines whose product has since been deleted are skipped.
func (s *service) restock(ctx context.Context, o *Order) error {
	for _, item := range o.Items {
		_, err := s.products.AdjustStock(ctx, o.UserID, item.ProductID, item.Quantity, CancelledDescription(o.ID), &o.ID)
		if errors.Is(err, product.ErrProductNotFound) {
			log.Warn().Stringer("order_id", o.ID).Stringer("product_id", item.ProductID).Msg("service: product gone, stock for cancelled line not restored")
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteOrder purges the order and its ledger entries. Stock is not restored;
// cancel first to return it.
func (s *service) DeleteOrder(ctx context.Context, ownerID, orderID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.orderRepo.GetForUpdate(ctx, ownerID, orderID)
		if err != nil {
			return err
		}
		if current.Status != StatusCancelled {
			log.Warn().Stringer("order_id", orderID).Stringer("status", current.Status).Msg("service: deleting non-cancelled order, stock effect is kept")
		}
		if err := s.orderRepo.Delete(ctx, ownerID, orderID); err != nil {
			return err
		}
		return s.ledger.DeleteByOrder(ctx, orderID)
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to delete order")
		return fmt.Errorf("service: failed to delete order: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Msg("service: order deleted")
	return nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders in repository")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}
	return orders, nil
}
