package product

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("invalid product")

	// ErrStockLimit is a validation failure: the change would push stock past MaxQuantity.
	ErrStockLimit = fmt.Errorf("%w: stock limit exceeded", ErrValidation)
)

// InsufficientStockError reports how much was available when a decrement was refused.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.Name, e.Available, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d", e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
