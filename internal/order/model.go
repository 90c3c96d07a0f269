package order

import (
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusCancelled:
		return true
	}
	return false
}

// ProductSummary is the display view of a line item's product, joined at read time.
type ProductSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Price    float64   `json:"price"`
	Category string    `json:"category"`
}

type Item struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ProductID    uuid.UUID       `json:"productId" db:"product_id"`
	Quantity     int             `json:"quantity" db:"quantity"`
	PriceAtOrder float64         `json:"priceAtOrder" db:"price_at_order"`
	Product      *ProductSummary `json:"product,omitempty" db:"-"`
}

type Order struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"userId" db:"user_id"`
	Items           []Item    `json:"items" db:"-"`
	TotalAmount     float64   `json:"totalAmount" db:"total_amount"`
	Status          Status    `json:"status" db:"status"`
	ShippingAddress string    `json:"shippingAddress" db:"shipping_address"`
	OrderDate       time.Time `json:"orderDate" db:"order_date"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// ItemRequest is one requested line; the price is captured during placement.
type ItemRequest struct {
	ProductID uuid.UUID
	Quantity  int
}

type PlaceOrderInput struct {
	UserID          uuid.UUID
	Items           []ItemRequest
	ShippingAddress string
}
