package transaction

import (
	"math"
	"time"

	"github.com/gofrs/uuid"
)

// MaxQuantity bounds stock levels and single movements; both are stored as INTEGER.
const MaxQuantity = math.MaxInt32

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

func (d Direction) String() string {
	return string(d)
}

func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Sign is +1 for stock entering and -1 for stock leaving.
func (d Direction) Sign() int {
	if d == DirectionOut {
		return -1
	}
	return 1
}

// ProductSummary is resolved at read time; nil when the product is gone.
type ProductSummary struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Name     string    `json:"name" db:"name"`
	Category string    `json:"category" db:"category"`
	Price    float64   `json:"price" db:"price"`
}

type Transaction struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"userId" db:"user_id"`
	ProductID   uuid.UUID       `json:"productId" db:"product_id"`
	Direction   Direction       `json:"direction" db:"direction"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   float64         `json:"unitPrice" db:"unit_price"` // product price when the entry was written
	Description string          `json:"description" db:"description"`
	OrderID     *uuid.UUID      `json:"orderId,omitempty" db:"order_id"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	Product     *ProductSummary `json:"product,omitempty" db:"-"`
}

// SignedQuantity is the entry's contribution to the product's stock.
func (t Transaction) SignedQuantity() int {
	return t.Direction.Sign() * t.Quantity
}
