package report

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

const (
	DefaultLowStockThreshold = 10
	// MaxThreshold matches the INTEGER range of product stock.
	MaxThreshold = math.MaxInt32
)

var ErrValidation = errors.New("invalid report request")

// DateRange bounds are inclusive; a nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// ParseDateRange accepts RFC 3339 timestamps or YYYY-MM-DD dates. A bare end
// date covers that whole day.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange

	if s := strings.TrimSpace(start); s != "" {
		from, _, err := parseDate(s)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: startDate: %w", ErrValidation, err)
		}
		r.From = &from
	}

	if s := strings.TrimSpace(end); s != "" {
		to, dateOnly, err := parseDate(s)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: endDate: %w", ErrValidation, err)
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		r.To = &to
	}

	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return DateRange{}, fmt.Errorf("%w: endDate is before startDate", ErrValidation)
	}

	return r, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%q is neither RFC 3339 nor YYYY-MM-DD", s)
	}
	return t, true, nil
}

type LowStockItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Manufacturer string    `json:"manufacturer" db:"manufacturer"`
	Category     string    `json:"category" db:"category"`
	Price        float64   `json:"price" db:"price"`
	Stock        int       `json:"stock" db:"stock"`
}

type Sale struct {
	OrderID         uuid.UUID `json:"orderId" db:"id"`
	TotalAmount     float64   `json:"totalAmount" db:"total_amount"`
	ShippingAddress string    `json:"shippingAddress" db:"shipping_address"`
	OrderDate       time.Time `json:"orderDate" db:"order_date"`
	ItemCount       int       `json:"itemCount" db:"item_count"`
}

// Purchase is one inbound ledger entry. CurrentPrice is nil once the product is deleted.
type Purchase struct {
	TransactionID uuid.UUID `json:"transactionId" db:"id"`
	ProductID     uuid.UUID `json:"productId" db:"product_id"`
	ProductName   *string   `json:"productName" db:"product_name"`
	Quantity      int       `json:"quantity" db:"quantity"`
	UnitPrice     float64   `json:"unitPrice" db:"unit_price"`
	CurrentPrice  *float64  `json:"currentPrice" db:"current_price"`
	Description   string    `json:"description" db:"description"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

type SalesReport struct {
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
	Details []Sale  `json:"details"`
}

type PurchaseReport struct {
	// Total prices every entry at the product's current price.
	Total float64 `json:"total"`
	// SnapshotTotal prices every entry at the price recorded with it.
	SnapshotTotal float64    `json:"snapshotTotal"`
	Count         int        `json:"count"`
	Details       []Purchase `json:"details"`
}
