package product

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"github.com/mahdiimanzadeh/storetrack/internal/transaction"
)

const MaxQuantity = transaction.MaxQuantity

type Product struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Manufacturer string    `json:"manufacturer" db:"manufacturer"`
	Description  string    `json:"description" db:"description"`
	Price        float64   `json:"price" db:"price"`
	Category     string    `json:"category" db:"category"`
	Stock        int       `json:"stock" db:"stock"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Attributes are the catalog fields a caller may set on creation.
type Attributes struct {
	Name         string
	Manufacturer string
	Description  string
	Price        float64
	Category     string
}

// Update carries only the fields the caller sent. A non-nil Stock is applied
// as a ledger adjustment, never written directly.
type Update struct {
	Name         *string
	Manufacturer *string
	Description  *string
	Price        *float64
	Category     *string
	Stock        *int
}

func (u Update) apply(p *Product) {
	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.Manufacturer != nil {
		p.Manufacturer = strings.TrimSpace(*u.Manufacturer)
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Category != nil {
		p.Category = strings.TrimSpace(*u.Category)
	}
}
