package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gofrs/uuid"

	"github.com/mahdiimanzadeh/storetrack/internal/product"
)

type productRepo struct {
	s *Store
}

func (r *productRepo) Create(ctx context.Context, p *product.Product) error {
	return r.s.run(ctx, func(d *data) error {
		if p.ID == uuid.Nil {
			id, err := newID()
			if err != nil {
				return err
			}
			p.ID = id
		}
		now := r.s.now()
		p.CreatedAt = now
		p.UpdatedAt = now
		d.products[p.ID] = record[product.Product]{seq: d.next(), val: *p}
		return nil
	})
}

func (r *productRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*product.Product, error) {
	var out *product.Product
	err := r.s.run(ctx, func(d *data) error {
		rec, ok := d.products[id]
		if !ok || rec.val.UserID != ownerID {
			return product.ErrProductNotFound
		}
		p := rec.val
		out = &p
		return nil
	})
	return out, err
}

func (r *productRepo) GetForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*product.Product, error) {
	return r.GetByID(ctx, ownerID, id)
}

func (r *productRepo) AdjustStock(ctx context.Context, ownerID, id uuid.UUID, delta int) (*product.Product, error) {
	var out *product.Product
	err := r.s.run(ctx, func(d *data) error {
		rec, ok := d.products[id]
		if !ok || rec.val.UserID != ownerID {
			return product.ErrProductNotFound
		}
		if rec.val.Stock+delta < 0 {
			return &product.InsufficientStockError{
				ProductID: id,
				Name:      rec.val.Name,
				Available: rec.val.Stock,
				Requested: -delta,
			}
		}
		if rec.val.Stock+delta > product.MaxQuantity {
			return fmt.Errorf("%w: %s has %d, adding %d", product.ErrStockLimit, rec.val.Name, rec.val.Stock, delta)
		}
		rec.val.Stock += delta
		rec.val.UpdatedAt = r.s.now()
		d.products[id] = rec
		p := rec.val
		out = &p
		return nil
	})
	return out, err
}

func (r *productRepo) UpdateAttributes(ctx context.Context, p *product.Product) error {
	return r.s.run(ctx, func(d *data) error {
		rec, ok := d.products[p.ID]
		if !ok || rec.val.UserID != p.UserID {
			return product.ErrProductNotFound
		}
		p.UpdatedAt = r.s.now()
		rec.val.Name = p.Name
		rec.val.Manufacturer = p.Manufacturer
		rec.val.Description = p.Description
		rec.val.Price = p.Price
		rec.val.Category = p.Category
		rec.val.UpdatedAt = p.UpdatedAt
		d.products[p.ID] = rec
		return nil
	})
}

func (r *productRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.s.run(ctx, func(d *data) error {
		rec, ok := d.products[id]
		if !ok || rec.val.UserID != ownerID {
			return product.ErrProductNotFound
		}
		delete(d.products, id)
		return nil
	})
}

func (r *productRepo) ListByUser(ctx context.Context, ownerID uuid.UUID) ([]product.Product, error) {
	return r.filter(ctx, ownerID, func(product.Product) bool { return true })
}

func (r *productRepo) Search(ctx context.Context, ownerID uuid.UUID, term string) ([]product.Product, error) {
	needle := strings.ToLower(term)
	out, err := r.filter(ctx, ownerID, func(p product.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// filter returns the owner's matching products, newest first.
func (r *productRepo) filter(ctx context.Context, ownerID uuid.UUID, keep func(product.Product) bool) ([]product.Product, error) {
	var recs []record[product.Product]
	err := r.s.run(ctx, func(d *data) error {
		for _, rec := range d.products {
			if rec.val.UserID == ownerID && keep(rec.val) {
				recs = append(recs, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })
	out := make([]product.Product, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.val)
	}
	return out, nil
}
