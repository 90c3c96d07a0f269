package memstore

import (
	"context"

	"github.com/gofrs/uuid"

	"github.com/mahdiimanzadeh/storetrack/internal/order"
)

type orderRepo struct {
	s *Store
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.s.run(ctx, func(d *data) error {
		if o.ID == uuid.Nil {
			id, err := newID()
			if err != nil {
				return err
			}
			o.ID = id
		}
		for i := range o.Items {
			if o.Items[i].ID == uuid.Nil {
				id, err := newID()
				if err != nil {
					return err
				}
				o.Items[i].ID = id
			}
		}
		now := r.s.now()
		if o.OrderDate.IsZero() {
			o.OrderDate = now
		}
		o.CreatedAt = now
		o.UpdatedAt = now
		d.orders[o.ID] = record[order.Order]{seq: d.next(), val: copyOrder(*o)}
		return nil
	})
}

func (r *orderRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*order.Order, error) {
	var out *order.Order
	err := r.s.run(ctx, func(d *data) error {
		rec, ok := d.orders[id]
		if !ok || rec.val.UserID != ownerID {
			return order.ErrOrderNotFound
		}
		o := withSummaries(d, rec.val)
		out = &o
		return nil
	})
	return out, err
}

func (r *orderRepo) GetForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*order.Order, error) {
	return r.GetByID(ctx, ownerID, id)
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) error {
	return r.s.run(ctx, func(d *data) error {
		rec, ok := d.orders[id]
		if !ok {
			return order.ErrOrderNotFound
		}
		rec.val.Status = status
		rec.val.UpdatedAt = r.s.now()
		d.orders[id] = rec
		return nil
	})
}

func (r *orderRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.s.run(ctx, func(d *data) error {
		rec, ok := d.orders[id]
		if !ok || rec.val.UserID != ownerID {
			return order.ErrOrderNotFound
		}
		delete(d.orders, id)
		return nil
	})
}

func (r *orderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	var recs []record[order.Order]
	err := r.s.run(ctx, func(d *data) error {
		for _, rec := range d.orders {
			if rec.val.UserID == userID {
				rec.val = withSummaries(d, rec.val)
				recs = append(recs, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(recs, func(o order.Order) int64 { return o.OrderDate.UnixNano() })
	out := make([]order.Order, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.val)
	}
	return out, nil
}

// withSummaries returns a copy of o with each line's current product attached.
func withSummaries(d *data, o order.Order) order.Order {
	o = copyOrder(o)
	for i, item := range o.Items {
		if p, ok := d.products[item.ProductID]; ok {
			o.Items[i].Product = &order.ProductSummary{
				ID:       p.val.ID,
				Name:     p.val.Name,
				Price:    p.val.Price,
				Category: p.val.Category,
			}
		}
	}
	return o
}
