package memstore

import (
	"context"
	"sort"

	"github.com/gofrs/uuid"

	"github.com/mahdiimanzadeh/storetrack/internal/transaction"
)

type transactionRepo struct {
	s *Store
}

func (r *transactionRepo) Create(ctx context.Context, t *transaction.Transaction) error {
	return r.s.run(ctx, func(d *data) error {
		if t.ID == uuid.Nil {
			id, err := newID()
			if err != nil {
				return err
			}
			t.ID = id
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = r.s.now()
		}
		stored := *t
		stored.Product = nil
		d.transactions[t.ID] = record[transaction.Transaction]{seq: d.next(), val: stored}
		return nil
	})
}

func (r *transactionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]transaction.Transaction, error) {
	return r.list(ctx, func(t transaction.Transaction) bool { return t.UserID == userID })
}

func (r *transactionRepo) ListByProduct(ctx context.Context, userID, productID uuid.UUID) ([]transaction.Transaction, error) {
	return r.list(ctx, func(t transaction.Transaction) bool {
		return t.UserID == userID && t.ProductID == productID
	})
}

func (r *transactionRepo) DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	return r.deleteWhere(ctx, func(t transaction.Transaction) bool { return t.ProductID == productID })
}

func (r *transactionRepo) DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	return r.deleteWhere(ctx, func(t transaction.Transaction) bool {
		return t.OrderID != nil && *t.OrderID == orderID
	})
}

func (r *transactionRepo) deleteWhere(ctx context.Context, match func(transaction.Transaction) bool) (int64, error) {
	var n int64
	err := r.s.run(ctx, func(d *data) error {
		for id, rec := range d.transactions {
			if match(rec.val) {
				delete(d.transactions, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

// list returns matching entries newest first with the product summary joined.
func (r *transactionRepo) list(ctx context.Context, keep func(transaction.Transaction) bool) ([]transaction.Transaction, error) {
	var recs []record[transaction.Transaction]
	err := r.s.run(ctx, func(d *data) error {
		for _, rec := range d.transactions {
			if !keep(rec.val) {
				continue
			}
			if p, ok := d.products[rec.val.ProductID]; ok {
				rec.val.Product = &transaction.ProductSummary{
					ID:       p.val.ID,
					Name:     p.val.Name,
					Category: p.val.Category,
					Price:    p.val.Price,
				}
			}
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(recs, func(t transaction.Transaction) int64 { return t.CreatedAt.UnixNano() })
	out := make([]transaction.Transaction, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.val)
	}
	return out, nil
}

func sortNewestFirst[T any](recs []record[T], at func(T) int64) {
	sort.Slice(recs, func(i, j int) bool {
		ti, tj := at(recs[i].val), at(recs[j].val)
		if ti != tj {
			return ti > tj
		}
		return recs[i].seq > recs[j].seq
	})
}
