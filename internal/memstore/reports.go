package memstore

import (
	"context"
	"sort"

	"github.com/gofrs/uuid"

	"github.com/mahdiimanzadeh/storetrack/internal/order"
	"github.com/mahdiimanzadeh/storetrack/internal/product"
	"github.com/mahdiimanzadeh/storetrack/internal/report"
	"github.com/mahdiimanzadeh/storetrack/internal/transaction"
)

type reportRepo struct {
	s *Store
}

func (r *reportRepo) LowStock(ctx context.Context, userID uuid.UUID, threshold int) ([]report.LowStockItem, error) {
	items, err := r.lowStock(ctx, threshold, func(p product.Product) bool { return p.UserID == userID })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Stock != items[j].Stock {
			return items[i].Stock < items[j].Stock
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (r *reportRepo) LowStockAll(ctx context.Context, threshold int) ([]report.LowStockItem, error) {
	items, err := r.lowStock(ctx, threshold, func(product.Product) bool { return true })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].UserID != items[j].UserID {
			return items[i].UserID.String() < items[j].UserID.String()
		}
		if items[i].Stock != items[j].Stock {
			return items[i].Stock < items[j].Stock
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (r *reportRepo) lowStock(ctx context.Context, threshold int, keep func(product.Product) bool) ([]report.LowStockItem, error) {
	items := make([]report.LowStockItem, 0)
	err := r.s.run(ctx, func(d *data) error {
		for _, rec := range d.products {
			p := rec.val
			if p.Stock <= threshold && keep(p) {
				items = append(items, report.LowStockItem{
					ID:           p.ID,
					UserID:       p.UserID,
					Name:         p.Name,
					Manufacturer: p.Manufacturer,
					Category:     p.Category,
					Price:        p.Price,
					Stock:        p.Stock,
				})
			}
		}
		return nil
	})
	return items, err
}

func (r *reportRepo) ShippedOrders(ctx context.Context, userID uuid.UUID, dr report.DateRange) ([]report.Sale, error) {
	var recs []record[order.Order]
	err := r.s.run(ctx, func(d *data) error {
		for _, rec := range d.orders {
			o := rec.val
			if o.UserID == userID && o.Status == order.StatusShipped && dr.Contains(o.OrderDate) {
				recs = append(recs, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(recs, func(o order.Order) int64 { return o.OrderDate.UnixNano() })
	sales := make([]report.Sale, 0, len(recs))
	for _, rec := range recs {
		sales = append(sales, report.Sale{
			OrderID:         rec.val.ID,
			TotalAmount:     rec.val.TotalAmount,
			ShippingAddress: rec.val.ShippingAddress,
			OrderDate:       rec.val.OrderDate,
			ItemCount:       len(rec.val.Items),
		})
	}
	return sales, nil
}

func (r *reportRepo) InboundEntries(ctx context.Context, userID uuid.UUID, dr report.DateRange) ([]report.Purchase, error) {
	var (
		recs   []record[transaction.Transaction]
		prices = make(map[uuid.UUID]product.Product)
	)
	err := r.s.run(ctx, func(d *data) error {
		for _, rec := range d.transactions {
			t := rec.val
			if t.UserID != userID || t.Direction != transaction.DirectionIn || !dr.Contains(t.CreatedAt) {
				continue
			}
			recs = append(recs, rec)
			if p, ok := d.products[t.ProductID]; ok {
				prices[t.ProductID] = p.val
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(recs, func(t transaction.Transaction) int64 { return t.CreatedAt.UnixNano() })
	purchases := make([]report.Purchase, 0, len(recs))
	for _, rec := range recs {
		t := rec.val
		purchase := report.Purchase{
			TransactionID: t.ID,
			ProductID:     t.ProductID,
			Quantity:      t.Quantity,
			UnitPrice:     t.UnitPrice,
			Description:   t.Description,
			CreatedAt:     t.CreatedAt,
		}
		if p, ok := prices[t.ProductID]; ok {
			name, price := p.Name, p.Price
			purchase.ProductName = &name
			purchase.CurrentPrice = &price
		}
		purchases = append(purchases, purchase)
	}
	return purchases, nil
}
