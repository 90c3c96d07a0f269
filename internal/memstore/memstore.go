// Package memstore keeps every repository in process memory. All operations
// are serialised on one mutex; WithinTx holds it for the whole callback and
// restores a snapshot when the callback fails.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mahdiimanzadeh/storetrack/internal/order"
	"github.com/mahdiimanzadeh/storetrack/internal/product"
	"github.com/mahdiimanzadeh/storetrack/internal/report"
	"github.com/mahdiimanzadeh/storetrack/internal/store"
	"github.com/mahdiimanzadeh/storetrack/internal/transaction"
	"github.com/mahdiimanzadeh/storetrack/internal/user"
)

type txKey struct{}

type record[T any] struct {
	seq uint64
	val T
}

type data struct {
	products     map[uuid.UUID]record[product.Product]
	orders       map[uuid.UUID]record[order.Order]
	transactions map[uuid.UUID]record[transaction.Transaction]
	users        map[uuid.UUID]user.User
	emails       map[string]uuid.UUID
	stores       map[uuid.UUID]record[store.Store]
	seq          uint64
}

type Store struct {
	mu   sync.Mutex
	data data
	now  func() time.Time
}

func New() *Store {
	return &Store{
		data: data{
			products:     make(map[uuid.UUID]record[product.Product]),
			orders:       make(map[uuid.UUID]record[order.Order]),
			transactions: make(map[uuid.UUID]record[transaction.Transaction]),
			users:        make(map[uuid.UUID]user.User),
			emails:       make(map[string]uuid.UUID),
			stores:       make(map[uuid.UUID]record[store.Store]),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// run executes fn under the store lock unless ctx already holds it.
func (s *Store) run(ctx context.Context, fn func(d *data) error) error {
	if s.inTx(ctx) {
		return fn(&s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data)
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Msg("memstore: panic inside transaction, restoring snapshot")
			s.data = snap
			panic(p)
		}
		if err != nil {
			s.data = snap
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, s))
}

func (d *data) next() uint64 {
	d.seq++
	return d.seq
}

func (d *data) clone() data {
	c := data{
		products:     make(map[uuid.UUID]record[product.Product], len(d.products)),
		orders:       make(map[uuid.UUID]record[order.Order], len(d.orders)),
		transactions: make(map[uuid.UUID]record[transaction.Transaction], len(d.transactions)),
		users:        make(map[uuid.UUID]user.User, len(d.users)),
		emails:       make(map[string]uuid.UUID, len(d.emails)),
		stores:       make(map[uuid.UUID]record[store.Store], len(d.stores)),
		seq:          d.seq,
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.orders {
		v.val = copyOrder(v.val)
		c.orders[k] = v
	}
	for k, v := range d.transactions {
		c.transactions[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.emails {
		c.emails[k] = v
	}
	for k, v := range d.stores {
		c.stores[k] = v
	}
	return c
}

func copyOrder(o order.Order) order.Order {
	items := make([]order.Item, len(o.Items))
	copy(items, o.Items)
	for i := range items {
		items[i].Product = nil
	}
	o.Items = items
	return o
}

func newID() (uuid.UUID, error) {
	return uuid.NewV4()
}

// Products returns the product repository backed by s.
func (s *Store) Products() product.Repository { return &productRepo{s: s} }

func (s *Store) Transactions() transaction.Repository { return &transactionRepo{s: s} }

func (s *Store) Orders() order.Repository { return &orderRepo{s: s} }

func (s *Store) Users() user.Repository { return &userRepo{s: s} }

func (s *Store) Stores() store.Repository { return &storeRepo{s: s} }

func (s *Store) Reports() report.Repository { return &reportRepo{s: s} }
