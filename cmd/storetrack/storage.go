package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mahdiimanzadeh/storetrack/internal/config"
	"github.com/mahdiimanzadeh/storetrack/internal/db"
	"github.com/mahdiimanzadeh/storetrack/internal/memstore"
	"github.com/mahdiimanzadeh/storetrack/internal/order"
	"github.com/mahdiimanzadeh/storetrack/internal/product"
	"github.com/mahdiimanzadeh/storetrack/internal/report"
	"github.com/mahdiimanzadeh/storetrack/internal/store"
	"github.com/mahdiimanzadeh/storetrack/internal/transaction"
	"github.com/mahdiimanzadeh/storetrack/internal/user"
)

type repositories struct {
	tx           db.TxManager
	products     product.Repository
	transactions transaction.Repository
	orders       order.Repository
	reports      report.Repository
	users        user.Repository
	stores       store.Repository
}

func openStorage(ctx context.Context, cfg *config.Config) (*repositories, func(), error) {
	if cfg.App.Storage == config.StorageTypeMemory {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		s := memstore.New()
		return &repositories{
			tx:           s,
			products:     s.Products(),
			transactions: s.Transactions(),
			orders:       s.Orders(),
			reports:      s.Reports(),
			users:        s.Users(),
			stores:       s.Stores(),
		}, func() {}, nil
	}

	if err := db.ApplyMigrations(cfg.Postgres); err != nil {
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}

	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}

	return &repositories{
		tx:           db.NewTxManager(pg.Pool),
		products:     product.NewRepository(pg.Pool),
		transactions: transaction.NewRepository(pg.Pool),
		orders:       order.NewRepository(pg.Pool),
		reports:      report.NewRepository(pg.Pool),
		users:        user.NewRepository(pg.Pool),
		stores:       store.NewRepository(pg.Pool),
	}, pg.Close, nil
}
