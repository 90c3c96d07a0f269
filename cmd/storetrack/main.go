package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"

	"github.com/mahdiimanzadeh/storetrack/internal/alert"
	"github.com/mahdiimanzadeh/storetrack/internal/auth"
	"github.com/mahdiimanzadeh/storetrack/internal/config"
	apiHttp "github.com/mahdiimanzadeh/storetrack/internal/handler/http"
	"github.com/mahdiimanzadeh/storetrack/internal/idempotency"
	"github.com/mahdiimanzadeh/storetrack/internal/order"
	"github.com/mahdiimanzadeh/storetrack/internal/product"
	"github.com/mahdiimanzadeh/storetrack/internal/report"
	"github.com/mahdiimanzadeh/storetrack/internal/store"
	"github.com/mahdiimanzadeh/storetrack/internal/transaction"
	"github.com/mahdiimanzadeh/storetrack/internal/user"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogger(cfg)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	log.Info().Str("storage", cfg.App.Storage).Msg("Starting storetrack...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("storetrack stopped with error")
	}

	log.Info().Msg("storetrack stopped gracefully.")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", cfg.App.Name).Logger()
}

func run(ctx context.Context, cfg *config.Config) error {
	repos, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	ledgerSvc := transaction.NewService(repos.transactions)
	productSvc := product.NewService(repos.products, ledgerSvc, repos.tx)
	orderSvc := order.NewService(repos.orders, productSvc, ledgerSvc, repos.tx)
	reportSvc := report.NewService(repos.reports)
	userSvc := user.NewService(repos.users)
	storeSvc := store.NewService(repos.stores)

	rdb, err := openRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.App.Name)
	router := apiHttp.NewRouter(apiHttp.Services{
		Products:     productSvc,
		Transactions: ledgerSvc,
		Orders:       orderSvc,
		Reports:      reportSvc,
		Users:        userSvc,
		Stores:       storeSvc,
	}, tokens, idempotency.NewStore(rdb, cfg.Redis.IdempotencyTTL))

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Alert.Enabled {
		var publisher alert.Publisher
		if len(cfg.Kafka.Brokers) > 0 {
			writer := alert.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.LowStockTopic)
			defer func() {
				if err := writer.Close(); err != nil {
					log.Warn().Err(err).Msg("Failed to close kafka writer")
				}
			}()
			publisher = writer
		} else {
			log.Info().Msg("No kafka brokers configured, low stock alerts are logged only")
		}

		worker := alert.NewWorker(reportSvc, publisher, cfg.Alert.Threshold, cfg.Alert.Interval)
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}

	return g.Wait()
}

func openRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		log.Info().Msg("No redis configured, idempotency keys are not enforced")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	log.Info().Str("addr", cfg.Addr).Msg("Connected to Redis")
	return rdb, nil
}
