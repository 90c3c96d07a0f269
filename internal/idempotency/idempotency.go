package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mahdiimanzadeh/storetrack/internal/auth"
)

const HeaderKey = "Idempotency-Key"

var ErrDuplicateRequest = errors.New("request with this idempotency key was already processed")

// client is the subset of *redis.Client the store needs.
type client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Store struct {
	rdb client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if rdb == nil {
		return nil
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func newStore(rdb client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(callerID fmt.Stringer, method, path, key string) string {
	return fmt.Sprintf("idem:%s:%s:%s:%s", callerID, method, path, key)
}

// Claim records key and reports whether it had been claimed before.
func (s *Store) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency: failed to claim key: %w", err)
	}
	return !ok, nil
}

// Release forgets key so the client may retry after a failed request.
func (s *Store) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("idempotency: failed to release key: %w", err)
	}
	return nil
}

// Middleware rejects a replayed Idempotency-Key with 409. Requests without the
// header, or served without a store, pass through untouched. Keys of requests
// that end in an error status are released.
func Middleware(s *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if s == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(HeaderKey)
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := s.Key(auth.CallerID(r.Context()), r.Method, r.URL.Path, header)
			seen, err := s.Claim(r.Context(), key)
			if err != nil {
				log.Error().Err(err).Str("path", r.URL.Path).Msg("idempotency: store unavailable, serving request")
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				log.Warn().Str("path", r.URL.Path).Str("key", header).Msg("idempotency: replayed request rejected")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": ErrDuplicateRequest.Error()})
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if ww.Status() >= http.StatusBadRequest {
				if err := s.Release(context.WithoutCancel(r.Context()), key); err != nil {
					log.Error().Err(err).Str("path", r.URL.Path).Msg("idempotency: release failed")
				}
			}
		})
	}
}
