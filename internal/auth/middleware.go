package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type contextKey struct{}

var callerKey = contextKey{}

type verifier interface {
	Verify(tokenStr string) (uuid.UUID, error)
}

// Middleware rejects requests without a valid bearer token and stores the
// caller id on the request context.
func Middleware(tokens verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, tokenStr, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenStr) == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			callerID, err := tokens.Verify(strings.TrimSpace(tokenStr))
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("auth: token rejected")
				unauthorized(w, ErrInvalidToken.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), callerID)))
		})
	}
}

func WithCaller(ctx context.Context, callerID uuid.UUID) context.Context {
	return context.WithValue(ctx, callerKey, callerID)
}

// CallerID returns the authenticated user, or uuid.Nil outside an authenticated request.
func CallerID(ctx context.Context) uuid.UUID {
	id, ok := ctx.Value(callerKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
