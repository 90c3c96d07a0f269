package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/mahdiimanzadeh/storetrack/internal/auth"
	"github.com/mahdiimanzadeh/storetrack/internal/idempotency"
	"github.com/mahdiimanzadeh/storetrack/internal/order"
	"github.com/mahdiimanzadeh/storetrack/internal/product"
	"github.com/mahdiimanzadeh/storetrack/internal/report"
	"github.com/mahdiimanzadeh/storetrack/internal/store"
	"github.com/mahdiimanzadeh/storetrack/internal/transaction"
	"github.com/mahdiimanzadeh/storetrack/internal/user"
)

type Services struct {
	Products     product.Service
	Transactions transaction.Service
	Orders       order.Service
	Reports      report.Service
	Users        user.Service
	Stores       store.Service
}

type TokenManager interface {
	Issue(userID uuid.UUID) (string, error)
	Verify(tokenStr string) (uuid.UUID, error)
}

// NewRouter wires every route. idem may be nil.
func NewRouter(svc Services, tokens TokenManager, idem *idempotency.Store) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(traceRequests(otel.Tracer("storetrack-http")))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	accounts := NewAuthHandler(svc.Users, tokens)
	accounts.RegisterRoutes(router)

	router.Group(func(protected chi.Router) {
		protected.Use(auth.Middleware(tokens))

		accounts.RegisterProfileRoutes(protected)

		guard := idempotency.Middleware(idem)
		NewProductHandler(svc.Products).RegisterRoutes(protected)
		NewOrderHandler(svc.Orders).RegisterRoutes(protected, guard)
		NewTransactionHandler(svc.Transactions, svc.Products).RegisterRoutes(protected, guard)
		NewReportHandler(svc.Reports).RegisterRoutes(protected)
		NewStoreHandler(svc.Stores).RegisterRoutes(protected)
	})

	return router
}

// traceRequests opens a server span per request, continuing any incoming
// W3C trace context, and names it after the matched route.
func traceRequests(tracer trace.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					span.SetName(r.Method + " " + pattern)
					span.SetAttributes(attribute.String("http.route", pattern))
				}
			}
			span.SetAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.Int("http.response.status_code", ww.Status()),
			)
			if ww.Status() >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(ww.Status()))
			}
		})
	}
}
