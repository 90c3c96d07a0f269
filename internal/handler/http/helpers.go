package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mahdiimanzadeh/storetrack/internal/auth"
	"github.com/mahdiimanzadeh/storetrack/internal/order"
	"github.com/mahdiimanzadeh/storetrack/internal/product"
	"github.com/mahdiimanzadeh/storetrack/internal/report"
	"github.com/mahdiimanzadeh/storetrack/internal/store"
	"github.com/mahdiimanzadeh/storetrack/internal/transaction"
	"github.com/mahdiimanzadeh/storetrack/internal/user"
)

var (
	errInvalidID = errors.New("invalid id")
	errForbidden = errors.New("access to another user's resources is forbidden")
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

type InsufficientStockResponse struct {
	Error     string    `json:"error"`
	ProductID uuid.UUID `json:"productId"`
	Available int       `json:"available"`
	Requested int       `json:"requested"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, errInvalidID),
		errors.Is(err, product.ErrValidation),
		errors.Is(err, product.ErrInsufficientStock),
		errors.Is(err, order.ErrValidation),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidStatusTransition),
		errors.Is(err, transaction.ErrValidation),
		errors.Is(err, report.ErrValidation),
		errors.Is(err, store.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError maps err to a status. Server errors are logged and
// hidden behind fallback; client errors echo the error text.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	statusCode := mapErrorToStatusCode(err)

	if statusCode == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
		respondWithError(w, statusCode, fallback)
		return
	}

	log.Warn().Err(err).Str("path", r.URL.Path).Int("status", statusCode).Msg("Request rejected")

	var stockErr *product.InsufficientStockError
	if errors.As(err, &stockErr) {
		respondWithJSON(w, statusCode, InsufficientStockResponse{
			Error:     stockErr.Error(),
			ProductID: stockErr.ProductID,
			Available: stockErr.Available,
			Requested: stockErr.Requested,
		})
		return
	}

	respondWithError(w, statusCode, err.Error())
}

// decodeAndValidate writes the 400 response itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "Validation failed",
				Details: formatValidationErrors(validationErrors),
			})
		} else {
			log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return false
	}

	return true
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := jsonFieldPath(fe.Namespace())
		switch fe.Tag() {
		case "required":
			details[field] = "is required"
		case "email":
			details[field] = "must be a valid email address"
		case "min", "gte":
			details[field] = fmt.Sprintf("must be at least %s", fe.Param())
		case "max", "lte":
			details[field] = fmt.Sprintf("must be at most %s", fe.Param())
		case "oneof":
			details[field] = fmt.Sprintf("must be one of: %s", fe.Param())
		default:
			details[field] = fmt.Sprintf("failed on %s", fe.Tag())
		}
	}
	return details
}

// jsonFieldPath drops the struct name from a validator namespace
// ("PlaceOrderRequest.items[0].quantity" becomes "items[0].quantity").
func jsonFieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.FromString(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q", errInvalidID, name, raw)
	}
	return id, nil
}

// ownerFromPath returns the caller when the {ownerId} path segment names them.
func ownerFromPath(r *http.Request) (uuid.UUID, error) {
	ownerID, err := parseUUIDParam(r, "ownerId")
	if err != nil {
		return uuid.Nil, err
	}
	return checkOwner(r, &ownerID)
}

// checkOwner returns the caller id, rejecting a claimed owner that differs.
func checkOwner(r *http.Request, claimed *uuid.UUID) (uuid.UUID, error) {
	caller := auth.CallerID(r.Context())
	if caller == uuid.Nil {
		return uuid.Nil, auth.ErrInvalidToken
	}
	if claimed != nil && *claimed != uuid.Nil && *claimed != caller {
		return uuid.Nil, errForbidden
	}
	return caller, nil
}

func orPassThrough(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}
