package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/mahdiimanzadeh/storetrack/internal/product"
	"github.com/mahdiimanzadeh/storetrack/internal/transaction"
)

type ManualTransactionRequest struct {
	OwnerID     *uuid.UUID `json:"ownerId"`
	ProductID   uuid.UUID  `json:"productId" validate:"required"`
	Direction   string     `json:"direction" validate:"required,oneof=in out"`
	Quantity    int        `json:"quantity" validate:"required,min=1,max=2147483647"`
	Description string     `json:"description"`
}

type TransactionHandler struct {
	ledger   transaction.Service
	products product.Service
	validate *validator.Validate
}

func NewTransactionHandler(ledger transaction.Service, products product.Service) *TransactionHandler {
	return &TransactionHandler{
		ledger:   ledger,
		products: products,
		validate: newValidator(),
	}
}

func (h *TransactionHandler) RegisterRoutes(router chi.Router, guard func(http.Handler) http.Handler) {
	router.With(orPassThrough(guard)).Post("/transaction", h.handleManualTransaction)
	router.Get("/transaction/{ownerId}", h.handleListTransactions)
	router.Get("/transaction/{ownerId}/product/{productId}", h.handleListProductTransactions)
}

// handleManualTransaction applies the movement to the product's stock; the
// ledger entry is written by the stock adjustment itself.
func (h *TransactionHandler) handleManualTransaction(w http.ResponseWriter, r *http.Request) {
	var requestPayload ManualTransactionRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	ownerID, err := checkOwner(r, requestPayload.OwnerID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to record transaction")
		return
	}

	direction := transaction.Direction(requestPayload.Direction)
	description := strings.TrimSpace(requestPayload.Description)
	if description == "" {
		description = product.ManualIncreaseDescription
		if direction == transaction.DirectionOut {
			description = product.ManualDecreaseDescription
		}
	}

	adj, err := h.products.AdjustStock(r.Context(), ownerID, requestPayload.ProductID,
		direction.Sign()*requestPayload.Quantity, description, nil)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to record transaction")
		return
	}

	respondWithJSON(w, http.StatusOK, adj.Transaction)
}

func (h *TransactionHandler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromPath(r)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list transactions")
		return
	}

	entries, err := h.ledger.ListByUser(r.Context(), ownerID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list transactions")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *TransactionHandler) handleListProductTransactions(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromPath(r)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list transactions")
		return
	}

	productID, err := parseUUIDParam(r, "productId")
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list transactions")
		return
	}

	entries, err := h.ledger.ListByProduct(r.Context(), ownerID, productID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list transactions")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}
