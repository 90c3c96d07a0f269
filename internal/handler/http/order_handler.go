package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/mahdiimanzadeh/storetrack/internal/order"
)

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=2147483647"`
}

type PlaceOrderRequest struct {
	OwnerID         *uuid.UUID         `json:"ownerId"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string             `json:"shippingAddress" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending shipped cancelled"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes mounts the order routes. POST /order goes through guard,
// which callers use for idempotency.
func (h *OrderHandler) RegisterRoutes(router chi.Router, guard func(http.Handler) http.Handler) {
	router.With(orPassThrough(guard)).Post("/order", h.handlePlaceOrder)
	router.Get("/order/{ownerId}", h.handleListOrders)
	router.Get("/order/{ownerId}/{orderId}", h.handleGetOrder)
	router.Put("/order/{orderId}/status", h.handleUpdateStatus)
	router.Delete("/order/{orderId}", h.handleDeleteOrder)
}

func (h *OrderHandler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var requestPayload PlaceOrderRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	ownerID, err := checkOwner(r, requestPayload.OwnerID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to place order")
		return
	}

	items := make([]order.ItemRequest, 0, len(requestPayload.Items))
	for _, item := range requestPayload.Items {
		items = append(items, order.ItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	placed, err := h.service.PlaceOrder(r.Context(), order.PlaceOrderInput{
		UserID:          ownerID,
		Items:           items,
		ShippingAddress: requestPayload.ShippingAddress,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to place order")
		return
	}

	respondWithJSON(w, http.StatusOK, placed)
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromPath(r)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list orders")
		return
	}

	orders, err := h.service.ListByUser(r.Context(), ownerID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromPath(r)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get order")
		return
	}

	orderID, err := parseUUIDParam(r, "orderId")
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get order")
		return
	}

	found, err := h.service.GetOrder(r.Context(), ownerID, orderID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get order")
		return
	}

	respondWithJSON(w, http.StatusOK, found)
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseUUIDParam(r, "orderId")
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update order status")
		return
	}

	var requestPayload UpdateOrderStatusRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	ownerID, err := checkOwner(r, nil)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update order status")
		return
	}

	updated, err := h.service.SetStatus(r.Context(), ownerID, orderID, order.Status(requestPayload.Status))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update order status")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *OrderHandler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseUUIDParam(r, "orderId")
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to delete order")
		return
	}

	ownerID, err := checkOwner(r, nil)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to delete order")
		return
	}

	if err := h.service.DeleteOrder(r.Context(), ownerID, orderID); err != nil {
		respondWithServiceError(w, r, err, "Failed to delete order")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Order deleted"})
}
