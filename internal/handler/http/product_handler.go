package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mahdiimanzadeh/storetrack/internal/product"
)

type CreateProductRequest struct {
	OwnerID      *uuid.UUID `json:"ownerId"`
	Name         string     `json:"name" validate:"required"`
	Manufacturer string     `json:"manufacturer" validate:"required"`
	Description  string     `json:"description"`
	Price        *float64   `json:"price" validate:"required,gte=0"`
	Category     string     `json:"category" validate:"required"`
	// Stock is accepted for compatibility and ignored; new products start empty.
	Stock *int `json:"stock"`
}

type UpdateProductRequest struct {
	ProductID    uuid.UUID  `json:"productId" validate:"required"`
	OwnerID      *uuid.UUID `json:"ownerId"`
	Name         *string    `json:"name" validate:"omitempty,min=1"`
	Manufacturer *string    `json:"manufacturer" validate:"omitempty,min=1"`
	Description  *string    `json:"description"`
	Price        *float64   `json:"price" validate:"omitempty,gte=0"`
	Category     *string    `json:"category" validate:"omitempty,min=1"`
	Stock        *int       `json:"stock" validate:"omitempty,gte=0,lte=2147483647"`
}

type ProductHandler struct {
	service  product.Service
	validate *validator.Validate
}

func NewProductHandler(service product.Service) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Post("/product", h.handleCreateProduct)
	router.Get("/product/search", h.handleSearchProducts)
	router.Get("/product/{ownerId}", h.handleListProducts)
	router.Get("/product/{ownerId}/{productId}", h.handleGetProduct)
	router.Put("/product", h.handleUpdateProduct)
	router.Delete("/product/{id}", h.handleDeleteProduct)
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateProductRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	ownerID, err := checkOwner(r, requestPayload.OwnerID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to create product")
		return
	}

	if requestPayload.Stock != nil && *requestPayload.Stock != 0 {
		log.Debug().Int("stock", *requestPayload.Stock).Msg("Ignoring initial stock on product creation")
	}

	created, err := h.service.Create(r.Context(), ownerID, product.Attributes{
		Name:         requestPayload.Name,
		Manufacturer: requestPayload.Manufacturer,
		Description:  requestPayload.Description,
		Price:        *requestPayload.Price,
		Category:     requestPayload.Category,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusOK, created)
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromPath(r)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list products")
		return
	}

	products, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list products")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromPath(r)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get product")
		return
	}

	productID, err := parseUUIDParam(r, "productId")
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get product")
		return
	}

	found, err := h.service.Get(r.Context(), ownerID, productID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get product")
		return
	}

	respondWithJSON(w, http.StatusOK, found)
}

func (h *ProductHandler) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	ownerID, err := checkOwner(r, nil)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to search products")
		return
	}

	products, err := h.service.Search(r.Context(), ownerID, r.URL.Query().Get("searchTerm"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to search products")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload UpdateProductRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	ownerID, err := checkOwner(r, requestPayload.OwnerID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update product")
		return
	}

	updated, err := h.service.UpdateAttributes(r.Context(), ownerID, requestPayload.ProductID, product.Update{
		Name:         requestPayload.Name,
		Manufacturer: requestPayload.Manufacturer,
		Description:  requestPayload.Description,
		Price:        requestPayload.Price,
		Category:     requestPayload.Category,
		Stock:        requestPayload.Stock,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update product")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to delete product")
		return
	}

	ownerID, err := checkOwner(r, nil)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to delete product")
		return
	}

	if err := h.service.Delete(r.Context(), ownerID, productID); err != nil {
		respondWithServiceError(w, r, err, "Failed to delete product")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}
