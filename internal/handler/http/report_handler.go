package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"

	"github.com/mahdiimanzadeh/storetrack/internal/report"
)

type ReportHandler struct {
	service report.Service
}

func NewReportHandler(service report.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) RegisterRoutes(router chi.Router) {
	router.Get("/report/lowStock/{ownerId}", h.handleLowStock)
	router.Get("/report/sales/{ownerId}", h.handleSales)
	router.Get("/report/purchases/{ownerId}", h.handlePurchases)
	router.Get("/alert/lowStock", h.handleLowStockAlert)
}

func (h *ReportHandler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromPath(r)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to build low stock report")
		return
	}
	h.lowStock(w, r, ownerID)
}

// handleLowStockAlert is the on-demand form of the background low-stock check,
// scoped to the caller.
func (h *ReportHandler) handleLowStockAlert(w http.ResponseWriter, r *http.Request) {
	ownerID, err := checkOwner(r, nil)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to check low stock")
		return
	}
	h.lowStock(w, r, ownerID)
}

func (h *ReportHandler) lowStock(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) {
	threshold, err := parseThreshold(r.URL.Query().Get("threshold"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to build low stock report")
		return
	}

	items, err := h.service.LowStock(r.Context(), ownerID, threshold)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to build low stock report")
		return
	}

	respondWithJSON(w, http.StatusOK, items)
}

func (h *ReportHandler) handleSales(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromPath(r)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to build sales report")
		return
	}

	dateRange, err := report.ParseDateRange(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to build sales report")
		return
	}

	rep, err := h.service.Sales(r.Context(), ownerID, dateRange)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to build sales report")
		return
	}

	respondWithJSON(w, http.StatusOK, rep)
}

func (h *ReportHandler) handlePurchases(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromPath(r)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to build purchase report")
		return
	}

	dateRange, err := report.ParseDateRange(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to build purchase report")
		return
	}

	rep, err := h.service.Purchases(r.Context(), ownerID, dateRange)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to build purchase report")
		return
	}

	respondWithJSON(w, http.StatusOK, rep)
}

func parseThreshold(raw string) (int, error) {
	if raw == "" {
		return report.DefaultLowStockThreshold, nil
	}
	threshold, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: threshold must be an integer", report.ErrValidation)
	}
	if threshold < 0 || threshold > report.MaxThreshold {
		return 0, fmt.Errorf("%w: threshold must be between 0 and %d", report.ErrValidation, report.MaxThreshold)
	}
	return threshold, nil
}
