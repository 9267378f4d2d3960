package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"lesson-booking/internal/dto/request"
	"lesson-booking/internal/usecase"
	"lesson-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service usecase.OrderService
	log     *zap.Logger
}

func NewOrderHandler(service usecase.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		log:     log.With(zap.String("handler", "order")),
	}
}

// CreateOrder handles POST /api/lesson-orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req request.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create order")
		return
	}

	utils.ResponseCreated(w, "success", order)
}

// PayOrder handles POST /api/lesson-orders/{code}/pay
func (h *OrderHandler) PayOrder(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		utils.ResponseBadRequest(w, "Order code is required", nil)
		return
	}

	session, err := h.service.PayOrder(r.Context(), code)
	if err != nil {
		h.handleServiceError(w, err, "pay order")
		return
	}

	utils.ResponseSuccess(w, "success", session)
}

// VerifyOrder handles GET /api/lesson-orders/{code}/verify
func (h *OrderHandler) VerifyOrder(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		utils.ResponseBadRequest(w, "Order code is required", nil)
		return
	}

	order, err := h.service.VerifyOrder(r.Context(), code)
	if err != nil {
		h.handleServiceError(w, err, "verify order")
		return
	}

	utils.ResponseSuccess(w, "success", order)
}

// GetOrder handles GET /api/lesson-orders/{code}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		utils.ResponseBadRequest(w, "Order code is required", nil)
		return
	}

	order, err := h.service.GetOrder(r.Context(), code)
	if err != nil {
		h.handleServiceError(w, err, "get order")
		return
	}

	utils.ResponseSuccess(w, "success", order)
}

// ==================== ADMIN METHODS ====================

// MarkCash handles POST /api/lesson-orders/{code}/mark-cash (admin only)
func (h *OrderHandler) MarkCash(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		utils.ResponseBadRequest(w, "Order code is required", nil)
		return
	}

	order, err := h.service.MarkCash(r.Context(), code)
	if err != nil {
		h.handleServiceError(w, err, "mark cash")
		return
	}

	utils.ResponseSuccess(w, "success", order)
}

// ListOrders handles GET /api/lesson-orders (admin only)
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	orders, err := h.service.ListOrders(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "list orders")
		return
	}

	utils.ResponseSuccess(w, "success", orders)
}

// handleServiceError maps service errors to HTTP responses
func (h *OrderHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrOrderNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrOrderFinalized):
		h.log.Warn(operation+" failed - already finalized", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case isValidationError(err):
		h.log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
