package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"lesson-booking/internal/dto/request"
	"lesson-booking/internal/dto/response"
	"lesson-booking/internal/usecase"
	"lesson-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type WebhookHandler struct {
	service usecase.OrderService
	log     *zap.Logger
}

func NewWebhookHandler(service usecase.OrderService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		log:     log.With(zap.String("handler", "webhook")),
	}
}

// HandleNotification handles POST /api/payments/{provider}/webhook
func (h *WebhookHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	provider := strings.ToLower(chi.URLParam(r, "provider"))

	var req request.MidtransWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.HandleWebhook(r.Context(), provider, &req); err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidSignature):
			// Do not leak why the signature was rejected.
			h.log.Warn("Webhook rejected - bad signature",
				zap.String("provider", provider),
				zap.String("order_id", req.OrderID),
			)
			utils.ResponseForbidden(w, "Invalid signature")

		case errors.Is(err, usecase.ErrUnknownProvider):
			h.log.Warn("Webhook rejected - unknown provider", zap.String("provider", provider))
			utils.ResponseNotFound(w, "Unknown payment provider")

		case errors.Is(err, usecase.ErrOrderNotFound):
			h.log.Warn("Webhook rejected - order not found", zap.String("order_id", req.OrderID))
			utils.ResponseNotFound(w, err.Error())

		case isValidationError(err):
			h.log.Warn("Webhook validation failed", zap.Error(err))
			utils.ResponseBadRequest(w, err.Error(), nil)

		default:
			h.log.Error("Failed to process webhook",
				zap.Error(err),
				zap.String("provider", provider),
				zap.String("order_id", req.OrderID),
			)
			utils.ResponseInternalError(w, "Internal server error")
		}
		return
	}

	utils.ResponseSuccess(w, "success", response.WebhookAckResponse{OK: true})
}

func isValidationError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "validation failed")
}
