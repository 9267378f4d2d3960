package adaptor

import (
	"lesson-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Order   *OrderHandler
	Webhook *WebhookHandler
	Product *ProductHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Order:   NewOrderHandler(service.Order, log),
		Webhook: NewWebhookHandler(service.Order, log),
		Product: NewProductHandler(service.Product, log),
	}
}
