package wire

import (
	"lesson-booking/internal/adaptor"
	"lesson-booking/pkg/middleware"
	"lesson-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireOrder(
	r chi.Router,
	orderHandler *adaptor.OrderHandler,
	webhookHandler *adaptor.WebhookHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// POST /api/lesson-orders - Create new lesson order
	r.Post("/api/lesson-orders", orderHandler.CreateOrder)

	// POST /api/lesson-orders/{code}/pay - Open (or reuse) a payment session
	r.Post("/api/lesson-orders/{code}/pay", orderHandler.PayOrder)

	// GET /api/lesson-orders/{code}/verify - Poll-driven reconciliation
	r.Get("/api/lesson-orders/{code}/verify", orderHandler.VerifyOrder)

	// GET /api/lesson-orders/{code} - Order detail (invoice page)
	r.Get("/api/lesson-orders/{code}", orderHandler.GetOrder)

	// POST /api/payments/{provider}/webhook - Push-driven reconciliation
	r.Post("/api/payments/{provider}/webhook", webhookHandler.HandleNotification)

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminKey(config.Admin, log))

		// GET /api/lesson-orders - Back-office order listing
		r.Get("/api/lesson-orders", orderHandler.ListOrders)

		// POST /api/lesson-orders/{code}/mark-cash - Manual cash settlement
		r.Post("/api/lesson-orders/{code}/mark-cash", orderHandler.MarkCash)
	})
}
