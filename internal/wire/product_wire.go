package wire

import (
	"lesson-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireProduct(r chi.Router, productHandler *adaptor.ProductHandler) {
	// GET /api/lesson-products - Catalog for the order form (public)
	r.Get("/api/lesson-products", productHandler.GetProducts)
}
