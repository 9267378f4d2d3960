// internal/wire/wire.go
package wire

import (
	"net/http"
	"time"

	"lesson-booking/internal/adaptor"
	"lesson-booking/internal/data/repository"
	"lesson-booking/internal/usecase"
	"lesson-booking/pkg/middleware"
	"lesson-booking/pkg/payment"
	"lesson-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired dependencies
type App struct {
	Router *chi.Mux
}

// Wiring initializes all dependencies
func Wiring(repo *repository.Repository, gateway payment.Gateway, config *utils.Config, loc *time.Location, logger *zap.Logger) *App {
	service := usecase.NewService(repo, gateway, config, loc, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, config, logger)

	return &App{
		Router: router,
	}
}

// setupRouter configures the chi router
func setupRouter(
	handler *adaptor.Handler,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.AllowedOrigins, logger))

	// Apply routes
	wireOrder(r, handler.Order, handler.Webhook, config, logger)
	wireProduct(r, handler.Product)

	// Health check endpoint
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	})

	return r
}
