// main.go
package main

import (
	"log"
	"time"

	"lesson-booking/cmd"
	"lesson-booking/internal/data/repository"
	"lesson-booking/internal/wire"
	"lesson-booking/pkg/database"
	"lesson-booking/pkg/payment"
	"lesson-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if config.Midtrans.ServerKey == "" {
		// Fail fast instead of silently getting 401s from the gateway
		log.Fatal("MIDTRANS_SERVER_KEY is required")
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// All expiry math runs in one reference timezone
	loc, err := time.LoadLocation(config.App.Timezone)
	if err != nil {
		logger.Fatal("Failed to load timezone", zap.String("timezone", config.App.Timezone), zap.Error(err))
	}

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Payment gateway client
	gateway := payment.NewMidtransGateway(config.Midtrans, config.App.BaseURL, loc, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, gateway, config, loc, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
