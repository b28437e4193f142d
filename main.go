package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fashion-store/config"
	"fashion-store/controllers"
	"fashion-store/middleware"
	"fashion-store/routes"
	"fashion-store/services"
	"fashion-store/store"
	"fashion-store/utils"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Str("service", "fashion-store").Logger()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, reading environment directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	utils.JwtKey = []byte(cfg.JWTSecret)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()

	db := client.Database(cfg.MongoDatabase)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure indexes")
	}

	productStore := store.NewProductStore(db)
	userStore := store.NewUserStore(db)
	orderStore := store.NewOrderStore(db)

	notifier := utils.NewEmailService(cfg.SendgridAPIKey, cfg.EmailSender)
	pricing := services.NewPricing(cfg.TaxRate, cfg.ShippingFee, cfg.FreeShippingThreshold)

	userService := services.NewUserService(userStore, productStore, notifier)
	catalogService := services.NewCatalogService(productStore)
	checkoutService := services.NewCheckoutService(userStore, productStore, orderStore, pricing, notifier)
	orderService := services.NewOrderService(orderStore, productStore, userStore, cfg.RefundOnCancel)
	recommendationService := services.NewRecommendationService(productStore, orderStore)

	userController := controllers.NewUserController(userService)
	productController := controllers.NewProductController(catalogService)
	orderController := controllers.NewOrderController(checkoutService, orderService)
	recommendationController := controllers.NewRecommendationController(recommendationService)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.MetricsMiddleware)
	routes.RegisterRoutes(router, userController, productController, orderController, recommendationController)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
