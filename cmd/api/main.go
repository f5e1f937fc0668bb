package main

import (
	"context"
	"net/http"
	"os"

	"github.com/devhaven/marketplace-backend/api/routes"
	"github.com/devhaven/marketplace-backend/internal/cart"
	"github.com/devhaven/marketplace-backend/internal/categories"
	"github.com/devhaven/marketplace-backend/internal/checkout"
	"github.com/devhaven/marketplace-backend/internal/orders"
	"github.com/devhaven/marketplace-backend/internal/products"
	"github.com/devhaven/marketplace-backend/internal/reviews"
	"github.com/devhaven/marketplace-backend/internal/seller"
	"github.com/devhaven/marketplace-backend/internal/users"
	"github.com/devhaven/marketplace-backend/internal/wishlist"
	pkgauth "github.com/devhaven/marketplace-backend/pkg/auth"
	"github.com/devhaven/marketplace-backend/pkg/auth/session"
	"github.com/devhaven/marketplace-backend/pkg/config"
	"github.com/devhaven/marketplace-backend/pkg/db"
	"github.com/devhaven/marketplace-backend/pkg/logger"
	"github.com/devhaven/marketplace-backend/pkg/metrics"
	"github.com/devhaven/marketplace-backend/pkg/migrate"
	"github.com/devhaven/marketplace-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	tokens, err := pkgauth.NewTokenIssuer(cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create token issuer", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	gdb := dbClient.DB()

	usersService, err := users.NewService(users.ServiceParams{
		Repo:           users.NewRepository(gdb),
		Tokens:         tokens,
		Sessions:       sessionManager,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	categoriesService, err := categories.NewService(categories.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create categories service", err)
		os.Exit(1)
	}

	productsService, err := products.NewService(products.NewRepository(gdb), categories.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.NewRepository(gdb), products.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		DB:          dbClient,
		CartRepo:    cart.NewRepository(gdb),
		OrderRepo:   orders.NewRepository(gdb),
		ProductRepo: products.NewRepository(gdb),
		Logger:      logg,
		Metrics:     checkoutMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	sellerService, err := seller.NewService(seller.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create seller service", err)
		os.Exit(1)
	}

	reviewsService, err := reviews.NewService(reviews.ServiceParams{
		Repo:      reviews.NewRepository(gdb),
		Products:  products.NewRepository(gdb),
		Purchases: orders.NewRepository(gdb),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.NewRepository(gdb), products.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Tokens:      tokens,
			Sessions:    sessionManager,
			Redis:       redisClient,
			HTTPMetrics: httpMetrics,
			Gatherer:    registry,

			Users:      usersService,
			Categories: categoriesService,
			Products:   productsService,
			Cart:       cartService,
			Checkout:   checkoutService,
			Orders:     ordersService,
			Seller:     sellerService,
			Reviews:    reviewsService,
			Wishlist:   wishlistService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
