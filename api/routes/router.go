package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devhaven/marketplace-backend/api/controllers"
	"github.com/devhaven/marketplace-backend/api/middleware"
	cartsvc "github.com/devhaven/marketplace-backend/internal/cart"
	"github.com/devhaven/marketplace-backend/internal/categories"
	checkoutsvc "github.com/devhaven/marketplace-backend/internal/checkout"
	"github.com/devhaven/marketplace-backend/internal/orders"
	"github.com/devhaven/marketplace-backend/internal/products"
	"github.com/devhaven/marketplace-backend/internal/reviews"
	"github.com/devhaven/marketplace-backend/internal/seller"
	"github.com/devhaven/marketplace-backend/internal/users"
	"github.com/devhaven/marketplace-backend/internal/wishlist"
	pkgauth "github.com/devhaven/marketplace-backend/pkg/auth"
	"github.com/devhaven/marketplace-backend/pkg/auth/session"
	"github.com/devhaven/marketplace-backend/pkg/config"
	"github.com/devhaven/marketplace-backend/pkg/logger"
	"github.com/devhaven/marketplace-backend/pkg/metrics"
	redisclient "github.com/devhaven/marketplace-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Tokens      *pkgauth.TokenIssuer
	Sessions    session.AccessSessionChecker
	Redis       *redisclient.Client
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Users      users.Service
	Categories categories.Service
	Products   products.Service
	Cart       cartsvc.Service
	Checkout   checkoutsvc.Service
	Orders     orders.Service
	Seller     seller.Service
	Reviews    reviews.Service
	Wishlist   wishlist.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(d.Redis, "register", cfg.AuthRateLimit.RegisterLimit, cfg.AuthRateLimit.RegisterWindow, logg)).
				Post("/register", controllers.Register(d.Users, logg))
			r.With(middleware.AuthRateLimit(d.Redis, "login", cfg.AuthRateLimit.LoginLimit, cfg.AuthRateLimit.LoginWindow, logg)).
				Post("/login", controllers.Login(d.Users, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(d.Tokens, d.Sessions, logg))
				r.Post("/logout", controllers.Logout(d.Users, logg))
				r.Get("/me", controllers.GetProfile(d.Users, logg))
				r.Patch("/me", controllers.UpdateProfile(d.Users, logg))
			})
		})

		// Public catalog.
		r.Get("/products", controllers.ListProducts(d.Products, logg))
		r.Get("/products/{id}", controllers.GetProduct(d.Products, logg))
		r.Get("/categories", controllers.ListCategories(d.Categories, logg))
		r.Get("/categories/{slug}", controllers.GetCategory(d.Categories, logg))
		r.Get("/reviews/product/{productID}", controllers.ListProductReviews(d.Reviews, logg))

		// Everything below requires a live session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(d.Tokens, d.Sessions, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(d.Cart, logg))
				r.Delete("/", controllers.ClearCart(d.Cart, logg))
				r.Post("/items", controllers.AddCartItem(d.Cart, logg))
				r.Put("/items/{itemID}", controllers.UpdateCartItem(d.Cart, logg))
				r.Delete("/items/{itemID}", controllers.RemoveCartItem(d.Cart, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/checkout", controllers.Checkout(d.Checkout, logg))
				r.Get("/", controllers.ListOrders(d.Orders, logg))
				r.Get("/{id}", controllers.GetOrder(d.Orders, logg))
				r.With(middleware.Authorize(middleware.ActionTransitionOrder, logg)).
					Post("/{id}/status", controllers.UpdateOrderStatus(d.Orders, logg))
			})

			r.Route("/seller", func(r chi.Router) {
				r.Use(middleware.Authorize(middleware.ActionManageOwnProducts, logg))
				r.Get("/products", controllers.ListSellerProducts(d.Products, logg))
				r.Post("/products", controllers.CreateProduct(d.Products, logg))
				r.Patch("/products/{id}", controllers.UpdateProduct(d.Products, logg))
				r.Delete("/products/{id}", controllers.DeleteProduct(d.Products, logg))
				r.Get("/analytics", controllers.SellerAnalytics(d.Seller, logg))
				r.Get("/orders", controllers.SellerOrders(d.Seller, logg))
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Post("/product/{productID}", controllers.CreateReview(d.Reviews, logg))
				r.Post("/{id}/helpful", controllers.MarkReviewHelpful(d.Reviews, logg))
				r.With(middleware.Authorize(middleware.ActionRespondToReview, logg)).
					Post("/{id}/respond", controllers.RespondToReview(d.Reviews, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.ListWishlist(d.Wishlist, logg))
				r.Post("/", controllers.AddWishlistItem(d.Wishlist, logg))
				r.Delete("/{productID}", controllers.RemoveWishlistItem(d.Wishlist, logg))
			})

			r.With(middleware.Authorize(middleware.ActionManageCategories, logg)).
				Post("/categories", controllers.CreateCategory(d.Categories, logg))
		})
	})

	return r
}
